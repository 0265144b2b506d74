package layout

// BuildOptions 配置布局阶段所需的依赖：排版后端、主题资源、纸张与逐页装饰。
type BuildOptions struct {
	Typesetter Typesetter
	Resources  ResourceSet
	Page       PageSetup
	Meta       DocumentMeta
	Decorator  PageDecorator
	Debug      DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// PageFrame 是分页完成后交给装饰器的单页上下文。
type PageFrame struct {
	Number     int
	Total      int
	Width      float64
	Height     float64
	Margin     Margin
	Resources  ResourceSet
	Typesetter Typesetter
}

// Decoration 为装饰器返回的页眉与页脚。
type Decoration struct {
	Header HeaderFooter
	Footer HeaderFooter
}

// PageDecorator 在分页之后为每一页生成页眉页脚。
type PageDecorator interface {
	Decorate(frame PageFrame) (Decoration, error)
}

// PageDecoratorFunc 让普通函数实现 PageDecorator。
type PageDecoratorFunc func(frame PageFrame) (Decoration, error)

// Decorate implements PageDecorator.
func (f PageDecoratorFunc) Decorate(frame PageFrame) (Decoration, error) { return f(frame) }
