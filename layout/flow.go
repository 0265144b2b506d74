package layout

// Flowable 是可以交给 Build 排版的内容块。
type Flowable interface {
	flowable()
}

// Paragraph 是按样式排版的一段文本，样式可以带背景色、内边距与段前段后间距。
type Paragraph struct {
	Text  string
	Style string
	Align string // 覆盖样式中的对齐方式
}

// Spacer 为竖直留白（mm）；当前页放不下时直接丢弃，不触发换页。
type Spacer struct {
	Height float64
}

// Rule 为水平分隔线，Width 为占内容宽度的比例（0~1），居中放置。
type Rule struct {
	Width       float64
	Color       string
	Thickness   float64 // mm
	SpaceBefore float64 // mm
	SpaceAfter  float64 // mm
}

// PageBreak 强制换页；当前页尚无内容时不产生空白页。
type PageBreak struct{}

// Table 描述一张固定列宽的表格，按行分页。
type Table struct {
	Columns []float64 // 列宽（mm）
	Rows    [][]Cell
	Style   TableStyle
}

// Cell 为单元格文本及其样式名，样式为空时使用 TableStyle.CellStyle。
type Cell struct {
	Text  string
	Style string
}

// TableStyle 描述表格外观。颜色取调色板名称或 #hex，长度单位为 mm。
type TableStyle struct {
	HeaderRows        int
	HeaderBackground  string
	HeaderStyle       string
	CellStyle         string
	ColumnBackgrounds map[int]string
	ColumnStyles      map[int]string
	RowBands          []string // 数据行交替底色，从表头之后开始计数
	GridColor         string   // 为空表示不绘制网格
	GridWidth         float64
	Align             string
	FontSize          float64
	Padding           float64 // 左右内边距
	VPadding          float64 // 上下内边距
}

func (Paragraph) flowable() {}
func (Spacer) flowable()    {}
func (Rule) flowable()      {}
func (PageBreak) flowable() {}
func (*Table) flowable()    {}

// Width 返回各列宽度之和。
func (t *Table) Width() float64 {
	total := 0.0
	for _, w := range t.Columns {
		total += w
	}
	return total
}
