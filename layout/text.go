package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const defaultLineFactor = 1.2

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// TextSpec 描述一段待排版的文本；零值字段沿用样式中的设置。
type TextSpec struct {
	Content string
	Style   string
	X       float64
	Y       float64
	Width   float64
	Align   string
	Size    float64 // 字号覆盖（mm）
	Color   string  // 调色板名称或 #hex
	Wrap    string
}

// textStyle 是样式属性展开后的排版参数，长度单位为 mm。
type textStyle struct {
	fontName    string
	font        FontResource
	size        float64
	lineHeight  float64
	color       Color
	align       string
	background  *Color
	padding     float64
	spaceBefore float64
	spaceAfter  float64

	rawSize       Length
	rawLineHeight LineHeightSpec
}

func resolveTextStyle(name string, res ResourceSet) (textStyle, error) {
	props := map[string]string{}
	if name != "" {
		s, ok := res.Styles[name]
		if !ok {
			return textStyle{}, fmt.Errorf("style %s 未定义", name)
		}
		props = s.Props
	}

	st := textStyle{fontName: props["font"]}
	if st.fontName == "" {
		st.fontName = DefaultFont
	}
	font, err := resolveFontResource(st.fontName, res)
	if err != nil {
		return textStyle{}, err
	}
	st.font = font

	st.rawSize = ParseRawLengthStr(props["size"])
	if st.rawSize.Unit == UnitNone || st.rawSize.Value <= 0 {
		st.rawSize = Length{Value: 12, Unit: UnitPT}
	}
	st.size = st.rawSize.ToMM()
	st.rawLineHeight = parseLineHeight(props["line-height"])
	st.lineHeight = st.rawLineHeight.Resolve(st.rawSize, UnitMM)

	st.color = defaultTextColor
	if c, ok := res.ResolveColor(props["color"]); ok {
		st.color = c
	}
	if c, ok := res.ResolveColor(props["background"]); ok {
		st.background = &c
	}
	st.align = normalizeAlign(props["align"])
	st.padding = parseLength(props["padding"])
	st.spaceBefore = parseLength(props["space-before"])
	st.spaceAfter = parseLength(props["space-after"])
	return st, nil
}

func parseLineHeight(v string) LineHeightSpec {
	v = strings.TrimSpace(v)
	if v == "" {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineFactor}
	}
	if strings.HasSuffix(v, "x") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil && f > 0 {
			return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineFactor}
	}
	if l := ParseRawLengthStr(v); l.Unit != UnitNone && l.Value > 0 {
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	}
	return LineHeightSpec{Kind: LineHeightFactor, Factor: defaultLineFactor}
}

// normalizeAlign 支持 start/end 别名，未知取值返回空（即 left）。
func normalizeAlign(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start":
		return "left"
	case "center", "middle":
		return "center"
	case "right", "end":
		return "right"
	default:
		return ""
	}
}

func normalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "anywhere", "normal":
		return "anywhere"
	case "break-word", "breakword":
		return "break-word"
	case "nowrap", "no-wrap":
		return "nowrap"
	default:
		return "anywhere"
	}
}

// ComposeText 按主题样式排版一段文本，供装饰器在页眉页脚中复用。
func ComposeText(ts Typesetter, res ResourceSet, spec TextSpec) (TextBox, error) {
	return composeText(ts, res, spec, DebugOptions{})
}

func composeText(ts Typesetter, res ResourceSet, spec TextSpec, debug DebugOptions) (TextBox, error) {
	st, err := resolveTextStyle(spec.Style, res)
	if err != nil {
		return TextBox{}, err
	}
	return composeStyled(ts, res, st, spec, debug)
}

func composeStyled(ts Typesetter, res ResourceSet, st textStyle, spec TextSpec, debug DebugOptions) (TextBox, error) {
	fontSize := st.size
	lineHeight := st.lineHeight
	if spec.Size > 0 {
		fontSize = spec.Size
		if st.rawLineHeight.Kind == LineHeightFactor {
			lineHeight = fontSize * st.rawLineHeight.Factor
		} else {
			lineHeight = fontSize * defaultLineFactor
		}
	}
	color := st.color
	if c, ok := res.ResolveColor(spec.Color); ok {
		color = c
	}
	align := st.align
	if a := normalizeAlign(spec.Align); a != "" {
		align = a
	}
	wrap := normalizeWrap(spec.Wrap)

	lines, err := layoutLines(spec.Content, spec.Width, st.font, fontSize, lineHeight, ts, wrap)
	if err != nil {
		return TextBox{}, err
	}

	totalHeight := 0.0
	defaultLeading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}

	tb := TextBox{
		Content:    spec.Content,
		X:          spec.X,
		Y:          spec.Y,
		Width:      spec.Width,
		LineHeight: lineHeight,
		Font:       st.fontName,
		FontSize:   fontSize,
		Color:      color,
		Lines:      lines,
		Height:     totalHeight,
		Align:      align,
		Wrap:       wrap,
	}
	if debug.RawUnits {
		size := RawLengthJSON{Value: st.rawSize.Value, Unit: UnitToString(st.rawSize.Unit)}
		if spec.Size > 0 {
			size = RawLengthJSON{Value: spec.Size, Unit: "mm"}
		}
		var lh RawLineHeightJSON
		if st.rawLineHeight.Kind == LineHeightFactor {
			lh = RawLineHeightJSON{Kind: "factor", Factor: st.rawLineHeight.Factor}
		} else {
			lh = RawLineHeightJSON{Kind: "absolute", Value: st.rawLineHeight.Len.Value, Unit: UnitToString(st.rawLineHeight.Len.Unit)}
		}
		tb.Debug = &TextBoxDebug{RawUnits: &RawUnits{FontSize: &size, LineHeight: &lh}}
	}
	return tb, nil
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts[DefaultFont]; ok {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	if ts == nil {
		parts := strings.Split(content, "\n")
		out := make([]TextLine, 0, len(parts))
		leading := math.Max(lineHeight-fontSize, 0)
		for _, l := range parts {
			out = append(out, TextLine{
				Content:   l,
				Width:     width,
				Height:    fontSize,
				GapBefore: leading,
			})
		}
		out[0].GapBefore = 0
		return out, nil
	}
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: fontSize}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}
