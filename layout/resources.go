package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/labreport/dsl"
)

// DefaultFont 为样式未声明字体时使用的字体资源名。
const DefaultFont = "Regular"

// Resources 收集主题中的颜色、字体与样式，并展开样式继承。
func Resources(theme *dsl.Theme) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	if theme == nil {
		return res, fmt.Errorf("主题为空")
	}
	rawStyles := map[string]Style{}

	for _, section := range theme.Sections {
		switch {
		case section.Palette != nil && section.Palette.Block != nil:
			for _, stmt := range section.Palette.Block.Statements {
				if stmt.Command == nil || stmt.Command.Name != "color" {
					continue
				}
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("颜色 %s: %w", name, err)
				}
				res.Colors[name] = c
			}
		case section.Fonts != nil && section.Fonts.Block != nil:
			for _, stmt := range section.Fonts.Block.Statements {
				if stmt.Command == nil || stmt.Command.Name != "font" {
					continue
				}
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			}
		case section.Styles != nil && section.Styles.Block != nil:
			for _, stmt := range section.Styles.Block.Statements {
				if stmt.Command == nil || stmt.Command.Name != "style" {
					continue
				}
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts[DefaultFont] = FontResource{
			Name:   DefaultFont,
			Src:    "built-in:latin-regular",
			Family: DefaultFont,
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

// Meta 读取主题 meta 段。
func Meta(theme *dsl.Theme) DocumentMeta {
	meta := DocumentMeta{
		Creator: "labreport",
	}
	if theme == nil {
		return meta
	}
	for _, section := range theme.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = stmt.Assignment.Value.Text()
			case "author":
				meta.Author = stmt.Assignment.Value.Text()
			case "subject":
				meta.Subject = stmt.Assignment.Value.Text()
			case "creator":
				meta.Creator = stmt.Assignment.Value.Text()
			case "keywords":
				meta.Keywords = stmt.Assignment.Value.Strings()
			}
		}
	}
	return meta
}

// Setup 解析 page 段得到纸张尺寸与页边距；未声明 page 时报错。
func Setup(theme *dsl.Theme) (PageSetup, error) {
	if theme == nil {
		return PageSetup{}, fmt.Errorf("主题为空")
	}
	for _, section := range theme.Sections {
		if section.Page == nil {
			continue
		}
		width, height, err := resolvePageSize(section.Page.Spec)
		if err != nil {
			return PageSetup{}, err
		}
		return PageSetup{
			Width:  width,
			Height: height,
			Margin: resolveMargin(section.Page.Spec.Params),
		}, nil
	}
	return PageSetup{}, fmt.Errorf("主题中缺少 page 段落")
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := stmt.Assignment.Value.Text()
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
		case "style":
			font.Style = val
		case "fallback":
			font.Fallback = val
		case "index":
			if v, err := strconv.Atoi(val); err == nil && v >= 0 {
				font.Index = v
			}
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := stmt.Assignment.Value.Text()
		if val == "" {
			continue
		}
		style.Props[stmt.Assignment.Key] = val
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width := base[0]
	height := base[1]
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// resolveMargin 采用 CSS 语义：1 个值四边相同；2 个值为上下/左右；3 个值为上/左右/下；4 个值为上右下左。
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	for i := 0; i < len(params); i++ {
		if params[i].Value != "margin" {
			continue
		}
		vals := []float64{}
		for j := i + 1; j < len(params) && len(vals) < 4; j++ {
			// 遇到非数值 token（例如 portrait）即停止
			if _, err := strconv.ParseFloat(trimUnit(params[j].Value), 64); err != nil {
				break
			}
			vals = append(vals, parseLength(params[j].Value))
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}

// ResolveColor 接受调色板名称或 #hex，无法识别时返回 ok=false。
func (rs ResourceSet) ResolveColor(value string) (Color, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Color{}, false
	}
	if c, ok := rs.Colors[value]; ok {
		return c, true
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c, true
		}
	}
	return Color{}, false
}

func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
	}
	switch len(hex) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(hex[0:1], 2)),
			G: mustHex(strings.Repeat(hex[1:2], 2)),
			B: mustHex(strings.Repeat(hex[2:3], 2)),
		}, nil
	case 6, 8:
		return Color{
			R: mustHex(hex[0:2]),
			G: mustHex(hex[2:4]),
			B: mustHex(hex[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// parseLength 将带单位的长度转换为 mm，无单位按 mm 处理，无法解析时返回 0。
func parseLength(value string) float64 {
	l := ParseRawLengthStr(value)
	if l.Unit == UnitNone {
		return l.Value
	}
	return l.ToMM()
}

func trimUnit(value string) string {
	for _, suffix := range []string{"pt", "mm", "cm", "in", "%"} {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	return value
}
