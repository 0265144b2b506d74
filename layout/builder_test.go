package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/labreport/dsl"
)

// stubTypesetter 按字符数估算宽度（每个字符 0.5 倍字号），按空格贪心折行。
// 仅用于测试，避免引入 renderer 造成循环依赖。
type stubTypesetter struct{}

func (s *stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	charWidth := fontSize * 0.5
	measure := func(s string) float64 { return float64(utf8.RuneCountInString(s)) * charWidth }
	var lines []TextLine
	for _, para := range strings.Split(content, "\n") {
		current := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if current != "" && measure(candidate) > width {
				lines = append(lines, TextLine{Content: current, Width: measure(current), Height: fontSize})
				current = word
				continue
			}
			current = candidate
		}
		lines = append(lines, TextLine{Content: current, Width: measure(current), Height: fontSize})
	}
	return lines, nil
}

const testTheme = `
theme Test v1 {
  palette {
    color Brand = #10b981
    color White = #ffffff
    color Band = #f9f9f9
    color Grid = #e0e0e0
  }
  fonts {
    font Regular { src: "built-in:latin-regular" }
    font Bold { src: "built-in:latin-bold" }
  }
  styles {
    style Normal {
      font: Regular
      size: 10pt
      line-height: 1.2x
    }
    style Heading extends Normal {
      font: Bold
      size: 14pt
      line-height: 17pt
      color: White
      background: Brand
      padding: 6pt
      space-before: 12pt
      space-after: 8pt
    }
    style Cell extends Normal {
      align: center
    }
  }
  page A5 portrait margin 10mm
}
`

func testOptions(t *testing.T) BuildOptions {
	t.Helper()
	theme, err := dsl.ParseString(testTheme)
	if err != nil {
		t.Fatalf("解析主题失败: %v", err)
	}
	res, err := Resources(theme)
	if err != nil {
		t.Fatalf("收集资源失败: %v", err)
	}
	setup, err := Setup(theme)
	if err != nil {
		t.Fatalf("解析页面失败: %v", err)
	}
	return BuildOptions{
		Typesetter: &stubTypesetter{},
		Resources:  res,
		Page:       setup,
		Meta:       Meta(theme),
	}
}

func longTable(rows int) *Table {
	t := &Table{
		Columns: []float64{40, 40, 40},
		Style: TableStyle{
			HeaderRows: 1,
			CellStyle:  "Cell",
			RowBands:   []string{"White", "Band"},
			GridColor:  "Grid",
		},
	}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []Cell{{Text: fmt.Sprintf("row %d", i)}, {Text: "x"}, {Text: "y"}})
	}
	return t
}

// TestTextBoxTotalHeightInvariant 断言：TextBox.Height == Σ(line.Height + line.GapBefore)。
func TestTextBoxTotalHeightInvariant(t *testing.T) {
	opts := testOptions(t)
	content := strings.Repeat("long ", 80)
	res, err := Build([]Flowable{Paragraph{Text: content, Style: "Normal"}}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	tb := res.Pages[0].Texts[0]
	if len(tb.Lines) < 2 {
		t.Fatalf("期望折成多行，实际 %d 行", len(tb.Lines))
	}
	sum := 0.0
	for i, ln := range tb.Lines {
		if i == 0 && ln.GapBefore != 0 {
			t.Fatalf("首行 GapBefore 必须为 0，实际 %g", ln.GapBefore)
		}
		sum += ln.Height + ln.GapBefore
	}
	if diff := sum - tb.Height; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("高度不一致：sum=%g height=%g", sum, tb.Height)
	}
}

func TestPageBreakOnEmptyPageIsNoop(t *testing.T) {
	opts := testOptions(t)
	stream := []Flowable{
		PageBreak{},
		Paragraph{Text: "first", Style: "Normal"},
		PageBreak{},
		PageBreak{},
		Paragraph{Text: "second", Style: "Normal"},
	}
	res, err := Build(stream, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Pages) != 2 {
		t.Fatalf("期望 2 页，实际 %d 页", len(res.Pages))
	}
	if got := res.Pages[1].Texts[0].Content; got != "second" {
		t.Fatalf("第二页内容错误: %q", got)
	}
	if res.Pages[1].Texts[0].Y != opts.Page.Margin.Top {
		t.Fatalf("换页后应从内容区顶部开始，实际 y=%g", res.Pages[1].Texts[0].Y)
	}
}

func TestSpacerDroppedWhenItDoesNotFit(t *testing.T) {
	opts := testOptions(t)
	res, err := Build([]Flowable{
		Paragraph{Text: "a", Style: "Normal"},
		Spacer{Height: 1000},
		Paragraph{Text: "b", Style: "Normal"},
	}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("放不下的留白不应触发换页，实际 %d 页", len(res.Pages))
	}
	texts := res.Pages[0].Texts
	if len(texts) != 2 || texts[1].Y >= texts[0].Y+texts[0].Height+1 {
		t.Fatalf("留白应被丢弃: %+v", texts)
	}
}

func TestHeadingBackgroundAndSpaceBefore(t *testing.T) {
	opts := testOptions(t)
	res, err := Build([]Flowable{Paragraph{Text: "1. BASIC INFORMATION", Style: "Heading"}}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	page := res.Pages[0]
	if len(page.Rects) != 1 || page.Rects[0].FillColor == nil {
		t.Fatalf("标题应带背景矩形: %+v", page.Rects)
	}
	rect := page.Rects[0]
	if rect.Y != opts.Page.Margin.Top {
		t.Fatalf("页顶的段前间距应被忽略，实际 y=%g", rect.Y)
	}
	if *rect.FillColor != (Color{R: 0x10, G: 0xb9, B: 0x81}) {
		t.Fatalf("背景色错误: %+v", *rect.FillColor)
	}
	text := page.Texts[0]
	if text.Color != (Color{R: 255, G: 255, B: 255}) {
		t.Fatalf("标题文字应为白色: %+v", text.Color)
	}
	if rect.Height <= text.Height {
		t.Fatalf("背景高度应包含内边距: rect=%g text=%g", rect.Height, text.Height)
	}
}

func TestTableSplitsByRowAndKeepsBandParity(t *testing.T) {
	opts := testOptions(t)
	res, err := Build([]Flowable{longTable(80)}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Pages) < 2 {
		t.Fatalf("长表格应跨页，实际 %d 页", len(res.Pages))
	}
	bottom := opts.Page.Height - opts.Page.Margin.Bottom
	white := Color{R: 255, G: 255, B: 255}
	band := Color{R: 0xf9, G: 0xf9, B: 0xf9}
	total := 0
	for _, page := range res.Pages {
		if len(page.Tables) != 1 {
			t.Fatalf("第 %d 页应有一个表格片段，实际 %d", page.Number, len(page.Tables))
		}
		for _, row := range page.Tables[0].Rows {
			if row.Y+row.Height > bottom+1e-6 {
				t.Fatalf("行越过页面底部: y=%g h=%g bottom=%g", row.Y, row.Height, bottom)
			}
			if total == 0 {
				if !row.IsHeader || row.Background != nil {
					t.Fatalf("首行应为无底色表头: %+v", row)
				}
			} else {
				want := white
				if (total-1)%2 == 1 {
					want = band
				}
				if row.Background == nil || *row.Background != want {
					t.Fatalf("第 %d 行底色错误: %+v", total, row.Background)
				}
			}
			total++
		}
	}
	if total != 80 {
		t.Fatalf("行数丢失：期望 80，实际 %d", total)
	}
	if res.Pages[1].Tables[0].Rows[0].IsHeader {
		t.Fatalf("表头不应在续页重复")
	}
}

func TestTableWiderThanFrameIsScaled(t *testing.T) {
	opts := testOptions(t)
	table := &Table{
		Columns: []float64{100, 100},
		Rows:    [][]Cell{{{Text: "a"}, {Text: "b"}}},
		Style:   TableStyle{CellStyle: "Cell"},
	}
	res, err := Build([]Flowable{table}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	box := res.Pages[0].Tables[0]
	frame := opts.Page.ContentWidth()
	if diff := box.Width - frame; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("表格宽度应缩放到 %g，实际 %g", frame, box.Width)
	}
	if box.ColumnWidths[0] != box.ColumnWidths[1] {
		t.Fatalf("应按比例缩放: %+v", box.ColumnWidths)
	}
	if box.GridColor != nil {
		t.Fatalf("未设置网格颜色时不应有网格")
	}
	if table.Columns[0] != 100 {
		t.Fatalf("不应修改调用方的列宽")
	}
}

func TestTableColumnBackgroundsAndCenteredText(t *testing.T) {
	opts := testOptions(t)
	table := &Table{
		Columns: []float64{30, 60},
		Rows:    [][]Cell{{{Text: "Label:"}, {Text: strings.Repeat("value ", 20)}}},
		Style: TableStyle{
			CellStyle:         "Cell",
			ColumnBackgrounds: map[int]string{0: "#f0fdf4"},
			Align:             "left",
		},
	}
	res, err := Build([]Flowable{table}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	row := res.Pages[0].Tables[0].Rows[0]
	if row.Cells[0].Background == nil || row.Cells[1].Background != nil {
		t.Fatalf("列底色错误: %+v", row.Cells)
	}
	if row.Cells[0].Text.Align != "left" {
		t.Fatalf("表格对齐应覆盖样式: %q", row.Cells[0].Text.Align)
	}
	short := row.Cells[0].Text
	mid := short.Y + short.Height/2
	if diff := mid - (row.Y + row.Height/2); diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("单元格文本应垂直居中: mid=%g row=%g", mid, row.Y+row.Height/2)
	}
}

func TestDecoratorCalledForEveryPage(t *testing.T) {
	opts := testOptions(t)
	var seen []string
	opts.Decorator = PageDecoratorFunc(func(frame PageFrame) (Decoration, error) {
		seen = append(seen, fmt.Sprintf("%d/%d", frame.Number, frame.Total))
		tb, err := ComposeText(frame.Typesetter, frame.Resources, TextSpec{
			Content: fmt.Sprintf("Page %d", frame.Number),
			Style:   "Normal",
			Width:   frame.Width - frame.Margin.Right,
			Align:   "right",
		})
		if err != nil {
			return Decoration{}, err
		}
		return Decoration{Footer: HeaderFooter{Height: 10, Texts: []TextBox{tb}}}, nil
	})
	res, err := Build([]Flowable{
		Paragraph{Text: "one", Style: "Normal"},
		PageBreak{},
		Paragraph{Text: "two", Style: "Normal"},
		PageBreak{},
		Paragraph{Text: "three", Style: "Normal"},
	}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if got := strings.Join(seen, ","); got != "1/3,2/3,3/3" {
		t.Fatalf("装饰器调用顺序错误: %s", got)
	}
	if res.Pages[2].Footer.Texts[0].Content != "Page 3" {
		t.Fatalf("页脚内容错误: %+v", res.Pages[2].Footer)
	}
}

func TestDecoratorErrorAborts(t *testing.T) {
	opts := testOptions(t)
	opts.Decorator = PageDecoratorFunc(func(PageFrame) (Decoration, error) {
		return Decoration{}, fmt.Errorf("boom")
	})
	if _, err := Build([]Flowable{Paragraph{Text: "x", Style: "Normal"}}, opts); err == nil {
		t.Fatalf("装饰器失败时应返回错误")
	}
}

func TestUnknownStyleFails(t *testing.T) {
	opts := testOptions(t)
	if _, err := Build([]Flowable{Paragraph{Text: "x", Style: "Missing"}}, opts); err == nil {
		t.Fatalf("未定义样式应报错")
	}
}

func TestBuildRequiresTypesetter(t *testing.T) {
	opts := testOptions(t)
	opts.Typesetter = nil
	if _, err := Build(nil, opts); err == nil {
		t.Fatalf("缺少 Typesetter 时应报错")
	}
}

func TestRuleIsCenteredWithRatio(t *testing.T) {
	opts := testOptions(t)
	res, err := Build([]Flowable{Rule{Width: 0.8, Color: "Brand"}}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	ln := res.Pages[0].Lines[0]
	frame := opts.Page.ContentWidth()
	if diff := (ln.X2 - ln.X1) - frame*0.8; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("分隔线宽度错误: %g", ln.X2-ln.X1)
	}
	left := ln.X1 - opts.Page.Margin.Left
	right := opts.Page.Margin.Left + frame - ln.X2
	if diff := left - right; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("分隔线应居中: left=%g right=%g", left, right)
	}
}

func TestDebugRawUnitsAndJSON(t *testing.T) {
	opts := testOptions(t)
	opts.Debug.RawUnits = true
	res, err := Build([]Flowable{Paragraph{Text: "x", Style: "Heading"}}, opts)
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	dbg := res.Pages[0].Texts[0].Debug
	if dbg == nil || dbg.RawUnits.FontSize.Unit != "pt" || dbg.RawUnits.FontSize.Value != 14 {
		t.Fatalf("rawUnits 字号错误: %+v", dbg)
	}
	if dbg.RawUnits.LineHeight.Kind != "absolute" || dbg.RawUnits.LineHeight.Value != 17 {
		t.Fatalf("rawUnits 行高错误: %+v", dbg.RawUnits.LineHeight)
	}

	var buf bytes.Buffer
	if err := WriteDebugJSON(res, &buf); err != nil {
		t.Fatalf("输出调试 JSON 失败: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	if _, ok := decoded["pages"]; !ok {
		t.Fatalf("调试 JSON 缺少 pages")
	}
}
