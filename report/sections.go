package report

import (
	"strings"
	"time"

	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/layout"
	"github.com/ByLCY/labreport/locale"
)

// 主题中的样式名。
const (
	styleNormal        = "Normal"
	styleSmall         = "Small"
	styleCompany       = "Company"
	styleTitle         = "Title"
	styleSubtitle      = "Subtitle"
	styleHeading       = "Heading"
	styleSubheading    = "Subheading"
	styleCell          = "Cell"
	styleCellSmall     = "CellSmall"
	styleCellHeader    = "CellHeader"
	styleCellLabel     = "CellLabel"
	styleFooter        = "Footer"
	styleRunningHeader = "RunningHeader"
)

// 调色板颜色名。
const (
	colorBrand      = "Brand"
	colorBrandDark  = "BrandDark"
	colorWhite      = "White"
	colorGrid       = "Grid"
	colorGridBasic  = "GridBasic"
	colorBand       = "Band"
	colorLabelFill  = "LabelFill"
	colorFooterFill = "FooterFill"
)

// section 是构建单个报告分区时的只读输入。
type section struct {
	fields binding.Fields
	lang   locale.Language
}

func (s section) text(key string) string { return locale.Resolve(key, s.lang) }

func (s section) value(key string, max int) string { return s.fields.Truncated(key, max) }

// heading 返回分区标题及其后的留白。
func (s section) heading(key string) []layout.Flowable {
	return []layout.Flowable{
		layout.Paragraph{Text: s.text(key), Style: styleHeading},
		layout.Spacer{Height: layout.Pt(5)},
	}
}

func inches(widths ...float64) []float64 {
	out := make([]float64, len(widths))
	for i, w := range widths {
		out[i] = layout.Inch(w)
	}
	return out
}

func cells(texts ...string) []layout.Cell {
	out := make([]layout.Cell, len(texts))
	for i, t := range texts {
		out[i] = layout.Cell{Text: t}
	}
	return out
}

// resultTableStyle 为带表头的结果表通用样式：深绿表头、白色粗体、数据行交替底色、浅灰网格。
func resultTableStyle(fontSizePt float64) layout.TableStyle {
	return layout.TableStyle{
		HeaderRows:       1,
		HeaderBackground: colorBrandDark,
		HeaderStyle:      styleCellHeader,
		CellStyle:        styleCell,
		RowBands:         []string{colorWhite, colorBand},
		GridColor:        colorGrid,
		GridWidth:        layout.Pt(0.5),
		Align:            "center",
		FontSize:         layout.Pt(fontSizePt),
	}
}

// testDate 将 test_date 统一为 YYYY-MM-DD；无法识别的字符串原样输出。
func (s section) testDate() string {
	raw, ok := s.fields.Get(FieldTestDate)
	if !ok {
		return ""
	}
	if str, ok := raw.(string); ok {
		str = strings.TrimSpace(str)
		for _, layoutStr := range []string{time.RFC3339, "2006-01-02 15:04:05", binding.DateLayout} {
			if t, err := time.Parse(layoutStr, str); err == nil {
				return t.Format(binding.DateLayout)
			}
		}
		return str
	}
	return binding.Format(raw)
}

func (s section) basicInfo() []layout.Flowable {
	rows := [][]layout.Cell{
		cells(s.text("report_no"), s.value(FieldReportNo, limitID), s.text("date_no"), s.testDate()),
		cells(s.text("ci_no"), s.value(FieldCINo, limitID), s.text("order_qty"), s.value(FieldOrderQty, limitQty)),
		cells(s.text("brand"), s.value(FieldBrand, limitID), s.text("produced_qty"), s.value(FieldProducedQty, limitQty)),
		cells(s.text("style_no"), s.value(FieldStyleNo, limitID), s.text("factory_trader"), s.value(FieldFactory, limitFactory)),
		cells(s.text("sales"), s.value(FieldSales, limitID), "", ""),
	}
	table := &layout.Table{
		Columns: inches(1.5, 2.0, 1.5, 2.0),
		Rows:    rows,
		Style: layout.TableStyle{
			CellStyle:         styleCell,
			ColumnStyles:      map[int]string{0: styleCellLabel, 2: styleCellLabel},
			ColumnBackgrounds: map[int]string{0: colorLabelFill, 2: colorLabelFill},
			RowBands:          []string{colorWhite, colorBand},
			GridColor:         colorGridBasic,
			GridWidth:         layout.Pt(0.5),
			Align:             "left",
			FontSize:          layout.Pt(9),
			Padding:           layout.Pt(8),
		},
	}
	out := s.heading("basic_info")
	return append(out,
		table,
		layout.Spacer{Height: layout.Pt(15)},
		layout.Paragraph{Text: s.text("standard_note"), Style: styleSmall},
		layout.Spacer{Height: layout.Pt(10)},
	)
}

// adhesive 构建粘合/拉力测试表：左侧平底鞋，右侧高跟鞋；高跟鞋结果填入备注列。
func (s section) adhesive() []layout.Flowable {
	rows := [][]layout.Cell{
		cells(s.text("flat_shoe"), s.text("standard"), s.text("result"), s.text("high_heel"),
			s.text("sole_wedge"), s.text("standard"), s.text("remark")),
	}
	std := s.text("adhesive_std")
	for _, part := range adhesiveParts {
		label := s.text(part)
		flat := s.value(resultKey("flat_shoe_"+part), limitAdhesive)
		high := s.value(resultKey("high_heel_"+part), limitAdhesive)
		if part == "heel" {
			heightStd := s.text("heel_height") + " " + s.text("cm_5_8") + " / " + s.text("above_8cm")
			rows = append(rows, cells(label, "", flat, label, s.text("heel_pull_std"), heightStd, high))
			continue
		}
		rows = append(rows, cells(label, std, flat, label, "", std, high))
	}
	out := s.heading("adhesive_test")
	return append(out,
		&layout.Table{Columns: inches(0.8, 1.0, 0.7, 0.8, 1.3, 1.3, 1.0), Rows: rows, Style: resultTableStyle(7)},
		layout.Spacer{Height: layout.Pt(15)},
	)
}

var componentLabels = map[string]string{"diamond": "diamond_bow"}

func (s section) componentCells(item string) []layout.Cell {
	label := item
	if l, ok := componentLabels[item]; ok {
		label = l
	}
	return cells(
		s.text(label),
		s.text(item+"_std"),
		s.value(resultKey(item), limitComponent),
		s.value(commentsKey(item), limitComponentNo),
	)
}

// components 构建配件物理测试表（五行成对）及其后的防锈子表。
func (s section) components() []layout.Flowable {
	header := cells(s.text("item"), s.text("standard"), s.text("result"), s.text("comments"))
	rows := [][]layout.Cell{append(header, header...)}
	for _, pair := range componentPairs {
		rows = append(rows, append(s.componentCells(pair[0]), s.componentCells(pair[1])...))
	}

	var rust [][]layout.Cell
	for _, pair := range rustPairs {
		rust = append(rust, cells(
			s.text(pair[0]), s.value(resultKey("rust_"+pair[0]), limitRust),
			s.text(pair[1]), s.value(resultKey("rust_"+pair[1]), limitRust),
		))
	}
	rustStyle := resultTableStyle(8)
	rustStyle.HeaderRows = 0

	out := s.heading("components_test")
	return append(out,
		&layout.Table{Columns: inches(0.8, 0.9, 0.6, 0.9, 0.8, 0.9, 0.6, 0.9), Rows: rows, Style: resultTableStyle(6.5)},
		layout.Spacer{Height: layout.Pt(10)},
		layout.Paragraph{Text: s.text("rust_test"), Style: styleSubheading},
		&layout.Table{Columns: inches(1.5, 1.5, 1.5, 1.5), Rows: rust, Style: rustStyle},
	)
}

// resultTable 构建“项目/标准/结果/备注”四列结果表。
func (s section) resultTable(titleKey string, items []resultItem, widths []float64) []layout.Flowable {
	rows := [][]layout.Cell{cells(s.text("item"), s.text("standard"), s.text("result"), s.text("comments"))}
	for _, it := range items {
		std := layout.Cell{}
		if it.standard != "" {
			std.Text = s.text(it.standard)
		}
		if it.small {
			std.Style = styleCellSmall
		}
		rows = append(rows, []layout.Cell{
			{Text: s.text(it.label)},
			std,
			{Text: s.value(resultKey(it.field), limitResult)},
			{Text: s.value(commentsKey(it.field), limitComments)},
		})
	}
	// 不覆盖字号：正文沿用 Cell 的 8pt，较长的标准文本使用 CellSmall
	out := s.heading(titleKey)
	return append(out, &layout.Table{Columns: widths, Rows: rows, Style: resultTableStyle(0)})
}

func (s section) flexing() []layout.Flowable {
	return s.resultTable("flexing_test", flexingItems, inches(1.8, 2.0, 1.2, 2.2))
}

func (s section) abrasion() []layout.Flowable {
	return s.resultTable("abrasion_test", abrasionItems, inches(1.8, 3.0, 1.2, 2.2))
}

func (s section) resistance() []layout.Flowable {
	return s.resultTable("resistance_test", resistanceItems, inches(1.8, 3.0, 1.2, 2.2))
}

func (s section) hardness() []layout.Flowable {
	return s.resultTable("hardness_test", hardnessItems, inches(1.8, 3.0, 1.2, 2.2))
}

// conclusion 构建结论表、签名区与版本号。
func (s section) conclusion() []layout.Flowable {
	conclusion := &layout.Table{
		Columns: inches(0.8, 1.6, 0.8, 1.6, 0.8, 1.6),
		Rows: [][]layout.Cell{cells(
			s.text("pass_label"), s.value(FieldPassResult, limitConclusion),
			s.text("fail_label"), s.value(FieldFailResult, limitConclusion),
			s.text("accept_label"), s.value(FieldAcceptResult, limitConclusion),
		)},
		Style: layout.TableStyle{
			CellStyle:    styleCell,
			ColumnStyles: map[int]string{0: styleCellLabel, 2: styleCellLabel, 4: styleCellLabel},
			RowBands:     []string{colorWhite},
			GridColor:    colorGrid,
			GridWidth:    layout.Pt(0.5),
			Align:        "center",
			FontSize:     layout.Pt(8),
		},
	}

	line := s.text("signature_line")
	sign := s.text("signature")
	signatures := &layout.Table{
		Columns: inches(1.2, 2.3, 0.5, 1.2, 2.3),
		Rows: [][]layout.Cell{
			cells(s.text("verified_by"), s.value(FieldVerifiedBy, limitSignature), "", s.text("testing_person"), s.value(FieldTestingPerson, limitSignature)),
			cells("", line, "", "", line),
			cells("", sign, "", "", sign),
		},
		Style: layout.TableStyle{
			CellStyle:    styleCell,
			ColumnStyles: map[int]string{0: styleCellLabel, 3: styleCellLabel},
			Align:        "left",
			FontSize:     layout.Pt(9),
		},
	}

	out := s.heading("conclusion")
	return append(out,
		conclusion,
		layout.Spacer{Height: layout.Pt(10)},
		signatures,
		layout.Spacer{Height: layout.Pt(10)},
		layout.Paragraph{Text: s.text("version"), Style: styleNormal},
	)
}
