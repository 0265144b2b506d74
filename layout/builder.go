package layout

import (
	"fmt"
)

const (
	defaultCellPadding = 1.2
	defaultGridWidth   = 0.5 * PtToMm
	defaultRuleWidth   = 1 * PtToMm
	epsilon            = 1e-6
)

// Build 将内容流按页面可用区域自上而下排版并分页，最后为每一页调用装饰器。
func Build(stream []Flowable, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if opts.Page.Width <= 0 || opts.Page.Height <= 0 {
		return nil, fmt.Errorf("layout: 纸张尺寸无效 %.1fx%.1f", opts.Page.Width, opts.Page.Height)
	}
	if opts.Page.Margin.Top+opts.Page.Margin.Bottom >= opts.Page.Height {
		return nil, fmt.Errorf("layout: 上下边距超出纸张高度")
	}

	collector := newPageCollector(opts.Page)
	ctx := &flowContext{
		x:         opts.Page.Margin.Left,
		width:     opts.Page.ContentWidth(),
		cursorY:   collector.contentTop(),
		collector: collector,
		res:       opts.Resources,
		ts:        opts.Typesetter,
		debug:     opts.Debug,
	}

	for i, item := range stream {
		var err error
		switch f := item.(type) {
		case nil:
			continue
		case Paragraph:
			err = ctx.paragraph(f)
		case Spacer:
			ctx.spacer(f)
		case Rule:
			ctx.rule(f)
		case PageBreak:
			ctx.pageBreak()
		case *Table:
			err = ctx.table(f)
		default:
			err = fmt.Errorf("不支持的内容类型 %T", item)
		}
		if err != nil {
			return nil, fmt.Errorf("排版第 %d 个内容块失败: %w", i+1, err)
		}
	}

	pages := collector.pages()
	if opts.Decorator != nil {
		for i := range pages {
			deco, err := opts.Decorator.Decorate(PageFrame{
				Number:     pages[i].Number,
				Total:      len(pages),
				Width:      pages[i].Width,
				Height:     pages[i].Height,
				Margin:     pages[i].Margin,
				Resources:  opts.Resources,
				Typesetter: opts.Typesetter,
			})
			if err != nil {
				return nil, fmt.Errorf("第 %d 页页眉页脚生成失败: %w", i+1, err)
			}
			pages[i].Header = deco.Header
			pages[i].Footer = deco.Footer
		}
	}

	return &Result{
		Pages:     pages,
		Resources: opts.Resources,
		Meta:      opts.Meta,
	}, nil
}

type pageAccumulator struct {
	texts  []TextBox
	tables []TableBox
	lines  []Line
	rects  []Rect
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendTable(t TableBox) {
	p.tables = append(p.tables, t)
}

func (p *pageAccumulator) empty() bool {
	return len(p.texts) == 0 && len(p.tables) == 0 && len(p.lines) == 0 && len(p.rects) == 0
}

type pageCollector struct {
	setup   PageSetup
	accs    []*pageAccumulator
	current int
}

func newPageCollector(setup PageSetup) *pageCollector {
	pc := &pageCollector{setup: setup}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) contentTop() float64 {
	return pc.setup.Margin.Top
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.setup.Height - pc.setup.Margin.Bottom
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Number: i + 1,
			Width:  pc.setup.Width,
			Height: pc.setup.Height,
			Margin: pc.setup.Margin,
			Texts:  acc.texts,
			Tables: acc.tables,
			Lines:  acc.lines,
			Rects:  acc.rects,
		}
	}
	return out
}

type flowContext struct {
	x         float64
	width     float64
	cursorY   float64
	collector *pageCollector
	res       ResourceSet
	ts        Typesetter
	debug     DebugOptions
}

func (ctx *flowContext) acc() *pageAccumulator {
	return ctx.collector.curr()
}

func (ctx *flowContext) atTop() bool {
	return ctx.cursorY <= ctx.collector.contentTop()+epsilon
}

func (ctx *flowContext) fits(height float64) bool {
	return ctx.cursorY+height <= ctx.collector.contentBottom()+epsilon
}

func (ctx *flowContext) newPage() {
	ctx.collector.newPage()
	ctx.cursorY = ctx.collector.contentTop()
}

func (ctx *flowContext) pageBreak() {
	if ctx.acc().empty() {
		return
	}
	ctx.newPage()
}

func (ctx *flowContext) spacer(s Spacer) {
	if s.Height <= 0 {
		return
	}
	if !ctx.fits(s.Height) {
		return
	}
	ctx.cursorY += s.Height
}

func (ctx *flowContext) paragraph(p Paragraph) error {
	st, err := resolveTextStyle(p.Style, ctx.res)
	if err != nil {
		return err
	}
	pad := 0.0
	if st.background != nil {
		pad = st.padding
	}
	tb, err := composeStyled(ctx.ts, ctx.res, st, TextSpec{
		Content: p.Text,
		X:       ctx.x + pad,
		Width:   ctx.width - 2*pad,
		Align:   p.Align,
	}, ctx.debug)
	if err != nil {
		return err
	}
	boxHeight := tb.Height + 2*pad

	before := st.spaceBefore
	if ctx.atTop() {
		before = 0
	}
	if !ctx.fits(before+boxHeight) && !ctx.atTop() {
		ctx.newPage()
		before = 0
	}
	y := ctx.cursorY + before
	acc := ctx.acc()
	if st.background != nil {
		fill := *st.background
		acc.rects = append(acc.rects, Rect{
			X:         ctx.x,
			Y:         y,
			Width:     ctx.width,
			Height:    boxHeight,
			FillColor: &fill,
		})
	}
	tb.Y = y + pad
	acc.appendText(tb)
	ctx.cursorY = y + boxHeight + st.spaceAfter
	return nil
}

func (ctx *flowContext) rule(r Rule) {
	ratio := r.Width
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	thickness := r.Thickness
	if thickness <= 0 {
		thickness = defaultRuleWidth
	}
	before := r.SpaceBefore
	if !ctx.fits(before+thickness) && !ctx.atTop() {
		ctx.newPage()
		before = 0
	}
	color, ok := ctx.res.ResolveColor(r.Color)
	if !ok {
		color = defaultTextColor
	}
	w := ctx.width * ratio
	x := ctx.x + (ctx.width-w)/2
	y := ctx.cursorY + before + thickness/2
	acc := ctx.acc()
	acc.lines = append(acc.lines, Line{X1: x, Y1: y, X2: x + w, Y2: y, Color: color, Width: thickness})
	ctx.cursorY += before + thickness + r.SpaceAfter
}

// table 逐行放置表格；放不下的行整体移到下一页，行底色的奇偶在跨页后保持连续。
func (ctx *flowContext) table(t *Table) error {
	if t == nil || len(t.Columns) == 0 {
		return fmt.Errorf("table 需要至少一列")
	}
	columns := make([]float64, len(t.Columns))
	copy(columns, t.Columns)
	total := t.Width()
	if total <= 0 {
		return fmt.Errorf("table 列宽之和必须大于 0")
	}
	if total > ctx.width {
		scale := ctx.width / total
		for i := range columns {
			columns[i] *= scale
		}
		total = ctx.width
	}
	tableX := ctx.x + (ctx.width-total)/2

	var grid *Color
	gridWidth := 0.0
	if c, ok := ctx.res.ResolveColor(t.Style.GridColor); ok {
		grid = &c
		gridWidth = t.Style.GridWidth
		if gridWidth <= 0 {
			gridWidth = defaultGridWidth
		}
	}

	var current *TableBox
	flush := func() {
		if current != nil && len(current.Rows) > 0 {
			ctx.acc().appendTable(*current)
		}
		current = nil
	}

	for r, cells := range t.Rows {
		header := r < t.Style.HeaderRows
		row, err := ctx.tableRow(t, columns, tableX, cells, header, r-t.Style.HeaderRows)
		if err != nil {
			return fmt.Errorf("第 %d 行: %w", r+1, err)
		}
		if current != nil && !ctx.fits(row.Height) {
			flush()
			ctx.newPage()
		}
		if current == nil {
			if !ctx.fits(row.Height) && !ctx.atTop() {
				ctx.newPage()
			}
			current = &TableBox{
				X:            tableX,
				Y:            ctx.cursorY,
				Width:        total,
				ColumnWidths: columns,
				GridColor:    grid,
				GridWidth:    gridWidth,
			}
		}
		row.place(ctx.cursorY)
		current.Rows = append(current.Rows, row)
		ctx.cursorY += row.Height
	}
	flush()
	return nil
}

func (ctx *flowContext) tableRow(t *Table, columns []float64, tableX float64, cells []Cell, header bool, dataIndex int) (TableRow, error) {
	style := t.Style
	padX := style.Padding
	if padX <= 0 {
		padX = defaultCellPadding
	}
	padY := style.VPadding
	if padY <= 0 {
		padY = defaultCellPadding
	}

	row := TableRow{IsHeader: header}
	if header {
		if c, ok := ctx.res.ResolveColor(style.HeaderBackground); ok {
			row.Background = &c
		}
	} else if len(style.RowBands) > 0 && dataIndex >= 0 {
		if c, ok := ctx.res.ResolveColor(style.RowBands[dataIndex%len(style.RowBands)]); ok {
			row.Background = &c
		}
	}

	x := tableX
	maxHeight := 0.0
	for c, colWidth := range columns {
		var cell Cell
		if c < len(cells) {
			cell = cells[c]
		}
		styleName := cell.Style
		if styleName == "" {
			switch {
			case header && style.HeaderStyle != "":
				styleName = style.HeaderStyle
			case style.ColumnStyles[c] != "":
				styleName = style.ColumnStyles[c]
			default:
				styleName = style.CellStyle
			}
		}
		innerWidth := colWidth - 2*padX
		if innerWidth <= 0 {
			innerWidth = colWidth
		}
		tb, err := composeText(ctx.ts, ctx.res, TextSpec{
			Content: cell.Text,
			Style:   styleName,
			X:       x + padX,
			Width:   innerWidth,
			Align:   style.Align,
			Size:    style.FontSize,
		}, ctx.debug)
		if err != nil {
			return row, err
		}
		tc := TableCell{Text: tb}
		if !header {
			if bg, ok := style.ColumnBackgrounds[c]; ok {
				if col, ok := ctx.res.ResolveColor(bg); ok {
					tc.Background = &col
				}
			}
		}
		row.Cells = append(row.Cells, tc)
		if tb.Height > maxHeight {
			maxHeight = tb.Height
		}
		x += colWidth
	}
	row.Height = maxHeight + 2*padY
	return row, nil
}

// place 把行移到 y 处，单元格文本在行内垂直居中。
func (r *TableRow) place(y float64) {
	r.Y = y
	for i := range r.Cells {
		r.Cells[i].Text.Y = y + (r.Height-r.Cells[i].Text.Height)/2
	}
}
