package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/labreport/layout"
	"github.com/ByLCY/labreport/locale"
)

var (
	headerHeight  = layout.Inch(0.6)
	footerHeight  = layout.Inch(0.7)
	footerInset   = layout.Inch(0.5)
	footerBaseGap = layout.Inch(0.25)
)

// decorator 为每页生成页眉（第 2 页起）与页脚。
type decorator struct {
	lang  locale.Language
	city  string
	stamp time.Time
}

var _ layout.PageDecorator = decorator{}

func (d decorator) Decorate(frame layout.PageFrame) (layout.Decoration, error) {
	var deco layout.Decoration
	brand, _ := frame.Resources.ResolveColor(colorBrand)

	if frame.Number > 1 {
		tb, err := layout.ComposeText(frame.Typesetter, frame.Resources, layout.TextSpec{
			Content: locale.Resolve("running_header", d.lang),
			Style:   styleRunningHeader,
			Width:   frame.Width,
			Align:   "center",
			Wrap:    "nowrap",
		})
		if err != nil {
			return deco, err
		}
		tb.Y = (headerHeight - tb.Height) / 2
		fill := brand
		deco.Header = layout.HeaderFooter{
			Height: headerHeight,
			Rects:  []layout.Rect{{Width: frame.Width, Height: headerHeight, FillColor: &fill}},
			Texts:  []layout.TextBox{tb},
		}
	}

	top := frame.Height - footerHeight
	fill, _ := frame.Resources.ResolveColor(colorFooterFill)
	deco.Footer = layout.HeaderFooter{
		Height: footerHeight,
		Rects:  []layout.Rect{{Y: top, Width: frame.Width, Height: footerHeight, FillColor: &fill}},
		Lines:  []layout.Line{{X1: 0, Y1: top, X2: frame.Width, Y2: top, Color: brand, Width: layout.Pt(1)}},
	}

	dateLabel := strings.NewReplacer(":", "", "：", "").Replace(locale.Resolve("report_date", d.lang))
	parts := []struct{ text, align string }{
		{locale.Resolve("test_location", d.lang) + " " + locale.LocationDisplay(d.city, d.lang), "left"},
		{dateLabel + " " + d.stamp.In(Shanghai).Format("2006-01-02 15:04:05"), "center"},
		{locale.Resolve("page", d.lang) + " " + strconv.Itoa(frame.Number), "right"},
	}
	for _, p := range parts {
		tb, err := layout.ComposeText(frame.Typesetter, frame.Resources, layout.TextSpec{
			Content: p.text,
			Style:   styleFooter,
			X:       footerInset,
			Width:   frame.Width - 2*footerInset,
			Align:   p.align,
			Wrap:    "nowrap",
		})
		if err != nil {
			return deco, err
		}
		tb.Y = frame.Height - footerBaseGap - tb.Height
		deco.Footer.Texts = append(deco.Footer.Texts, tb)
	}
	return deco, nil
}
