package report

import (
	"strings"
	"time"
	_ "time/tzdata" // 保证无系统时区库时也能加载 Asia/Shanghai

	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/layout"
	"github.com/ByLCY/labreport/locale"
)

// Request 是一次报告生成的全部输入。
type Request struct {
	Fields     binding.Fields
	Language   locale.Language // 报告语言，决定 PDF 内容
	UILanguage locale.Language // 界面语言，只影响返回给表单的提示
	City       string          // 测试地点，为空时使用 locale.DefaultCity
}

func (r Request) city() string {
	if c := strings.TrimSpace(r.City); c != "" {
		return c
	}
	return locale.DefaultCity
}

func (r Request) language() locale.Language {
	if r.Language == locale.Chinese {
		return locale.Chinese
	}
	return locale.English
}

// Shanghai 为报告日期与文件名时间戳使用的时区。
var Shanghai = loadShanghai()

func loadShanghai() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// Assemble 按固定顺序生成报告内容流。基本信息与配件测试之后固定换页，其余分区以 15pt 留白分隔。
func Assemble(req Request, now time.Time) []layout.Flowable {
	lang := req.language()
	s := section{fields: req.Fields, lang: lang}
	local := now.In(Shanghai)

	stream := []layout.Flowable{
		layout.Spacer{Height: layout.Pt(10)},
		layout.Paragraph{Text: s.text("company"), Style: styleCompany},
		layout.Paragraph{Text: s.text("title"), Style: styleTitle},
		layout.Paragraph{Text: s.text("test_location") + " " + locale.LocationDisplay(req.city(), lang), Style: styleSubtitle},
		layout.Paragraph{Text: s.text("report_date") + " " + local.Format(binding.DateLayout), Style: styleSubtitle},
		layout.Rule{Width: 0.8, Color: colorBrand, SpaceBefore: layout.Pt(4), SpaceAfter: layout.Pt(4)},
		layout.Spacer{Height: layout.Pt(15)},
	}
	stream = append(stream, s.basicInfo()...)
	stream = append(stream, layout.PageBreak{})
	stream = append(stream, s.adhesive()...)
	stream = append(stream, s.components()...)
	stream = append(stream, layout.PageBreak{})
	stream = append(stream, s.flexing()...)
	for _, build := range []func() []layout.Flowable{s.abrasion, s.resistance, s.hardness, s.conclusion} {
		stream = append(stream, layout.Spacer{Height: layout.Pt(15)})
		stream = append(stream, build()...)
	}
	return stream
}
