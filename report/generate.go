package report

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/dsl"
	"github.com/ByLCY/labreport/fonts"
	"github.com/ByLCY/labreport/layout"
	"github.com/ByLCY/labreport/locale"
	canvasrenderer "github.com/ByLCY/labreport/renderer/canvas"
)

//go:embed theme.papyrus
var defaultTheme string

// FilenamePattern 为下载文件名模板。
const FilenamePattern = "Physical_Test_Report_${ci_no}_${city}_${stamp}.pdf"

// ErrIncomplete 表示提交缺少必填字段。
var ErrIncomplete = errors.New("提交信息不完整")

// GateError 列出缺失的必填字段，errors.Is(err, ErrIncomplete) 成立。
type GateError struct {
	Missing []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("%s：缺少 %s", ErrIncomplete, strings.Join(e.Missing, ", "))
}

func (e *GateError) Unwrap() error { return ErrIncomplete }

// RequiredFields 为生成报告前必须填写的字段。
var RequiredFields = []string{FieldCINo, FieldStyleNo}

// Validate 检查 CI 号与款号均非空白。
func Validate(fields binding.Fields) error {
	var missing []string
	for _, key := range RequiredFields {
		if !fields.Present(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &GateError{Missing: missing}
	}
	return nil
}

// FontResolver 提供中文字体，找不到时返回 Fallback 为 true 的拉丁字体。
type FontResolver interface {
	ResolveChinese() fonts.Handle
}

// Document 是一次生成的结果。
type Document struct {
	Filename    string
	Data        []byte
	Pages       int
	GeneratedAt time.Time
	Language    locale.Language
	City        string
}

// Generator 持有解析好的主题，可并发调用；每次生成使用独立的渲染器。
type Generator struct {
	themeSrc  string
	resources layout.ResourceSet
	setup     layout.PageSetup
	meta      layout.DocumentMeta

	clock    func() time.Time
	logger   *zap.Logger
	fonts    FontResolver
	rawUnits bool
}

// Option 配置 Generator。
type Option func(*Generator)

// WithClock 替换时间来源，测试中用于固定报告日期与文件名。
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.clock = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithFontResolver(r FontResolver) Option {
	return func(g *Generator) { g.fonts = r }
}

// WithRawUnits 在布局结果的调试信息中保留主题里书写的原始单位。
func WithRawUnits() Option {
	return func(g *Generator) { g.rawUnits = true }
}

// WithTheme 使用自定义主题源码替换内置主题。
func WithTheme(src string) Option {
	return func(g *Generator) { g.themeSrc = src }
}

// NewGenerator 解析主题并返回生成器。
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		themeSrc: defaultTheme,
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.fonts == nil {
		g.fonts = fonts.NewResolver(nil, nil, g.logger)
	}

	theme, err := dsl.ParseString(g.themeSrc)
	if err != nil {
		return nil, fmt.Errorf("解析报告主题失败: %w", err)
	}
	if g.resources, err = layout.Resources(theme); err != nil {
		return nil, fmt.Errorf("解析主题资源失败: %w", err)
	}
	if g.setup, err = layout.Setup(theme); err != nil {
		return nil, fmt.Errorf("解析页面设置失败: %w", err)
	}
	g.meta = layout.Meta(theme)
	return g, nil
}

// Layout 校验输入并完成分页，不渲染 PDF。
func (g *Generator) Layout(req Request) (*layout.Result, error) {
	result, _, err := g.build(req, g.clock())
	return result, err
}

// Generate 校验、排版并渲染报告。失败时不返回任何数据。
func (g *Generator) Generate(req Request) (*Document, error) {
	start := time.Now()
	now := g.clock()
	lang := req.language()
	city := req.city()
	g.logger.Info("[Report] Generation started",
		zap.String("language", lang.String()),
		zap.String("city", city),
	)

	result, r, err := g.build(req, now)
	if err != nil {
		g.logger.Warn("[Report] Generation rejected or failed", zap.Error(err))
		return nil, err
	}
	data, err := r.Render(result)
	if err != nil {
		err = fmt.Errorf("生成报告失败: %w", err)
		g.logger.Error("[Report] Render failed", zap.Error(err))
		return nil, err
	}

	doc := &Document{
		Filename:    Filename(req.Fields, city, now),
		Data:        data,
		Pages:       len(result.Pages),
		GeneratedAt: now.In(Shanghai),
		Language:    lang,
		City:        city,
	}
	g.logger.Info("[Report] Generation completed",
		zap.String("filename", doc.Filename),
		zap.String("language", lang.String()),
		zap.String("city", city),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return doc, nil
}

func (g *Generator) build(req Request, now time.Time) (*layout.Result, *canvasrenderer.Renderer, error) {
	if err := Validate(req.Fields); err != nil {
		return nil, nil, err
	}
	lang := req.language()
	resources := g.resources
	var opts canvasrenderer.Options
	if lang == locale.Chinese && g.fonts != nil {
		if h := g.fonts.ResolveChinese(); !h.Fallback {
			opts.Fonts = map[string]canvasrenderer.Resource{canvasrenderer.FontCJK: {Bytes: h.Data}}
			resources = withChineseFonts(resources, h)
		}
	}
	r := canvasrenderer.NewRendererWithOptions(opts)

	result, err := layout.Build(Assemble(req, now), layout.BuildOptions{
		Typesetter: r,
		Resources:  resources,
		Page:       g.setup,
		Meta:       g.meta,
		Decorator:  decorator{lang: lang, city: req.city(), stamp: now},
		Debug:      layout.DebugOptions{RawUnits: g.rawUnits},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("生成报告失败: %w", err)
	}
	return result, r, nil
}

// withChineseFonts 返回将正文与粗体字体指向中文字体的资源副本。
func withChineseFonts(res layout.ResourceSet, h fonts.Handle) layout.ResourceSet {
	fontsCopy := make(map[string]layout.FontResource, len(res.Fonts))
	for name, f := range res.Fonts {
		if name == "Regular" || name == "Bold" {
			f.Src = "built-in:" + canvasrenderer.FontCJK
			f.Index = h.Index
			f.Family = h.Name
		}
		fontsCopy[name] = f
	}
	res.Fonts = fontsCopy
	return res
}

// Filename 按 FilenamePattern 生成文件名：ci_no 取自提交字段，时间戳取上海时间，非法字符替换为下划线。
func Filename(fields binding.Fields, city string, now time.Time) string {
	extra := binding.MapLookup(map[string]string{
		"city":  strings.TrimSpace(city),
		"stamp": now.In(Shanghai).Format("20060102_150405"),
	})
	name := binding.Interpolate(FilenamePattern, func(key string) (string, bool) {
		if v, ok := extra(key); ok {
			return v, true
		}
		v, ok := fields.Lookup(key)
		return strings.TrimSpace(v), ok
	})
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}
