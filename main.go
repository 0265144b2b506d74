package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/labreport/archive"
	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/config"
	"github.com/ByLCY/labreport/fonts"
	"github.com/ByLCY/labreport/layout"
	"github.com/ByLCY/labreport/locale"
	"github.com/ByLCY/labreport/report"
	"github.com/ByLCY/labreport/server"
	"github.com/ByLCY/labreport/translate"
)

type cliOptions struct {
	configPath string
	input      string
	output     string
	lang       string
	uiLang     string
	city       string
	debug      string
	serve      bool
	keys       bool
	fields     bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "YAML 配置文件路径")
	flag.StringVar(&opts.input, "in", "", "报告字段文件（JSON 或 YAML）")
	flag.StringVar(&opts.output, "out", "", "PDF 输出目录或文件路径，默认使用配置中的 output_dir")
	flag.StringVar(&opts.lang, "lang", "en", "报告语言：en 或 zh")
	flag.StringVar(&opts.uiLang, "ui-lang", "en", "界面语言：en 或 zh")
	flag.StringVar(&opts.city, "city", "", "测试地点，默认使用配置中的 default_city")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.BoolVar(&opts.serve, "serve", false, "启动 HTTP 服务")
	flag.BoolVar(&opts.keys, "keys", false, "输出全部报告文本 key")
	flag.BoolVar(&opts.fields, "fields", false, "输出可供 -in 使用的空白字段模板（JSON）")
	flag.Parse()

	if opts.keys {
		printKeys(os.Stdout)
		return
	}
	if opts.fields {
		if err := writeFieldTemplate(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "输出字段模板失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	logger, err := config.Logger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	resolver := fonts.NewResolver(cfg.Fonts.Dirs, cfg.Fonts.Candidates, logger)
	genOpts := []report.Option{report.WithLogger(logger), report.WithFontResolver(resolver)}
	if opts.debug != "" {
		genOpts = append(genOpts, report.WithRawUnits())
	}
	gen, err := report.NewGenerator(genOpts...)
	if err != nil {
		logger.Fatal("[Main] Failed to create generator", zap.Error(err))
	}

	if opts.serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := serve(ctx, cfg, gen, logger); err != nil {
			logger.Fatal("[Main] Server stopped with error", zap.Error(err))
		}
		return
	}

	path, err := run(gen, cfg, opts)
	if err != nil {
		logger.Fatal("[Main] Report generation failed", zap.Error(err))
	}
	fmt.Printf("已生成 PDF：%s\n", path)
}

// run 读取字段文件并生成一份报告，返回写入的 PDF 路径。
func run(gen *report.Generator, cfg config.Config, opts cliOptions) (string, error) {
	if strings.TrimSpace(opts.input) == "" {
		return "", fmt.Errorf("必须通过 -in 指定字段文件")
	}
	fields, err := loadFields(opts.input)
	if err != nil {
		return "", err
	}
	lang, err := locale.ParseLanguage(opts.lang)
	if err != nil {
		return "", err
	}
	uiLang, err := locale.ParseLanguage(opts.uiLang)
	if err != nil {
		return "", err
	}
	city := opts.city
	if strings.TrimSpace(city) == "" {
		city = cfg.Report.DefaultCity
	}
	req := report.Request{Fields: fields, Language: lang, UILanguage: uiLang, City: city}

	if opts.debug != "" {
		result, err := gen.Layout(req)
		if err != nil {
			return "", err
		}
		if err := writeDebug(result, opts.debug); err != nil {
			return "", err
		}
	}

	doc, err := gen.Generate(req)
	if err != nil {
		return "", err
	}

	out := opts.output
	if out == "" {
		out = cfg.Report.OutputDir
	}
	if !strings.EqualFold(filepath.Ext(out), ".pdf") {
		out = filepath.Join(out, doc.Filename)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(out, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return out, nil
}

// loadFields 按扩展名读取 JSON 或 YAML 字段文件。
func loadFields(path string) (binding.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return binding.Fields{}, fmt.Errorf("无法打开字段文件 %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var values map[string]any
		if err := yaml.Unmarshal(data, &values); err != nil {
			return binding.Fields{}, fmt.Errorf("解析 YAML 字段文件失败: %w", err)
		}
		return binding.NewFields(values), nil
	default:
		var fields binding.Fields
		if err := json.Unmarshal(data, &fields); err != nil {
			return binding.Fields{}, fmt.Errorf("解析 JSON 字段文件失败: %w", err)
		}
		return fields, nil
	}
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	f, err := os.Create(debugPath)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	defer f.Close()
	if err := layout.WriteDebugJSON(result, f); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func printKeys(w io.Writer) {
	for _, key := range locale.Keys() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, locale.Resolve(key, locale.English), locale.Resolve(key, locale.Chinese))
	}
}

// writeFieldTemplate 输出报告读取的全部字段，值为空串。
func writeFieldTemplate(w io.Writer) error {
	template := make(map[string]string)
	for _, key := range report.FieldKeys() {
		template[key] = ""
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(template)
}

// serve 按配置装配翻译与归档并启动 HTTP 服务。
func serve(ctx context.Context, cfg config.Config, gen *report.Generator, logger *zap.Logger) error {
	opts := server.Options{Logger: logger, MaxBodyBytes: cfg.Server.MaxBodyBytes}

	if cfg.Translation.Enabled {
		if cfg.Translation.APIKey == "" {
			logger.Warn("[Main] Translation enabled without API key, UI labels stay in English")
		} else {
			tr, err := translate.NewOpenAI(ctx, translate.Config{
				APIKey:      cfg.Translation.APIKey,
				BaseURL:     cfg.Translation.BaseURL,
				Model:       cfg.Translation.Model,
				Temperature: cfg.Translation.Temperature,
				Timeout:     cfg.Translation.Timeout,
			}, translate.NewLRU(cfg.Translation.CacheSize), logger)
			if err != nil {
				return err
			}
			opts.Translator = tr
		}
	}

	if cfg.Archive.Enabled {
		store, err := archive.Open(cfg.Archive.Path, archive.WithLogger(logger))
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Archive = store
	}

	return server.New(gen, opts).ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadHeaderTimeout)
}
