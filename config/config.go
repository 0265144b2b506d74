// Package config 读取 YAML 配置并叠加环境变量。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/labreport/fonts"
	"github.com/ByLCY/labreport/locale"
)

type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

type Report struct {
	DefaultCity string `yaml:"default_city"`
	OutputDir   string `yaml:"output_dir"`
}

type Fonts struct {
	Dirs       []string          `yaml:"dirs"`
	Candidates []fonts.Candidate `yaml:"candidates"`
}

type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Translation struct {
	Enabled     bool          `yaml:"enabled"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Temperature float32       `yaml:"temperature"`
	CacheSize   int           `yaml:"cache_size"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config 是完整的运行配置。
type Config struct {
	Server      Server      `yaml:"server"`
	Report      Report      `yaml:"report"`
	Fonts       Fonts       `yaml:"fonts"`
	Archive     Archive     `yaml:"archive"`
	Translation Translation `yaml:"translation"`
	Log         Log         `yaml:"log"`
}

// Default 返回可直接使用的默认配置。
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			MaxBodyBytes:      1 << 20,
		},
		Report: Report{
			DefaultCity: locale.DefaultCity,
			OutputDir:   ".",
		},
		Archive: Archive{
			Enabled: true,
			Path:    filepath.Join("data", "reports.db"),
		},
		Translation: Translation{
			Model:       "gpt-4o-mini",
			Temperature: 0.1,
			CacheSize:   512,
			Timeout:     30 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// Load 读取 path 处的配置文件（为空时只用默认值），然后应用环境变量覆盖。
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("LABREPORT_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv("LABREPORT_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv("LABREPORT_ARCHIVE_PATH")); v != "" {
		c.Archive.Path = v
	}
	if v := strings.TrimSpace(getenv("LABREPORT_FONT_DIRS")); v != "" {
		var dirs []string
		for _, d := range filepath.SplitList(v) {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
		c.Fonts.Dirs = dirs
	}
	if v := strings.TrimSpace(getenv("OPENAI_API_KEY")); v != "" {
		c.Translation.APIKey = v
	}
	if v := strings.TrimSpace(getenv("OPENAI_BASE_URL")); v != "" {
		c.Translation.BaseURL = v
	}
}

// Validate 检查配置取值。
func (c Config) Validate() error {
	var errs []error
	if _, ok := locale.LookupCity(c.Report.DefaultCity); !ok {
		errs = append(errs, fmt.Errorf("默认城市 %q 不在城市列表中", c.Report.DefaultCity))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("日志级别 %q 无效", c.Log.Level))
	}
	if c.Translation.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("翻译缓存容量必须为正数: %d", c.Translation.CacheSize))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("请求体上限必须为正数: %d", c.Server.MaxBodyBytes))
	}
	if c.Archive.Enabled && strings.TrimSpace(c.Archive.Path) == "" {
		errs = append(errs, errors.New("启用归档时必须设置 archive.path"))
	}
	return errors.Join(errs...)
}

// Logger 按配置构造 zap 日志器。
func Logger(cfg Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("日志级别 %q 无效: %w", cfg.Level, err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
