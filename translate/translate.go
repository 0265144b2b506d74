// Package translate 使用大模型把界面标签翻译为中文。
//
// 翻译只服务于表单界面，报告正文一律取自 locale 的固定文本。
// 任何失败都退回原文，不向调用方返回错误。
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/labreport/locale"
)

const systemPrompt = "Translate the following text to Chinese. Only return the translation, no explanations. Preserve any numbers, dates, and special formatting."

// 默认模型参数。
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 500
	DefaultTimeout     = 30 * time.Second
)

var errEmptyReply = errors.New("翻译模型返回空结果")

// Config 描述 OpenAI 兼容接口的连接参数。
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Translator 翻译界面文本，可并发使用；相同文本的并发请求只调用一次模型。
type Translator struct {
	model  model.BaseChatModel
	cache  Cache
	logger *zap.Logger
	group  singleflight.Group

	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// Option 配置 Translator。
type Option func(*Translator)

func WithTemperature(v float32) Option { return func(t *Translator) { t.temperature = v } }

func WithMaxTokens(v int) Option { return func(t *Translator) { t.maxTokens = v } }

// WithTimeout 限制单次模型调用的时长，<=0 表示只受调用方 ctx 约束。
func WithTimeout(d time.Duration) Option { return func(t *Translator) { t.timeout = d } }

// New 使用给定模型与缓存创建 Translator；cache 为空时使用容量 256 的 LRU。
func New(m model.BaseChatModel, cache Cache, logger *zap.Logger, opts ...Option) *Translator {
	if cache == nil {
		cache = NewLRU(256)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Translator{
		model:       m,
		cache:       cache,
		logger:      logger,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewOpenAI 基于 eino-ext 的 OpenAI ChatModel 创建 Translator。
func NewOpenAI(ctx context.Context, cfg Config, cache Cache, logger *zap.Logger) (*Translator, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("创建翻译模型失败: %w", err)
	}
	return New(chatModel, cache, logger,
		WithTemperature(cfg.Temperature),
		WithMaxTokens(cfg.MaxTokens),
		WithTimeout(cfg.Timeout),
	), nil
}

// Translate 把 text 翻译为 target 语言。
// 目标为英文、文本为空或纯数字时原样返回；模型失败或返回空串时记录警告并返回原文，失败结果不缓存。
func (t *Translator) Translate(ctx context.Context, text string, target locale.Language) string {
	if t == nil || t.model == nil || target != locale.Chinese {
		return text
	}
	if strings.TrimSpace(text) == "" || numericOnly(text) {
		return text
	}

	key := "ui_" + text + "_" + string(target)
	if v, ok := t.cache.Get(key); ok {
		return v
	}
	v, err, _ := t.group.Do(key, func() (any, error) {
		if v, ok := t.cache.Get(key); ok {
			return v, nil
		}
		out, err := t.generate(ctx, text)
		if err != nil {
			return "", err
		}
		t.cache.Set(key, out)
		return out, nil
	})
	if err != nil {
		t.logger.Warn("[Translate] Translation failed, using source text",
			zap.String("text", text),
			zap.String("target", string(target)),
			zap.Error(err),
		)
		return text
	}
	return v.(string)
}

func (t *Translator) generate(ctx context.Context, text string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: text},
	}
	resp, err := t.model.Generate(ctx, messages,
		model.WithTemperature(t.temperature),
		model.WithMaxTokens(t.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("调用翻译模型失败: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", errEmptyReply
	}
	return strings.TrimSpace(resp.Content), nil
}

// Labels 返回全部界面标签在 lang 下的文本；PASS/FAIL/ACCEPT 不翻译。
func (t *Translator) Labels(ctx context.Context, lang locale.Language) map[string]string {
	keys := locale.UIKeys()
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		text := locale.UIText(key)
		if locale.Translatable(key) {
			text = t.Translate(ctx, text, lang)
		}
		out[key] = text
	}
	return out
}

// numericOnly 判断去掉 . , - 之后是否只剩数字。
func numericOnly(s string) bool {
	s = strings.NewReplacer(".", "", ",", "", "-", "").Replace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
