package translate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/labreport/locale"
)

type fakeModel struct {
	calls   atomic.Int32
	reply   func(text string) (string, error)
	release chan struct{}
	started chan struct{}
	once    sync.Once

	mu        sync.Mutex
	lastInput []*schema.Message
}

func (m *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastInput = input
	m.mu.Unlock()
	if m.started != nil {
		m.once.Do(func() { close(m.started) })
	}
	if m.release != nil {
		<-m.release
	}
	out, err := m.reply(input[len(input)-1].Content)
	if err != nil {
		return nil, err
	}
	return &schema.Message{Role: schema.Assistant, Content: out}, nil
}

func (m *fakeModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func echoZh(text string) (string, error) { return "  译:" + text + "\n", nil }

func TestTranslateCallsModelOnceAndCaches(t *testing.T) {
	m := &fakeModel{reply: echoZh}
	tr := New(m, NewLRU(8), nil)
	ctx := context.Background()

	assert.Equal(t, "译:Flat Shoe", tr.Translate(ctx, "Flat Shoe", locale.Chinese))
	assert.Equal(t, "译:Flat Shoe", tr.Translate(ctx, "Flat Shoe", locale.Chinese))
	assert.EqualValues(t, 1, m.calls.Load())

	require.Len(t, m.lastInput, 2)
	assert.Equal(t, schema.System, m.lastInput[0].Role)
	assert.Equal(t, systemPrompt, m.lastInput[0].Content)
	assert.Equal(t, schema.User, m.lastInput[1].Role)
	assert.Equal(t, "Flat Shoe", m.lastInput[1].Content)
}

func TestTranslateSkipsWithoutModelCall(t *testing.T) {
	m := &fakeModel{reply: echoZh}
	tr := New(m, nil, nil)
	ctx := context.Background()

	for _, text := range []string{"", "   ", "1000", "2024-09-01", "1,234.5", "-3"} {
		assert.Equal(t, text, tr.Translate(ctx, text, locale.Chinese), text)
	}
	assert.Equal(t, "Heel", tr.Translate(ctx, "Heel", locale.English))
	assert.EqualValues(t, 0, m.calls.Load())
}

func TestTranslateFailureReturnsSourceAndIsNotCached(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fail := true
	m := &fakeModel{reply: func(text string) (string, error) {
		if fail {
			return "", errors.New("upstream 503")
		}
		return "鞋头", nil
	}}
	tr := New(m, NewLRU(8), zap.New(core))
	ctx := context.Background()

	assert.Equal(t, "Toe", tr.Translate(ctx, "Toe", locale.Chinese))
	assert.Equal(t, 1, logs.Len())

	fail = false
	assert.Equal(t, "鞋头", tr.Translate(ctx, "Toe", locale.Chinese))
	assert.EqualValues(t, 2, m.calls.Load())
}

func TestTranslateEmptyReplyFallsBack(t *testing.T) {
	m := &fakeModel{reply: func(string) (string, error) { return " \n", nil }}
	tr := New(m, nil, nil)
	assert.Equal(t, "Waist", tr.Translate(context.Background(), "Waist", locale.Chinese))
}

func TestTranslateCollapsesConcurrentCalls(t *testing.T) {
	m := &fakeModel{reply: echoZh, release: make(chan struct{}), started: make(chan struct{})}
	tr := New(m, NewLRU(8), nil)

	const n = 16
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tr.Translate(context.Background(), "Outsole", locale.Chinese)
		}(i)
	}
	<-m.started
	close(m.release)
	wg.Wait()

	assert.EqualValues(t, 1, m.calls.Load())
	for _, r := range results {
		assert.Equal(t, "译:Outsole", r)
	}
}

func TestNilTranslatorReturnsSource(t *testing.T) {
	var tr *Translator
	assert.Equal(t, "Remark", tr.Translate(context.Background(), "Remark", locale.Chinese))
	assert.Equal(t, "Remark", New(nil, nil, nil).Translate(context.Background(), "Remark", locale.Chinese))
}

func TestLabels(t *testing.T) {
	m := &fakeModel{reply: echoZh}
	tr := New(m, NewLRU(256), nil)

	zh := tr.Labels(context.Background(), locale.Chinese)
	assert.Len(t, zh, len(locale.UIKeys()))
	assert.Equal(t, "PASS", zh["pass"])
	assert.Equal(t, "FAIL", zh["fail"])
	assert.Equal(t, "译:Flat Shoe", zh["flat_shoe"])

	en := tr.Labels(context.Background(), locale.English)
	assert.Equal(t, "Flat Shoe", en["flat_shoe"])
}

func TestNumericOnly(t *testing.T) {
	cases := map[string]bool{"123": true, "1.5": true, "1,000": true, "2024-09-01": true, "---": false, "12a": false, "": false, "１２": true}
	for in, want := range cases {
		assert.Equal(t, want, numericOnly(in), in)
	}
}
