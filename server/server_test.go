package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/labreport/archive"
	"github.com/ByLCY/labreport/fonts"
	"github.com/ByLCY/labreport/locale"
	"github.com/ByLCY/labreport/report"
)

type latinOnly struct{}

func (latinOnly) ResolveChinese() fonts.Handle { return fonts.Handle{Fallback: true} }

type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, text string, target locale.Language) string {
	if target != locale.Chinese {
		return text
	}
	return "[zh] " + text
}

func (fakeTranslator) Labels(_ context.Context, lang locale.Language) map[string]string {
	return map[string]string{"title": string(lang)}
}

type failingGenerator struct {
	err   error
	panic bool
}

func (g failingGenerator) Generate(report.Request) (*report.Document, error) {
	if g.panic {
		panic("boom")
	}
	return nil, g.err
}

func newGenerator(t *testing.T) *report.Generator {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 9, 1, 2, 3, 4, 0, time.UTC) }
	g, err := report.NewGenerator(report.WithFontResolver(latinOnly{}), report.WithClock(clock))
	require.NoError(t, err)
	return g
}

func openArchive(t *testing.T) *archive.Store {
	t.Helper()
	store, err := archive.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func postJSON(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

const validBody = `{
	"fields": {"ci_no": "CI-001", "style_no": "ST-9", "report_no": "R-7", "order_qty": 1200},
	"report_language": "en",
	"ui_language": "zh",
	"city": "Shenzhen"
}`

func TestGenerateReturnsPDFAndArchives(t *testing.T) {
	store := openArchive(t)
	srv := New(newGenerator(t), Options{Archive: store, Translator: fakeTranslator{}})

	rec := postJSON(t, srv.Handler(), validBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		`attachment; filename="Physical_Test_Report_CI-001_Shenzhen_20240901_100304.pdf"`,
		rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Report-Pages"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	id := rec.Header().Get("X-Report-ID")
	require.NotEmpty(t, id)

	one := get(srv.Handler(), "/api/reports/"+id)
	require.Equal(t, http.StatusOK, one.Code)
	var entry archive.Entry
	require.NoError(t, json.Unmarshal(one.Body.Bytes(), &entry))
	assert.Equal(t, "CI-001", entry.CINo)
	assert.Equal(t, "R-7", entry.ReportNo)
	assert.Equal(t, "Shenzhen", entry.City)
	assert.Equal(t, rec.Body.Len(), entry.Size)

	list := get(srv.Handler(), "/api/reports?limit=5")
	require.Equal(t, http.StatusOK, list.Code)
	var entries []archive.Entry
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestGenerateGateFailure(t *testing.T) {
	srv := New(newGenerator(t), Options{Translator: fakeTranslator{}})
	rec := postJSON(t, srv.Handler(), `{"fields": {"ci_no": "  "}, "ui_language": "zh"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "incomplete_submission", resp.Error)
	assert.Equal(t, "[zh] "+locale.UIText("fill_required"), resp.Message)
	assert.Equal(t, []string{report.FieldCINo, report.FieldStyleNo}, resp.Missing)
}

func TestGenerateGateMessageEnglishWithoutTranslator(t *testing.T) {
	srv := New(newGenerator(t), Options{})
	rec := postJSON(t, srv.Handler(), `{"fields": {"ci_no": "CI"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in at least CI No. and Style No.!")
}

func TestGenerateBadRequests(t *testing.T) {
	srv := New(newGenerator(t), Options{})
	for name, body := range map[string]string{
		"json":      `{"fields":`,
		"report":    `{"fields": {"ci_no": "a", "style_no": "b"}, "report_language": "fr"}`,
		"interface": `{"fields": {"ci_no": "a", "style_no": "b"}, "ui_language": "de"}`,
	} {
		rec := postJSON(t, srv.Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestGenerateBodyLimit(t *testing.T) {
	srv := New(newGenerator(t), Options{MaxBodyBytes: 16})
	rec := postJSON(t, srv.Handler(), validBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGenerateFailure(t *testing.T) {
	srv := New(failingGenerator{err: errors.New("生成报告失败: 字体损坏")}, Options{Translator: fakeTranslator{}})
	rec := postJSON(t, srv.Handler(), `{"fields": {"ci_no": "a", "style_no": "b"}, "ui_language": "zh"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "generation_failed", resp.Error)
	assert.True(t, strings.HasPrefix(resp.Message, "[zh] Error generating PDF: "))
	assert.Contains(t, resp.Message, "字体损坏")
}

func TestPanicRecovered(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	srv := New(failingGenerator{panic: true}, Options{Logger: zap.New(core)})
	rec := postJSON(t, srv.Handler(), `{"fields": {}}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
	assert.Equal(t, 1, logs.FilterMessage("[Server] Handler panicked").Len())
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	srv := New(newGenerator(t), Options{Logger: zap.New(core)})
	get(srv.Handler(), "/health")

	entries := logs.FilterMessage("[Server] Request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestCities(t *testing.T) {
	srv := New(newGenerator(t), Options{})
	rec := get(srv.Handler(), "/api/cities")
	require.Equal(t, http.StatusOK, rec.Code)

	var cities []cityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	require.Len(t, cities, len(locale.Cities()))
	for _, c := range cities {
		if c.Name == "Shanghai" {
			assert.Equal(t, "上海", c.Local)
			assert.Equal(t, "Shanghai", c.DisplayEN)
			assert.Equal(t, "Shanghai (上海)", c.DisplayZH)
		}
	}
}

func TestLabels(t *testing.T) {
	srv := New(newGenerator(t), Options{Translator: fakeTranslator{}})
	rec := get(srv.Handler(), "/api/labels?lang=zh")
	require.Equal(t, http.StatusOK, rec.Code)
	var labels map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	assert.Equal(t, "zh", labels["title"])

	assert.Equal(t, http.StatusBadRequest, get(srv.Handler(), "/api/labels?lang=xx").Code)

	plain := New(newGenerator(t), Options{})
	rec = get(plain.Handler(), "/api/labels")
	require.Equal(t, http.StatusOK, rec.Code)
	labels = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	assert.Equal(t, "Physical Test Report", labels["title"])
	assert.Len(t, labels, len(locale.UIKeys()))
}

func TestReportsQueries(t *testing.T) {
	disabled := New(newGenerator(t), Options{})
	assert.Equal(t, http.StatusNotFound, get(disabled.Handler(), "/api/reports").Code)
	assert.Equal(t, http.StatusNotFound, get(disabled.Handler(), "/api/reports/"+"00000000-0000-0000-0000-000000000000").Code)

	srv := New(newGenerator(t), Options{Archive: openArchive(t)})
	assert.Equal(t, http.StatusBadRequest, get(srv.Handler(), "/api/reports?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(srv.Handler(), "/api/reports/not-a-uuid").Code)
	assert.Equal(t, http.StatusNotFound, get(srv.Handler(), "/api/reports/6ba7b810-9dad-11d1-80b4-00c04fd430c8").Code)

	rec := get(srv.Handler(), "/api/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHealth(t *testing.T) {
	srv := New(newGenerator(t), Options{})
	rec := get(srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
