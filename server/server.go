// Package server 通过 HTTP 提供报告生成、城市列表、界面标签与归档查询。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ByLCY/labreport/archive"
	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/locale"
	"github.com/ByLCY/labreport/report"
)

// Generator 生成报告 PDF，*report.Generator 实现该接口。
type Generator interface {
	Generate(req report.Request) (*report.Document, error)
}

// Translator 提供界面文案翻译，*translate.Translator 实现该接口。
type Translator interface {
	Translate(ctx context.Context, text string, target locale.Language) string
	Labels(ctx context.Context, lang locale.Language) map[string]string
}

// Archive 记录与查询生成历史，*archive.Store 实现该接口。
type Archive interface {
	Record(ctx context.Context, e archive.Entry) (archive.Entry, error)
	List(ctx context.Context, limit int) ([]archive.Entry, error)
	Get(ctx context.Context, id uuid.UUID) (archive.Entry, error)
}

// DefaultMaxBodyBytes 为未配置时的请求体上限。
const DefaultMaxBodyBytes = 1 << 20

type Options struct {
	Logger       *zap.Logger
	Translator   Translator // 为空时界面文案保持英文
	Archive      Archive    // 为空时不归档，/api/reports 查询返回 404
	MaxBodyBytes int64
}

// Server 持有处理器依赖，可并发使用。
type Server struct {
	gen          Generator
	translator   Translator
	archive      Archive
	logger       *zap.Logger
	maxBodyBytes int64
	router       *mux.Router
}

// New 创建服务并注册路由。
func New(gen Generator, opts Options) *Server {
	s := &Server{
		gen:          gen,
		translator:   opts.Translator,
		archive:      opts.Archive,
		logger:       opts.Logger,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}

	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.loggingMiddleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/reports", s.handleListReports).Methods(http.MethodGet)
	api.HandleFunc("/reports/{id}", s.handleGetReport).Methods(http.MethodGet)
	api.HandleFunc("/cities", s.handleCities).Methods(http.MethodGet)
	api.HandleFunc("/labels", s.handleLabels).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler 返回带中间件的路由。
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe 启动 HTTP 服务，ctx 取消后优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context, addr string, readHeaderTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[Server] Listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[Server] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type generateRequest struct {
	Fields         binding.Fields `json:"fields"`
	ReportLanguage string         `json:"report_language"`
	UILanguage     string         `json:"ui_language"`
	City           string         `json:"city"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "body_too_large", Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}

	reportLang, err := optionalLanguage(body.ReportLanguage)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_language", Message: err.Error()})
		return
	}
	uiLang, err := optionalLanguage(body.UILanguage)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_language", Message: err.Error()})
		return
	}

	req := report.Request{
		Fields:     body.Fields,
		Language:   reportLang,
		UILanguage: uiLang,
		City:       body.City,
	}
	doc, err := s.gen.Generate(req)
	if err != nil {
		var gate *report.GateError
		if errors.As(err, &gate) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:   "incomplete_submission",
				Message: s.uiText(r.Context(), "fill_required", uiLang),
				Missing: gate.Missing,
			})
			return
		}
		s.logger.Error("[Server] Report generation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "generation_failed",
			Message: s.uiText(r.Context(), "error_generating", uiLang) + ": " + err.Error(),
		})
		return
	}

	if s.archive != nil {
		entry, err := s.archive.Record(r.Context(), archive.NewEntry(doc, body.Fields))
		if err != nil {
			s.logger.Warn("[Server] Failed to archive report",
				zap.String("filename", doc.Filename),
				zap.Error(err),
			)
		} else {
			w.Header().Set("X-Report-ID", entry.ID.String())
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Report-Pages", strconv.Itoa(doc.Pages))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

type cityResponse struct {
	Name      string `json:"name"`
	Local     string `json:"local"`
	DisplayEN string `json:"display_en"`
	DisplayZH string `json:"display_zh"`
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	cities := locale.Cities()
	out := make([]cityResponse, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityResponse{
			Name:      c.Name,
			Local:     c.Local,
			DisplayEN: locale.LocationDisplay(c.Name, locale.English),
			DisplayZH: locale.LocationDisplay(c.Name, locale.Chinese),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	lang, err := optionalLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_language", Message: err.Error()})
		return
	}
	if s.translator != nil {
		writeJSON(w, http.StatusOK, s.translator.Labels(r.Context(), lang))
		return
	}
	labels := make(map[string]string)
	for _, key := range locale.UIKeys() {
		labels[key] = locale.UIText(key)
	}
	writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "archive_disabled"})
		return
	}
	limit := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_limit", Message: v})
			return
		}
		limit = n
	}
	entries, err := s.archive.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("[Server] Failed to list reports", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "archive_failed", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "archive_disabled"})
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_id", Message: err.Error()})
		return
	}
	entry, err := s.archive.Get(r.Context(), id)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
	case err != nil:
		s.logger.Error("[Server] Failed to load report", zap.String("id", id.String()), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "archive_failed", Message: err.Error()})
	default:
		writeJSON(w, http.StatusOK, entry)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uiText 返回界面语言下的提示文案。
func (s *Server) uiText(ctx context.Context, key string, lang locale.Language) string {
	text := locale.UIText(key)
	if s.translator == nil {
		return text
	}
	return s.translator.Translate(ctx, text, lang)
}

// optionalLanguage 解析语言参数，空串视为英文。
func optionalLanguage(v string) (locale.Language, error) {
	if strings.TrimSpace(v) == "" {
		return locale.English, nil
	}
	return locale.ParseLanguage(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
