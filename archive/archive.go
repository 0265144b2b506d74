// Package archive 在 SQLite 中记录每次生成的报告，供接口查询历史。
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/locale"
	"github.com/ByLCY/labreport/report"
)

// ErrNotFound 表示记录不存在。
var ErrNotFound = errors.New("报告记录不存在")

// DefaultListLimit 为 List 未指定数量时的返回条数。
const DefaultListLimit = 50

// Entry 是一条报告生成记录。
type Entry struct {
	ID          uuid.UUID       `json:"id"`
	ReportNo    string          `json:"report_no"`
	CINo        string          `json:"ci_no"`
	StyleNo     string          `json:"style_no"`
	City        string          `json:"city"`
	Language    locale.Language `json:"language"`
	Filename    string          `json:"filename"`
	Pages       int             `json:"pages"`
	Size        int             `json:"size"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NewEntry 根据生成结果与提交字段构造记录，ID 留空由 Record 分配。
func NewEntry(doc *report.Document, fields binding.Fields) Entry {
	return Entry{
		ReportNo:    fields.String(report.FieldReportNo),
		CINo:        fields.String(report.FieldCINo),
		StyleNo:     fields.String(report.FieldStyleNo),
		City:        doc.City,
		Language:    doc.Language,
		Filename:    doc.Filename,
		Pages:       doc.Pages,
		Size:        len(doc.Data),
		GeneratedAt: doc.GeneratedAt,
	}
}

// Store 封装归档数据库。
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option 配置 Store。
type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open 打开（必要时创建）path 处的数据库并执行迁移。
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("创建归档目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("打开归档数据库失败: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("连接归档数据库失败: %w", err)
	}
	if err := createMigrationsTable(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("创建迁移表失败: %w", err)
	}
	if err := runMigrations(ctx, db, s.logger); err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	return s.db.Close()
}

// Record 写入一条记录；ID 为空时分配新的 UUID，时间为空时取当前时间。
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, report_no, ci_no, style_no, city, language, filename, pages, size, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.ReportNo, e.CINo, e.StyleNo, e.City, string(e.Language),
		e.Filename, e.Pages, e.Size, e.GeneratedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("写入报告记录失败: %w", err)
	}
	return e, nil
}

// timeLayout 固定小数位，使文本排序与时间顺序一致。
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectColumns = `id, report_no, ci_no, style_no, city, language, filename, pages, size, generated_at`

// List 按生成时间倒序返回最多 limit 条记录。
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM reports ORDER BY generated_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询报告记录失败: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取报告记录失败: %w", err)
	}
	return entries, nil
}

// Get 按 ID 查询，不存在时返回 ErrNotFound。
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM reports WHERE id = ?`, id.String())
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		id      string
		lang    string
		created string
	)
	if err := sc.Scan(&id, &e.ReportNo, &e.CINo, &e.StyleNo, &e.City, &lang, &e.Filename, &e.Pages, &e.Size, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("解析报告记录失败: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("记录 ID %q 无效: %w", id, err)
	}
	e.ID = parsed
	e.Language = locale.Language(lang)
	if e.GeneratedAt, err = time.Parse(timeLayout, created); err != nil {
		return Entry{}, fmt.Errorf("记录时间 %q 无效: %w", created, err)
	}
	return e, nil
}
