package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/labreport/binding"
	"github.com/ByLCY/labreport/locale"
	"github.com/ByLCY/labreport/report"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "archive.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestRecordAndGet(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	at := time.Date(2024, 9, 1, 2, 3, 4, 500, time.UTC)

	saved, err := s.Record(ctx, Entry{
		CINo: "CI-001", StyleNo: "ST-9", City: "Shanghai", Language: locale.Chinese,
		Filename: "a.pdf", Pages: 3, Size: 1024, GeneratedAt: at,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "CI-001", got.CINo)
	assert.Equal(t, locale.Chinese, got.Language)
	assert.Equal(t, 3, got.Pages)
	assert.True(t, at.Equal(got.GeneratedAt))
}

func TestRecordKeepsGivenID(t *testing.T) {
	s, _ := openTemp(t)
	id := uuid.New()
	saved, err := s.Record(context.Background(), Entry{ID: id, CINo: "x", StyleNo: "y"})
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.False(t, saved.GeneratedAt.IsZero())

	_, err = s.Record(context.Background(), Entry{ID: id, CINo: "x", StyleNo: "y"})
	assert.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Entry{
			CINo: "CI-" + string(rune('A'+i)), StyleNo: "S",
			GeneratedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "CI-E", all[0].CINo)
	assert.Equal(t, "CI-A", all[4].CINo)

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "CI-D", two[1].CINo)
}

func TestListEmpty(t *testing.T) {
	s, _ := openTemp(t)
	entries, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestReopenSkipsAppliedMigrations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := Open(path, WithLogger(zap.New(core)))
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Entry{CINo: "keep", StyleNo: "S"})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, len(Migrations()), logs.FilterMessage("[Archive] Applied migration").Len())

	s, err = Open(path, WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, len(Migrations()), logs.FilterMessage("[Archive] Applied migration").Len())

	var versions int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, len(Migrations()), versions)

	entries, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].CINo)
}

func TestMigrationsOrdered(t *testing.T) {
	ms := Migrations()
	for i, m := range ms {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.Up)
		assert.NotEmpty(t, m.Down)
	}
}

func TestNewEntry(t *testing.T) {
	at := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	doc := &report.Document{
		Filename: "r.pdf", Data: []byte("%PDF-1.7"), Pages: 4,
		GeneratedAt: at, Language: locale.English, City: "Beijing",
	}
	fields := binding.NewFields(map[string]any{
		report.FieldReportNo: "R-1", report.FieldCINo: "CI-7", report.FieldStyleNo: "ST-2",
	})
	e := NewEntry(doc, fields)
	assert.Equal(t, uuid.Nil, e.ID)
	assert.Equal(t, "R-1", e.ReportNo)
	assert.Equal(t, "CI-7", e.CINo)
	assert.Equal(t, "ST-2", e.StyleNo)
	assert.Equal(t, "Beijing", e.City)
	assert.Equal(t, 8, e.Size)
	assert.Equal(t, 4, e.Pages)
	assert.Equal(t, at, e.GeneratedAt)
}
