package archive

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration 是一次有版本号的表结构变更。
type Migration struct {
	Version     int
	Description string
	Up          string
	Down        string
}

// Migrations 按版本顺序返回全部迁移。
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create reports table",
			Up: `
				CREATE TABLE IF NOT EXISTS reports (
					id TEXT PRIMARY KEY,
					report_no TEXT NOT NULL DEFAULT '',
					ci_no TEXT NOT NULL,
					style_no TEXT NOT NULL,
					city TEXT NOT NULL,
					language TEXT NOT NULL,
					filename TEXT NOT NULL,
					pages INTEGER NOT NULL,
					size INTEGER NOT NULL,
					generated_at TEXT NOT NULL
				);
			`,
			Down: `DROP TABLE IF EXISTS reports;`,
		},
		{
			Version:     2,
			Description: "Index reports by generation time and CI number",
			Up: `
				CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);
				CREATE INDEX IF NOT EXISTS idx_reports_ci_no ON reports(ci_no);
			`,
			Down: `
				DROP INDEX IF EXISTS idx_reports_ci_no;
				DROP INDEX IF EXISTS idx_reports_generated_at;
			`,
		},
	}
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// runMigrations 逐个应用未执行的迁移，每个迁移在独立事务中完成。
func runMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	for _, m := range Migrations() {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&count); err != nil {
			return fmt.Errorf("检查迁移 %d 状态失败: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("迁移 %d 开启事务失败: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("执行迁移 %d (%s) 失败: %w", m.Version, m.Description, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, description) VALUES (?, ?)", m.Version, m.Description); err != nil {
			tx.Rollback()
			return fmt.Errorf("记录迁移 %d 失败: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("提交迁移 %d 失败: %w", m.Version, err)
		}
		logger.Info("[Archive] Applied migration",
			zap.Int("version", m.Version),
			zap.String("description", m.Description),
		)
	}
	return nil
}
