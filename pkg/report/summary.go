// Package report формирует артефакты итогов миграции: JSON-файл,
// XLSX-лист и публикацию состояния в Redis для внешнего оркестратора.
package report

import (
	"time"

	"github.com/ruslano69/gamehub-migrate/pkg/integrity"
	"github.com/ruslano69/gamehub-migrate/pkg/migration"
)

// Summary - агрегированный итог запуска миграции.
// Сам фреймворк этот отчёт никогда не читает обратно.
type Summary struct {
	Success       bool                    `json:"success"`
	StartedAt     time.Time               `json:"started_at"`
	FinishedAt    time.Time               `json:"finished_at"`
	DurationMs    int64                   `json:"duration_ms"`
	TotalSource   int                     `json:"total_source"`
	TotalMigrated int                     `json:"total_migrated"`
	TotalSkipped  int                     `json:"total_skipped"`
	TotalErrors   int                     `json:"total_errors"`
	Tables        []*migration.Result     `json:"tables"`
	Health        *integrity.HealthReport `json:"health,omitempty"`
}

// Build собирает сводку из таблиц-результатов и снимка health-check
func Build(success bool, results []*migration.Result, health *integrity.HealthReport, startedAt, finishedAt time.Time) *Summary {
	s := &Summary{
		Success:    success,
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		DurationMs: finishedAt.Sub(startedAt).Milliseconds(),
		Tables:     results,
		Health:     health,
	}
	for _, r := range results {
		s.TotalSource += r.SourceCount
		s.TotalMigrated += r.MigratedCount
		s.TotalSkipped += r.SkippedCount
		s.TotalErrors += r.ErrorCount
	}
	return s
}
