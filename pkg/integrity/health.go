// Package integrity содержит проверку состояния целевой БД и откат
// таблиц. Все проверки консультативные: найденные проблемы попадают
// в отчёт и никогда не исправляются автоматически.
package integrity

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/schema"
)

// HealthReport - итог проверки состояния БД
type HealthReport struct {
	Healthy    bool            `json:"healthy"`
	Connection bool            `json:"connection"`
	Tables     map[string]bool `json:"tables"`
	Issues     []string        `json:"issues,omitempty"`
	Details    map[string]any  `json:"details,omitempty"`
}

// orphanScans - сканы осиротевших ссылок: child строки, чей внешний
// ключ указывает на несуществующего родителя
var orphanScans = []struct {
	name  string
	query string
}{
	{
		"topics referencing missing boards",
		`SELECT COUNT(*) FROM topics t
		 LEFT JOIN boards b ON t.board_id = b.id
		 WHERE t.board_id IS NOT NULL AND b.id IS NULL`,
	},
	{
		"articles referencing missing topics",
		`SELECT COUNT(*) FROM articles a
		 LEFT JOIN topics t ON a.topic_id = t.id
		 WHERE a.topic_id IS NOT NULL AND t.id IS NULL`,
	},
	{
		"articles referencing missing boards",
		`SELECT COUNT(*) FROM articles a
		 LEFT JOIN boards b ON a.board_id = b.id
		 WHERE a.board_id IS NOT NULL AND b.id IS NULL`,
	},
	{
		"articles referencing missing authors",
		`SELECT COUNT(*) FROM articles a
		 LEFT JOIN users u ON a.author_id = u.id
		 WHERE a.author_id IS NOT NULL AND u.id IS NULL`,
	},
}

// counterScans - сканы денормализованных счётчиков против фактических
// количеств дочерних строк
var counterScans = []struct {
	name  string
	query string
}{
	{
		"boards with stale topic_count",
		`SELECT COUNT(*) FROM (
			SELECT b.id
			FROM boards b
			LEFT JOIN topics t ON b.id = t.board_id AND t.is_active = TRUE
			GROUP BY b.id, b.topic_count
			HAVING b.topic_count != COUNT(t.id)
		 ) mismatched`,
	},
	{
		"topics with stale article_count",
		`SELECT COUNT(*) FROM (
			SELECT t.id
			FROM topics t
			LEFT JOIN articles a ON t.id = a.topic_id AND a.status = 'published'
			GROUP BY t.id, t.article_count
			HAVING t.article_count != COUNT(a.id)
		 ) mismatched`,
	},
}

// PerformHealthCheck проверяет соединение, наличие обязательных таблиц
// и целостность данных. Никогда не возвращает ошибку за пределы своей
// операции: любой сбой становится issue в отчёте.
func PerformHealthCheck(ctx context.Context, mgr *db.Manager) *HealthReport {
	report := &HealthReport{
		Tables:  make(map[string]bool),
		Details: make(map[string]any),
	}

	if err := mgr.TestConnection(ctx); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("connection probe failed: %v", err))
		return report
	}
	report.Connection = true

	allTables := true
	for _, table := range schema.Tables {
		exists, err := mgr.TableExists(ctx, table)
		if err != nil {
			report.Issues = append(report.Issues, fmt.Sprintf("table check failed for %s: %v", table, err))
			allTables = false
			continue
		}
		report.Tables[table] = exists
		if !exists {
			report.Issues = append(report.Issues, fmt.Sprintf("required table missing: %s", table))
			allTables = false
		}
	}

	// Сканы целостности имеют смысл только при полной схеме
	if allTables {
		for _, scan := range orphanScans {
			count, err := mgr.Count(ctx, scan.query)
			if err != nil {
				report.Issues = append(report.Issues, fmt.Sprintf("orphan scan failed (%s): %v", scan.name, err))
				continue
			}
			report.Details[scan.name] = count
			if count > 0 {
				report.Issues = append(report.Issues, fmt.Sprintf("%d %s", count, scan.name))
			}
		}

		for _, scan := range counterScans {
			count, err := mgr.Count(ctx, scan.query)
			if err != nil {
				report.Issues = append(report.Issues, fmt.Sprintf("counter scan failed (%s): %v", scan.name, err))
				continue
			}
			report.Details[scan.name] = count
			if count > 0 {
				report.Issues = append(report.Issues, fmt.Sprintf("%d %s", count, scan.name))
			}
		}
	}

	report.Healthy = report.Connection && allTables && len(report.Issues) == 0
	return report
}
