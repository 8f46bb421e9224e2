// Package migration реализует перенос записей из снапшота клиентского
// хранилища в целевые таблицы. Таблицы мигрируются строго в порядке
// зависимостей, записи - по одной, с пер-записной границей ошибок:
// одна плохая запись никогда не прерывает таблицу.
package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/source"
)

// TableOrder - фиксированный порядок миграции по зависимостям
var TableOrder = []string{"users", "boards", "topics", "articles", "system_config"}

// EntityMigrator - поведение миграции одного типа записей.
// Закрытое множество из пяти реализаций, диспетчеризация на этапе
// компиляции.
//
// MigrateRecord обрабатывает одну сырую запись и отражает исход
// (migrated/skipped/error) в res. Возвращённая ошибка означает отказ
// уровня таблицы (недоступность БД), а не проблему данных.
type EntityMigrator interface {
	Table() string
	MigrateRecord(ctx context.Context, mgr *db.Manager, raw map[string]any, res *Result) error
}

// Migrator - оркестратор миграции
type Migrator struct {
	mgr     *db.Manager
	logs    *LogStore
	byTable map[string]EntityMigrator
}

// New создает оркестратор с полным набором мигрируемых типов
func New(mgr *db.Manager) *Migrator {
	m := &Migrator{
		mgr:     mgr,
		logs:    NewLogStore(mgr),
		byTable: make(map[string]EntityMigrator),
	}
	for _, em := range []EntityMigrator{
		userMigrator{},
		boardMigrator{},
		topicMigrator{},
		articleMigrator{},
		sysConfigMigrator{},
	} {
		m.byTable[em.Table()] = em
	}
	return m
}

// Logs возвращает хранилище журнала миграций
func (m *Migrator) Logs() *LogStore { return m.logs }

// MigrateAll мигрирует все таблицы в порядке зависимостей.
// Неудача одной таблицы не прерывает остальные: у следующих таблиц
// может не быть зависимости от неё. Флаг success - общий итог.
func (m *Migrator) MigrateAll(ctx context.Context, snap *source.Snapshot) (bool, []*Result) {
	success := true
	results := make([]*Result, 0, len(TableOrder))
	for _, table := range TableOrder {
		res := m.MigrateTable(ctx, snap, table)
		if !res.Success {
			success = false
		}
		results = append(results, res)
	}
	return success, results
}

// MigrateTable мигрирует одну таблицу из снапшота
func (m *Migrator) MigrateTable(ctx context.Context, snap *source.Snapshot, table string) *Result {
	start := time.Now()
	res := &Result{TableName: table}

	em, ok := m.byTable[table]
	if !ok {
		res.errorf("unknown table: %s (available: %s)", table, strings.Join(TableOrder, ", "))
		res.Duration = time.Since(start)
		return res
	}

	records := snap.Collection(table)
	res.SourceCount = len(records)

	logID, err := m.logs.Begin(ctx, table, TypeMigrate, len(records))
	if err != nil {
		res.errorf("%v", err)
		res.Duration = time.Since(start)
		return res
	}

	if len(records) == 0 {
		res.Success = true
		res.warnf("no source data for table %s", table)
		m.logs.Complete(ctx, logID, StatusCompleted, 0, "")
		res.Duration = time.Since(start)
		return res
	}

	for _, raw := range records {
		if err := em.MigrateRecord(ctx, m.mgr, raw, res); err != nil {
			// Отказ уровня таблицы: прерываем таблицу,
			// MigrateAll продолжит со следующей
			res.errorf("table %s aborted: %v", table, err)
			m.logs.Complete(ctx, logID, StatusFailed, res.MigratedCount, joinErrors(res.Errors))
			res.Duration = time.Since(start)
			return res
		}
	}

	res.Success = res.ErrorCount == 0
	status := StatusCompleted
	if !res.Success {
		status = StatusFailed
	}
	if err := m.logs.Complete(ctx, logID, status, res.MigratedCount, joinErrors(res.Errors)); err != nil {
		res.errorf("%v", err)
		res.Success = false
	}

	res.Duration = time.Since(start)
	return res
}

func joinErrors(errs []string) string {
	return strings.Join(errs, "; ")
}

// idExists проверяет занятость идентификатора в таблице
func idExists(ctx context.Context, mgr *db.Manager, table, id string) (bool, error) {
	quoted := mgr.Dialect().QuoteIdentifier(table)
	count, err := mgr.Count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", quoted), id)
	if err != nil {
		return false, fmt.Errorf("id check failed for %s: %w", table, err)
	}
	return count > 0, nil
}

// refExists проверяет существование родительской записи по ссылке
func refExists(ctx context.Context, mgr *db.Manager, table string, id *string) (bool, error) {
	if id == nil {
		return true, nil
	}
	return idExists(ctx, mgr, table, *id)
}
