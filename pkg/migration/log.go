package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
)

// Типы и статусы записей migration_log
const (
	TypeMigrate  = "migrate"
	TypeRollback = "rollback"
	TypeCreate   = "create"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// LogEntry - строка журнала миграций
type LogEntry struct {
	ID            int64
	TableName     string
	MigrationType string
	Status        string
	SourceCount   int
	MigratedCount int
	ErrorMessage  string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// LogStore - явное хранилище журнала миграций поверх таблицы
// migration_log. Жизненный цикл строки: одна запись на таблицу на
// запуск, создаётся в статусе running и обновляется один раз
// по завершении.
type LogStore struct {
	mgr *db.Manager
}

// NewLogStore создает LogStore поверх соединения
func NewLogStore(mgr *db.Manager) *LogStore {
	return &LogStore{mgr: mgr}
}

// Begin создаёт строку журнала в статусе running и возвращает её id
func (s *LogStore) Begin(ctx context.Context, table, migrationType string, sourceCount int) (int64, error) {
	const insert = `
		INSERT INTO migration_log
		(table_name, migration_type, status, source_data_count, migrated_data_count, started_at)
		VALUES (?, ?, ?, ?, 0, ?)`

	startedAt := time.Now().UTC()

	// pgx через database/sql не поддерживает LastInsertId
	if s.mgr.Dialect().Name() == "postgres" {
		row, err := s.mgr.QueryRow(ctx, insert+" RETURNING id",
			table, migrationType, StatusRunning, sourceCount, startedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to begin migration log: %w", err)
		}
		return asInt64(row["id"]), nil
	}

	result, err := s.mgr.Query(ctx, insert,
		table, migrationType, StatusRunning, sourceCount, startedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to begin migration log: %w", err)
	}
	return result.InsertID, nil
}

// Complete переводит строку журнала в конечный статус
func (s *LogStore) Complete(ctx context.Context, id int64, status string, migratedCount int, errorMessage string) error {
	_, err := s.mgr.Query(ctx, `
		UPDATE migration_log
		SET status = ?, migrated_data_count = ?, error_message = ?, completed_at = ?
		WHERE id = ?`,
		status, migratedCount, errorMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to complete migration log: %w", err)
	}
	return nil
}

// History возвращает журнал миграций, новые записи первыми
func (s *LogStore) History(ctx context.Context) ([]LogEntry, error) {
	result, err := s.mgr.Query(ctx, `
		SELECT id, table_name, migration_type, status,
		       source_data_count, migrated_data_count, error_message,
		       started_at, completed_at
		FROM migration_log
		ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration log: %w", err)
	}

	entries := make([]LogEntry, 0, len(result.Rows))
	for _, row := range result.Rows {
		entries = append(entries, LogEntry{
			ID:            asInt64(row["id"]),
			TableName:     asString(row["table_name"]),
			MigrationType: asString(row["migration_type"]),
			Status:        asString(row["status"]),
			SourceCount:   int(asInt64(row["source_data_count"])),
			MigratedCount: int(asInt64(row["migrated_data_count"])),
			ErrorMessage:  asString(row["error_message"]),
			StartedAt:     asTime(row["started_at"]),
			CompletedAt:   asNullableTime(row["completed_at"]),
		})
	}
	return entries, nil
}

// Stuck возвращает записи, оставшиеся в статусе running, -
// признак прерванного запуска, требующий внимания оператора
func (s *LogStore) Stuck(ctx context.Context) ([]LogEntry, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	var stuck []LogEntry
	for _, e := range entries {
		if e.Status == StatusRunning {
			stuck = append(stuck, e)
		}
	}
	return stuck, nil
}
