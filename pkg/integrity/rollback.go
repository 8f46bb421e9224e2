package integrity

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/migration"
)

// RollbackResult - итог отката в форме {success, message}:
// откат сообщает о сбоях, но никогда не паникует за границей операции
type RollbackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// rollbackTables - таблицы, для которых разрешён откат
var rollbackTables = map[string]bool{
	"users":         true,
	"boards":        true,
	"topics":        true,
	"articles":      true,
	"system_config": true,
}

// RollbackTable удаляет все строки указанной таблицы. Строки других
// таблиц не затрагиваются, даже если они ссылаются на откатываемую:
// осиротевшие ссылки намеренно остаются для PerformHealthCheck.
func RollbackTable(ctx context.Context, mgr *db.Manager, table string) *RollbackResult {
	if !rollbackTables[table] {
		return &RollbackResult{Message: fmt.Sprintf("rollback is not supported for table: %s", table)}
	}

	logs := migration.NewLogStore(mgr)
	logID, err := logs.Begin(ctx, table, migration.TypeRollback, 0)
	if err != nil {
		return &RollbackResult{Message: fmt.Sprintf("failed to record rollback start: %v", err)}
	}

	quoted := mgr.Dialect().QuoteIdentifier(table)
	result, err := mgr.Query(ctx, "DELETE FROM "+quoted)
	if err != nil {
		logs.Complete(ctx, logID, migration.StatusFailed, 0, err.Error())
		return &RollbackResult{Message: fmt.Sprintf("rollback of %s failed: %v", table, err)}
	}

	if err := logs.Complete(ctx, logID, migration.StatusCompleted, int(result.AffectedRows), ""); err != nil {
		return &RollbackResult{Message: fmt.Sprintf("rollback of %s done, but log update failed: %v", table, err)}
	}

	return &RollbackResult{
		Success: true,
		Message: fmt.Sprintf("rolled back %s: %d rows deleted", table, result.AffectedRows),
	}
}
