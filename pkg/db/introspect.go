package db

import (
	"context"
	"fmt"
	"strings"
)

// ColumnInfo описывает одну колонку таблицы
type ColumnInfo struct {
	Field    string `json:"field"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Key      string `json:"key,omitempty"`
	Default  string `json:"default,omitempty"`
}

// TableStats содержит статистику таблицы
type TableStats struct {
	RowCount   int64 `json:"row_count"`
	DataBytes  int64 `json:"data_bytes"`
	IndexBytes int64 `json:"index_bytes"`
}

// TableExists проверяет существование таблицы
func (m *Manager) TableExists(ctx context.Context, table string) (bool, error) {
	count, err := m.Count(ctx, m.dialect.TableExistsQuery(), table)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return count > 0, nil
}

// GetTableStructure возвращает список колонок таблицы.
// Формат результата интроспекции у каждой СУБД свой,
// нормализация выполняется по имени диалекта.
func (m *Manager) GetTableStructure(ctx context.Context, table string) ([]ColumnInfo, error) {
	result, err := m.Query(ctx, m.dialect.TableStructureQuery(table))
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}

	columns := make([]ColumnInfo, 0, len(result.Rows))
	for _, row := range result.Rows {
		columns = append(columns, m.parseColumn(row))
	}
	return columns, nil
}

func (m *Manager) parseColumn(row map[string]any) ColumnInfo {
	switch m.dialect.Name() {
	case "sqlite":
		// PRAGMA table_info: name, type, notnull, dflt_value, pk
		col := ColumnInfo{
			Field:    toString(row["name"]),
			Type:     toString(row["type"]),
			Nullable: toInt64(row["notnull"]) == 0,
			Default:  toString(row["dflt_value"]),
		}
		if toInt64(row["pk"]) > 0 {
			col.Key = "PRI"
		}
		return col

	case "postgres":
		// information_schema.columns
		return ColumnInfo{
			Field:    toString(row["column_name"]),
			Type:     toString(row["data_type"]),
			Nullable: strings.EqualFold(toString(row["is_nullable"]), "YES"),
			Default:  toString(row["column_default"]),
		}

	default:
		// MySQL DESCRIBE: Field, Type, Null, Key, Default, Extra
		return ColumnInfo{
			Field:    toString(row["Field"]),
			Type:     toString(row["Type"]),
			Nullable: strings.EqualFold(toString(row["Null"]), "YES"),
			Key:      toString(row["Key"]),
			Default:  toString(row["Default"]),
		}
	}
}

// GetTableStats возвращает статистику таблицы.
// Для MySQL значения берутся из information_schema и являются
// приблизительными.
func (m *Manager) GetTableStats(ctx context.Context, table string) (*TableStats, error) {
	row, err := m.QueryRow(ctx, m.dialect.TableStatsQuery(table))
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for table %s: %w", table, err)
	}
	if row == nil {
		return nil, fmt.Errorf("table %s not found", table)
	}

	return &TableStats{
		RowCount:   toInt64(row["row_count"]),
		DataBytes:  toInt64(row["data_bytes"]),
		IndexBytes: toInt64(row["index_bytes"]),
	}, nil
}

// ExecuteSQLScript выполняет скрипт из нескольких SQL statement'ов,
// разделённых ';'. Останавливается на первой ошибке.
func (m *Manager) ExecuteSQLScript(ctx context.Context, script string) error {
	for i, stmt := range splitStatements(script) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w (sql: %s)", i+1, err, truncateSQL(stmt))
		}
	}
	return nil
}

// splitStatements разбивает SQL скрипт на отдельные statement'ы.
// Разделитель ';' внутри строковых литералов не учитывается как
// граница statement'а.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	inQuote := byte(0)

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case inQuote != 0:
			current.WriteByte(c)
			if c == inQuote {
				inQuote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			inQuote = c
			current.WriteByte(c)
		case c == ';':
			if stmt := cleanStatement(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	if stmt := cleanStatement(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// cleanStatement убирает комментарии '--' и пустые строки
func cleanStatement(stmt string) string {
	var lines []string
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func truncateSQL(sql string) string {
	const maxLen = 120
	sql = strings.Join(strings.Fields(sql), " ")
	if len(sql) > maxLen {
		return sql[:maxLen] + "..."
	}
	return sql
}

// toString и toInt64 нормализуют значения из map-результатов Query:
// драйверы возвращают разные конкретные типы для одной колонки

func toString(v any) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case uint64:
		return int64(n)
	case []byte:
		var out int64
		fmt.Sscanf(string(n), "%d", &out)
		return out
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}
