package db

import (
	"fmt"
	"strings"
)

// Dialect описывает различия целевых СУБД: синтаксис placeholder'ов,
// экранирование идентификаторов и интроспекцию схемы.
// Поддерживаются mysql (боевая цель), sqlite (герметичные тесты)
// и postgres.
type Dialect interface {
	// Name возвращает тип СУБД: "mysql", "sqlite", "postgres"
	Name() string

	// Driver возвращает имя зарегистрированного database/sql драйвера
	Driver() string

	// QuoteIdentifier экранирует имя таблицы/колонки
	QuoteIdentifier(name string) string

	// Rebind переводит '?'-placeholder'ы в синтаксис СУБД
	Rebind(query string) string

	// TableExistsQuery - запрос существования таблицы,
	// единственный параметр: имя таблицы
	TableExistsQuery() string

	// TableStructureQuery - запрос структуры таблицы (колонки и типы)
	TableStructureQuery(table string) string

	// TableStatsQuery - запрос статистики таблицы; должен возвращать
	// колонки row_count, data_bytes, index_bytes
	TableStatsQuery(table string) string
}

// DialectFor возвращает диалект по типу СУБД из конфигурации
func DialectFor(dbType string) (Dialect, error) {
	switch dbType {
	case "mysql":
		return mysqlDialect{}, nil
	case "sqlite":
		return sqliteDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s (available: mysql, sqlite, postgres)", dbType)
	}
}

// escapeLiteral экранирует строковый литерал для запросов, где
// параметры не применимы (интроспекция information_schema)
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// ========== MySQL ==========

type mysqlDialect struct{}

func (mysqlDialect) Name() string   { return "mysql" }
func (mysqlDialect) Driver() string { return "mysql" }

func (mysqlDialect) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?`
}

func (d mysqlDialect) TableStructureQuery(table string) string {
	return "DESCRIBE " + d.QuoteIdentifier(table)
}

func (mysqlDialect) TableStatsQuery(table string) string {
	return fmt.Sprintf(`SELECT
			IFNULL(TABLE_ROWS, 0) AS row_count,
			IFNULL(DATA_LENGTH, 0) AS data_bytes,
			IFNULL(INDEX_LENGTH, 0) AS index_bytes
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = '%s'`, escapeLiteral(table))
}

// ========== SQLite ==========

type sqliteDialect struct{}

func (sqliteDialect) Name() string   { return "sqlite" }
func (sqliteDialect) Driver() string { return "sqlite" }

func (sqliteDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
}

func (d sqliteDialect) TableStructureQuery(table string) string {
	return fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdentifier(table))
}

// SQLite не отдаёт размер таблицы без модуля dbstat,
// поэтому data_bytes/index_bytes всегда нулевые
func (d sqliteDialect) TableStatsQuery(table string) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS row_count, 0 AS data_bytes, 0 AS index_bytes FROM %s`,
		d.QuoteIdentifier(table))
}

// ========== PostgreSQL ==========

type postgresDialect struct{}

func (postgresDialect) Name() string   { return "postgres" }
func (postgresDialect) Driver() string { return "pgx" }

func (postgresDialect) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Rebind переводит '?' в нумерованные $1, $2, ... ,
// пропуская содержимое строковых литералов
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (postgresDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = ?`
}

func (postgresDialect) TableStructureQuery(table string) string {
	return fmt.Sprintf(`SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = '%s'
		ORDER BY ordinal_position`, escapeLiteral(table))
}

func (d postgresDialect) TableStatsQuery(table string) string {
	lit := escapeLiteral(table)
	return fmt.Sprintf(`SELECT
			(SELECT COUNT(*) FROM %s) AS row_count,
			pg_relation_size('%s') AS data_bytes,
			pg_indexes_size('%s') AS index_bytes`,
		d.QuoteIdentifier(table), lit, lit)
}
