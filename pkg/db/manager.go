// Package db предоставляет унифицированный слой доступа к целевой базе
// данных миграции. Поддерживает MySQL, SQLite и PostgreSQL через общий
// Dialect, единый метод Query для чтения и записи, и транзакционный helper.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver (cgo-free)

	"github.com/ruslano69/gamehub-migrate/pkg/retry"
)

// Config содержит параметры подключения к целевой БД
type Config struct {
	// Type - тип СУБД: mysql, sqlite, postgres
	Type string `yaml:"type"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`

	// Path - путь к файлу БД (только для sqlite)
	Path string `yaml:"path"`

	// DSN - готовая строка подключения; если задана, остальные
	// поля подключения игнорируются
	DSN string `yaml:"dsn"`

	// Charset - кодировка соединения MySQL (по умолчанию utf8mb4)
	Charset string `yaml:"charset"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// QueryTimeout - таймаут одиночного запроса (0 = без таймаута)
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// Retry - политика повторов при установке соединения
	Retry retry.Config `yaml:"retry"`
}

// Validate проверяет корректность конфигурации подключения
func (c *Config) Validate() error {
	if _, err := DialectFor(c.Type); err != nil {
		return err
	}
	if c.DSN != "" {
		return nil
	}
	switch c.Type {
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("sqlite requires path or dsn")
		}
	default:
		if c.Host == "" {
			return fmt.Errorf("%s requires host", c.Type)
		}
		if c.Database == "" {
			return fmt.Errorf("%s requires database name", c.Type)
		}
	}
	return nil
}

// BuildDSN собирает строку подключения из полей конфигурации
func (c *Config) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.Type {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
		mc.DBName = c.Database
		mc.ParseTime = true
		mc.Loc = time.UTC
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		mc.Params = map[string]string{"charset": charset}
		return mc.FormatDSN()

	case "sqlite":
		return c.Path

	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			c.User, c.Password, c.Host, c.Port, c.Database)
	}

	return ""
}

// QueryResult - унифицированный результат выполнения запроса.
// Для SELECT-подобных запросов заполняется Rows,
// для остальных - InsertID и AffectedRows.
type QueryResult struct {
	Rows         []map[string]any
	InsertID     int64
	AffectedRows int64
}

// QueryError оборачивает ошибку запроса вместе с SQL и параметрами
type QueryError struct {
	SQL    string
	Params []any
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (sql: %s)", e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Manager управляет соединением с целевой БД
type Manager struct {
	db      *sql.DB
	dialect Dialect
	config  Config
}

// Connect открывает соединение и проверяет его ping'ом.
// Установка соединения выполняется с повторами по конфигурации Retry.
func Connect(ctx context.Context, cfg Config) (*Manager, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver(), cfg.BuildDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	retryer, err := retry.NewRetryer(cfg.Retry)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := retryer.Do(ctx, func(ctx context.Context) error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Manager{db: db, dialect: dialect, config: cfg}, nil
}

// Close закрывает соединение с базой данных
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// DB возвращает нижележащий *sql.DB
func (m *Manager) DB() *sql.DB { return m.db }

// Dialect возвращает диалект текущей БД
func (m *Manager) Dialect() Dialect { return m.dialect }

// DatabaseName возвращает имя целевой базы данных
func (m *Manager) DatabaseName() string {
	if m.config.Type == "sqlite" {
		return m.config.Path
	}
	return m.config.Database
}

// TestConnection проверяет работоспособность соединения
// полным round-trip запросом
func (m *Manager) TestConnection(ctx context.Context) error {
	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	var one int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// Query выполняет запрос с '?'-placeholder'ами и возвращает
// унифицированный результат. SELECT-подобные запросы возвращают строки,
// остальные - InsertID и AffectedRows.
func (m *Manager) Query(ctx context.Context, query string, params ...any) (*QueryResult, error) {
	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	bound := m.dialect.Rebind(query)

	if isReadQuery(query) {
		rows, err := m.db.QueryContext(ctx, bound, params...)
		if err != nil {
			return nil, &QueryError{SQL: query, Params: params, Err: err}
		}
		defer rows.Close()

		result, err := scanRows(rows)
		if err != nil {
			return nil, &QueryError{SQL: query, Params: params, Err: err}
		}
		return result, nil
	}

	res, err := m.db.ExecContext(ctx, bound, params...)
	if err != nil {
		return nil, &QueryError{SQL: query, Params: params, Err: err}
	}

	result := &QueryResult{}
	// Не все драйверы поддерживают LastInsertId/RowsAffected,
	// их отсутствие не является ошибкой
	if id, err := res.LastInsertId(); err == nil {
		result.InsertID = id
	}
	if n, err := res.RowsAffected(); err == nil {
		result.AffectedRows = n
	}
	return result, nil
}

// QueryRow выполняет запрос и возвращает первую строку результата
// (nil если результат пуст)
func (m *Manager) QueryRow(ctx context.Context, query string, params ...any) (map[string]any, error) {
	result, err := m.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 {
		return nil, nil
	}
	return result.Rows[0], nil
}

// Count выполняет запрос, первая колонка первой строки которого -
// целочисленный счётчик
func (m *Manager) Count(ctx context.Context, query string, params ...any) (int64, error) {
	ctx, cancel := m.queryContext(ctx)
	defer cancel()

	var count int64
	err := m.db.QueryRowContext(ctx, m.dialect.Rebind(query), params...).Scan(&count)
	if err != nil {
		return 0, &QueryError{SQL: query, Params: params, Err: err}
	}
	return count, nil
}

// Transaction выполняет fn внутри транзакции. При ошибке или панике
// транзакция откатывается, иначе фиксируется.
func (m *Manager) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (m *Manager) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.config.QueryTimeout > 0 {
		return context.WithTimeout(ctx, m.config.QueryTimeout)
	}
	return ctx, func() {}
}

// isReadQuery определяет, возвращает ли запрос набор строк
func isReadQuery(query string) bool {
	q := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "SHOW", "DESCRIBE", "EXPLAIN", "PRAGMA", "WITH"} {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	// INSERT/UPDATE/DELETE ... RETURNING возвращает строки (postgres)
	return strings.Contains(q, " RETURNING ")
}

// scanRows читает все строки результата в []map[string]any.
// Значения []byte конвертируются в string: MySQL драйвер возвращает
// текстовые колонки как байтовые срезы.
func scanRows(rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	result := &QueryResult{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}
