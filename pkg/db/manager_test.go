package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// testManager открывает файловую SQLite БД во временной директории.
// Файловая БД нужна потому что ":memory:" даёт отдельную БД на каждое
// соединение пула.
func testManager(t *testing.T) *Manager {
	t.Helper()

	cfg := Config{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	}
	m, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestConnectValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"unknown type", Config{Type: "oracle"}, true},
		{"sqlite without path", Config{Type: "sqlite"}, true},
		{"mysql without host", Config{Type: "mysql", Database: "test"}, true},
		{"sqlite with path", Config{Type: "sqlite", Path: "/tmp/x.db"}, false},
		{"dsn override", Config{Type: "mysql", DSN: "user:pass@tcp(localhost)/db"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildDSNMySQL(t *testing.T) {
	cfg := Config{
		Type:     "mysql",
		Host:     "db.example.com",
		Port:     3306,
		User:     "migrator",
		Password: "secret",
		Database: "gamehub",
	}
	dsn := cfg.BuildDSN()
	for _, want := range []string{"migrator", "db.example.com:3306", "gamehub", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN %q missing %q", dsn, want)
		}
	}
}

func TestQueryUnified(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	// DDL через exec-ветку
	if _, err := m.Query(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create table failed: %v", err)
	}

	res, err := m.Query(ctx, `INSERT INTO items (name) VALUES (?)`, "first")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if res.AffectedRows != 1 {
		t.Errorf("expected 1 affected row, got %d", res.AffectedRows)
	}
	if res.InsertID == 0 {
		t.Error("expected non-zero insert id")
	}

	// SELECT через rows-ветку
	sel, err := m.Query(ctx, `SELECT id, name FROM items WHERE name = ?`, "first")
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(sel.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sel.Rows))
	}
	if sel.Rows[0]["name"] != "first" {
		t.Errorf("expected name 'first', got %v", sel.Rows[0]["name"])
	}
}

func TestQueryError(t *testing.T) {
	m := testManager(t)

	_, err := m.Query(context.Background(), `SELECT * FROM no_such_table`)
	if err == nil {
		t.Fatal("expected error for missing table")
	}

	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *QueryError, got %T", err)
	}
	if qe.SQL == "" {
		t.Error("QueryError should carry the SQL text")
	}
}

func TestQueryRowAndCount(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	m.Query(ctx, `CREATE TABLE nums (n INTEGER)`)
	m.Query(ctx, `INSERT INTO nums (n) VALUES (1), (2), (3)`)

	row, err := m.QueryRow(ctx, `SELECT n FROM nums WHERE n = ?`, 2)
	if err != nil {
		t.Fatalf("QueryRow failed: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row")
	}

	missing, err := m.QueryRow(ctx, `SELECT n FROM nums WHERE n = ?`, 99)
	if err != nil {
		t.Fatalf("QueryRow failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for empty result")
	}

	count, err := m.Count(ctx, `SELECT COUNT(*) FROM nums`)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3, got %d", count)
	}
}

func TestTransactionCommitAndRollback(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	m.Query(ctx, `CREATE TABLE tx_test (id INTEGER)`)

	err := m.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO tx_test (id) VALUES (1)`)
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	err = m.Transaction(ctx, func(tx *sql.Tx) error {
		tx.ExecContext(ctx, `INSERT INTO tx_test (id) VALUES (2)`)
		return errors.New("force rollback")
	})
	if err == nil {
		t.Fatal("expected error from transaction")
	}

	count, _ := m.Count(ctx, `SELECT COUNT(*) FROM tx_test`)
	if count != 1 {
		t.Errorf("rollback leaked rows: expected 1, got %d", count)
	}
}

func TestTableExists(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	exists, err := m.TableExists(ctx, "users")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if exists {
		t.Error("table should not exist yet")
	}

	m.Query(ctx, `CREATE TABLE users (id TEXT PRIMARY KEY)`)

	exists, err = m.TableExists(ctx, "users")
	if err != nil {
		t.Fatalf("TableExists failed: %v", err)
	}
	if !exists {
		t.Error("table should exist after create")
	}
}

func TestGetTableStructure(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	m.Query(ctx, `CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		age INTEGER
	)`)

	columns, err := m.GetTableStructure(ctx, "profiles")
	if err != nil {
		t.Fatalf("GetTableStructure failed: %v", err)
	}
	if len(columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(columns))
	}

	byName := map[string]ColumnInfo{}
	for _, c := range columns {
		byName[c.Field] = c
	}

	if byName["id"].Key != "PRI" {
		t.Errorf("id should be primary key, got %q", byName["id"].Key)
	}
	if byName["email"].Nullable {
		t.Error("email should be NOT NULL")
	}
	if !byName["age"].Nullable {
		t.Error("age should be nullable")
	}
}

func TestGetTableStats(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	m.Query(ctx, `CREATE TABLE events (id INTEGER)`)
	m.Query(ctx, `INSERT INTO events (id) VALUES (1), (2)`)

	stats, err := m.GetTableStats(ctx, "events")
	if err != nil {
		t.Fatalf("GetTableStats failed: %v", err)
	}
	if stats.RowCount != 2 {
		t.Errorf("expected 2 rows, got %d", stats.RowCount)
	}
}

func TestExecuteSQLScript(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	script := `
		-- comment line
		CREATE TABLE a (id INTEGER);
		CREATE TABLE b (name TEXT DEFAULT 'x;y');
		INSERT INTO a (id) VALUES (1);
	`
	if err := m.ExecuteSQLScript(ctx, script); err != nil {
		t.Fatalf("script failed: %v", err)
	}

	count, _ := m.Count(ctx, `SELECT COUNT(*) FROM a`)
	if count != 1 {
		t.Errorf("expected 1 row in a, got %d", count)
	}

	// Вторая таблица создана несмотря на ';' внутри литерала
	exists, _ := m.TableExists(ctx, "b")
	if !exists {
		t.Error("table b should exist")
	}
}

func TestExecuteSQLScriptStopsOnError(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	script := `
		CREATE TABLE good (id INTEGER);
		CREATE BROKEN SYNTAX;
		CREATE TABLE never (id INTEGER);
	`
	if err := m.ExecuteSQLScript(ctx, script); err == nil {
		t.Fatal("expected script error")
	}

	exists, _ := m.TableExists(ctx, "never")
	if exists {
		t.Error("statements after the failing one must not run")
	}
}

func TestPostgresRebind(t *testing.T) {
	d := postgresDialect{}

	tests := []struct {
		in   string
		want string
	}{
		{"SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"INSERT INTO t VALUES (?, ?, ?)", "INSERT INTO t VALUES ($1, $2, $3)"},
		{"SELECT '?' , a FROM t WHERE b = ?", "SELECT '?' , a FROM t WHERE b = $1"},
		{"SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		if got := d.Rebind(tt.in); got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsReadQuery(t *testing.T) {
	reads := []string{"SELECT 1", "  select * from t", "PRAGMA table_info(x)", "SHOW TABLES", "WITH q AS (SELECT 1) SELECT * FROM q", "INSERT INTO t (a) VALUES (1) RETURNING id"}
	writes := []string{"INSERT INTO t VALUES (1)", "UPDATE t SET a=1", "DELETE FROM t", "CREATE TABLE t (id INT)"}

	for _, q := range reads {
		if !isReadQuery(q) {
			t.Errorf("isReadQuery(%q) = false, want true", q)
		}
	}
	for _, q := range writes {
		if isReadQuery(q) {
			t.Errorf("isReadQuery(%q) = true, want false", q)
		}
	}
}
