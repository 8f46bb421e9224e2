package integrity

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/schema"
)

func testManager(t *testing.T) *db.Manager {
	t.Helper()
	m, err := db.Connect(context.Background(), db.Config{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "integrity.db"),
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func seedSchema(t *testing.T, m *db.Manager) {
	t.Helper()
	if err := schema.Create(context.Background(), m); err != nil {
		t.Fatalf("schema create failed: %v", err)
	}
}

func exec(t *testing.T, m *db.Manager, query string, params ...any) {
	t.Helper()
	if _, err := m.Query(context.Background(), query, params...); err != nil {
		t.Fatalf("seed query failed: %v", err)
	}
}

func TestHealthCheckCleanDatabase(t *testing.T) {
	m := testManager(t)
	seedSchema(t, m)

	report := PerformHealthCheck(context.Background(), m)
	if !report.Healthy {
		t.Errorf("clean database must be healthy, issues: %v", report.Issues)
	}
	if !report.Connection {
		t.Error("connection probe must pass")
	}
	for _, table := range schema.Tables {
		if !report.Tables[table] {
			t.Errorf("table %s must be reported present", table)
		}
	}
}

func TestHealthCheckMissingTables(t *testing.T) {
	m := testManager(t)

	report := PerformHealthCheck(context.Background(), m)
	if report.Healthy {
		t.Error("missing tables must make the report unhealthy")
	}
	if !report.Connection {
		t.Error("connection itself is still fine")
	}
	if !hasIssue(report, "required table missing") {
		t.Errorf("expected missing table issue, got %v", report.Issues)
	}
}

func TestHealthCheckDetectsOrphans(t *testing.T) {
	m := testManager(t)
	seedSchema(t, m)
	ctx := context.Background()

	exec(t, m, `INSERT INTO topics (id, name, board_id, created_at, updated_at)
		VALUES ('t1', 'Orphaned', 'missing_board', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)

	report := PerformHealthCheck(ctx, m)
	if report.Healthy {
		t.Error("orphan row must make the report unhealthy")
	}
	if !hasIssue(report, "topics referencing missing boards") {
		t.Errorf("expected orphan topic issue, got %v", report.Issues)
	}
	if report.Details["topics referencing missing boards"] != int64(1) {
		t.Errorf("details should carry the orphan count, got %v", report.Details)
	}
}

func TestHealthCheckDetectsStaleCounters(t *testing.T) {
	m := testManager(t)
	seedSchema(t, m)

	// Board заявляет 5 тем, фактически ни одной
	exec(t, m, `INSERT INTO boards (id, name, topic_count, created_at, updated_at)
		VALUES ('b1', 'Action', 5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)

	report := PerformHealthCheck(context.Background(), m)
	if report.Healthy {
		t.Error("stale counter must make the report unhealthy")
	}
	if !hasIssue(report, "stale topic_count") {
		t.Errorf("expected stale counter issue, got %v", report.Issues)
	}
}

func TestRollbackIsolation(t *testing.T) {
	m := testManager(t)
	seedSchema(t, m)
	ctx := context.Background()

	exec(t, m, `INSERT INTO boards (id, name, created_at, updated_at)
		VALUES ('b1', 'Action', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	exec(t, m, `INSERT INTO topics (id, name, board_id, created_at, updated_at)
		VALUES ('t1', 'Speedruns', 'b1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)

	res := RollbackTable(ctx, m, "boards")
	if !res.Success {
		t.Fatalf("rollback failed: %s", res.Message)
	}

	boards, _ := m.Count(ctx, `SELECT COUNT(*) FROM boards`)
	if boards != 0 {
		t.Errorf("boards not emptied: %d rows", boards)
	}

	// Темы остаются, даже осиротевшие: ссылочная зачистка между
	// таблицами не автоматическая
	topics, _ := m.Count(ctx, `SELECT COUNT(*) FROM topics`)
	if topics != 1 {
		t.Errorf("rollback of boards must not touch topics, got %d rows", topics)
	}

	// Осиротевшая тема теперь видна health-check'у
	report := PerformHealthCheck(ctx, m)
	if !hasIssue(report, "topics referencing missing boards") {
		t.Errorf("orphaned topic must surface in health check, got %v", report.Issues)
	}
}

func TestRollbackWritesLogEntry(t *testing.T) {
	m := testManager(t)
	seedSchema(t, m)
	ctx := context.Background()

	exec(t, m, `INSERT INTO users (id, username, password, created_at, updated_at)
		VALUES ('u1', 'alice', 'secret123', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)

	res := RollbackTable(ctx, m, "users")
	if !res.Success {
		t.Fatalf("rollback failed: %s", res.Message)
	}

	count, err := m.Count(ctx, `
		SELECT COUNT(*) FROM migration_log
		WHERE table_name = ? AND migration_type = ? AND status = ?`,
		"users", "rollback", "completed")
	if err != nil {
		t.Fatalf("log query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 completed rollback log row, got %d", count)
	}
	if !strings.Contains(res.Message, "1 rows deleted") {
		t.Errorf("message should report the deleted row count, got %q", res.Message)
	}
}

func TestRollbackUnknownTable(t *testing.T) {
	m := testManager(t)
	seedSchema(t, m)

	res := RollbackTable(context.Background(), m, "migration_log")
	if res.Success {
		t.Error("rollback of migration_log must be refused")
	}
	if !strings.Contains(res.Message, "not supported") {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func hasIssue(r *HealthReport, substr string) bool {
	for _, issue := range r.Issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}
