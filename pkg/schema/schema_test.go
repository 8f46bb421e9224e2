package schema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
)

func testManager(t *testing.T) *db.Manager {
	t.Helper()
	m, err := db.Connect(context.Background(), db.Config{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "schema.db"),
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestCreateAndDrop(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := Create(ctx, m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, table := range Tables {
		exists, err := m.TableExists(ctx, table)
		if err != nil {
			t.Fatalf("TableExists(%s) failed: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s not created", table)
		}
	}

	// Факт создания зафиксирован в журнале
	count, err := m.Count(ctx,
		`SELECT COUNT(*) FROM migration_log WHERE migration_type = ? AND status = ?`,
		"create", "completed")
	if err != nil {
		t.Fatalf("log query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 create log row, got %d", count)
	}

	if err := Drop(ctx, m); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	for _, table := range Tables {
		exists, _ := m.TableExists(ctx, table)
		if exists {
			t.Errorf("table %s survived Drop", table)
		}
	}
}

func TestCreateIsIdempotent(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := Create(ctx, m); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if err := Create(ctx, m); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
}

func TestNaturalKeyIndexes(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	if err := Create(ctx, m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := m.Query(ctx, `INSERT INTO boards (id, name, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, "b1", "Action")
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err = m.Query(ctx, `INSERT INTO boards (id, name, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, "b2", "Action")
	if err == nil {
		t.Error("duplicate board name must violate the unique index")
	}
}
