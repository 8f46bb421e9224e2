package migration

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/transform"
)

type boardMigrator struct{}

func (boardMigrator) Table() string { return "boards" }

func (boardMigrator) MigrateRecord(ctx context.Context, mgr *db.Manager, raw map[string]any, res *Result) error {
	b, iss := transform.TransformBoard(raw)
	res.Warnings = append(res.Warnings, iss.Warnings...)
	if !iss.OK() {
		res.ErrorCount++
		res.Errors = append(res.Errors, iss.Errors...)
		return nil
	}

	stored, err := mgr.QueryRow(ctx,
		`SELECT name, description, icon, color FROM boards WHERE name = ?`, b.Name)
	if err != nil {
		return fmt.Errorf("boards existence check failed: %w", err)
	}
	if stored != nil {
		storedFp := transform.Fingerprint(
			asString(stored["name"]), asString(stored["description"]),
			asString(stored["icon"]), asString(stored["color"]))
		if storedFp != b.Fingerprint() {
			res.warnf("board %q already exists, skipped (stored content differs)", b.Name)
		} else {
			res.warnf("board %q already exists, skipped", b.Name)
		}
		res.SkippedCount++
		return nil
	}

	taken, err := idExists(ctx, mgr, "boards", b.ID)
	if err != nil {
		return err
	}
	if taken {
		res.warnf("board %q id collision, regenerated identifier", b.Name)
		b.ID = transform.GenerateID("board")
	}

	_, err = mgr.Query(ctx, `
		INSERT INTO boards
		(id, name, description, icon, color, sort_order, is_active, topic_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.Icon, b.Color,
		b.SortOrder, b.IsActive, b.TopicCount, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		res.errorf("failed to insert board %q: %v", b.Name, err)
		return nil
	}

	res.MigratedCount++
	return nil
}
