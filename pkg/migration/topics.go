package migration

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/transform"
)

type topicMigrator struct{}

func (topicMigrator) Table() string { return "topics" }

func (topicMigrator) MigrateRecord(ctx context.Context, mgr *db.Manager, raw map[string]any, res *Result) error {
	t, iss := transform.TransformTopic(raw)
	res.Warnings = append(res.Warnings, iss.Warnings...)
	if !iss.OK() {
		res.ErrorCount++
		res.Errors = append(res.Errors, iss.Errors...)
		return nil
	}

	stored, err := mgr.QueryRow(ctx,
		`SELECT name, description, board_id, icon, color FROM topics WHERE name = ?`, t.Name)
	if err != nil {
		return fmt.Errorf("topics existence check failed: %w", err)
	}
	if stored != nil {
		storedFp := transform.Fingerprint(
			asString(stored["name"]), asString(stored["description"]),
			asString(stored["board_id"]), asString(stored["icon"]),
			asString(stored["color"]))
		if storedFp != t.Fingerprint() {
			res.warnf("topic %q already exists, skipped (stored content differs)", t.Name)
		} else {
			res.warnf("topic %q already exists, skipped", t.Name)
		}
		res.SkippedCount++
		return nil
	}

	// Ссылка на board обязана указывать на существующую запись;
	// отсутствующий родитель - пропуск, не ошибка: частичные
	// перезапуски не должны ронять таблицу
	ok, err := refExists(ctx, mgr, "boards", t.BoardID)
	if err != nil {
		return err
	}
	if !ok {
		res.warnf("topic %q skipped: referenced board not found: %s", t.Name, *t.BoardID)
		res.SkippedCount++
		return nil
	}

	taken, err := idExists(ctx, mgr, "topics", t.ID)
	if err != nil {
		return err
	}
	if taken {
		res.warnf("topic %q id collision, regenerated identifier", t.Name)
		t.ID = transform.GenerateID("topic")
	}

	_, err = mgr.Query(ctx, `
		INSERT INTO topics
		(id, name, description, board_id, icon, color, sort_order, is_active, article_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.BoardID, t.Icon, t.Color,
		t.SortOrder, t.IsActive, t.ArticleCount, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		res.errorf("failed to insert topic %q: %v", t.Name, err)
		return nil
	}

	res.MigratedCount++
	return nil
}
