package migration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/transform"
)

type articleMigrator struct{}

func (articleMigrator) Table() string { return "articles" }

func (articleMigrator) MigrateRecord(ctx context.Context, mgr *db.Manager, raw map[string]any, res *Result) error {
	a, iss := transform.TransformArticle(raw)
	res.Warnings = append(res.Warnings, iss.Warnings...)
	if !iss.OK() {
		res.ErrorCount++
		res.Errors = append(res.Errors, iss.Errors...)
		return nil
	}

	// Статьи не имеют бизнес-ключа: заголовки не уникальны,
	// дубликат определяется только по идентификатору
	stored, err := mgr.QueryRow(ctx,
		`SELECT title, content, author, category, status FROM articles WHERE id = ?`, a.ID)
	if err != nil {
		return fmt.Errorf("articles existence check failed: %w", err)
	}
	if stored != nil {
		storedFp := transform.Fingerprint(
			asString(stored["title"]), asString(stored["content"]),
			asString(stored["author"]), asString(stored["category"]),
			asString(stored["status"]))
		if storedFp == a.Fingerprint() {
			res.warnf("article %q already exists, skipped", a.Title)
			res.SkippedCount++
			return nil
		}
		// Тот же id, другое содержимое - переэкспорт с устаревшим id
		res.warnf("article %q id collision, regenerated identifier", a.Title)
		a.ID = transform.GenerateID("article")
	}

	// Все заданные ссылки обязаны указывать на существующих родителей
	if ok, err := refExists(ctx, mgr, "users", a.AuthorID); err != nil {
		return err
	} else if !ok {
		res.warnf("article %q skipped: referenced author not found: %s", a.Title, *a.AuthorID)
		res.SkippedCount++
		return nil
	}
	if ok, err := refExists(ctx, mgr, "boards", a.BoardID); err != nil {
		return err
	} else if !ok {
		res.warnf("article %q skipped: referenced board not found: %s", a.Title, *a.BoardID)
		res.SkippedCount++
		return nil
	}
	if ok, err := refExists(ctx, mgr, "topics", a.TopicID); err != nil {
		return err
	} else if !ok {
		res.warnf("article %q skipped: referenced topic not found: %s", a.Title, *a.TopicID)
		res.SkippedCount++
		return nil
	}

	tags, err := json.Marshal(a.Tags)
	if err != nil {
		res.errorf("failed to encode tags for article %q: %v", a.Title, err)
		return nil
	}

	_, err = mgr.Query(ctx, `
		INSERT INTO articles
		(id, title, content, author, author_id, author_type, category, board_id, topic_id, tags, likes, views, comments, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.Author, a.AuthorID, a.AuthorType,
		a.Category, a.BoardID, a.TopicID, string(tags),
		a.Likes, a.Views, a.Comments, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		res.errorf("failed to insert article %q: %v", a.Title, err)
		return nil
	}

	res.MigratedCount++
	return nil
}
