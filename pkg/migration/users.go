package migration

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/transform"
)

type userMigrator struct{}

func (userMigrator) Table() string { return "users" }

func (userMigrator) MigrateRecord(ctx context.Context, mgr *db.Manager, raw map[string]any, res *Result) error {
	u, iss := transform.TransformUser(raw)
	res.Warnings = append(res.Warnings, iss.Warnings...)
	if !iss.OK() {
		res.ErrorCount++
		res.Errors = append(res.Errors, iss.Errors...)
		return nil
	}

	// Проверка по бизнес-ключу: уже мигрированная запись пропускается
	stored, err := mgr.QueryRow(ctx,
		`SELECT username, email, password, role, user_type FROM users WHERE username = ?`,
		u.Username)
	if err != nil {
		return fmt.Errorf("users existence check failed: %w", err)
	}
	if stored != nil {
		storedFp := transform.Fingerprint(
			asString(stored["username"]), asString(stored["email"]),
			asString(stored["password"]), asString(stored["role"]),
			asString(stored["user_type"]))
		if storedFp != u.Fingerprint() {
			res.warnf("user %q already exists, skipped (stored content differs)", u.Username)
		} else {
			res.warnf("user %q already exists, skipped", u.Username)
		}
		res.SkippedCount++
		return nil
	}

	// Занятый идентификатор при свободном бизнес-ключе - переэкспорт
	// с устаревшими id, идентификатор генерируется заново
	taken, err := idExists(ctx, mgr, "users", u.ID)
	if err != nil {
		return err
	}
	if taken {
		res.warnf("user %q id collision, regenerated identifier", u.Username)
		u.ID = transform.GenerateID("user")
	}

	_, err = mgr.Query(ctx, `
		INSERT INTO users
		(id, username, email, password, role, user_type, is_active, is_guest, guest_id, created_at, updated_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.Password, u.Role, u.UserType,
		u.IsActive, u.IsGuest, u.GuestID, u.CreatedAt, u.UpdatedAt, u.LastLoginAt)
	if err != nil {
		res.errorf("failed to insert user %q: %v", u.Username, err)
		return nil
	}

	res.MigratedCount++
	return nil
}
