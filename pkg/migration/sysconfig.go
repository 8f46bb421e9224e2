package migration

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/transform"
)

type sysConfigMigrator struct{}

func (sysConfigMigrator) Table() string { return "system_config" }

func (sysConfigMigrator) MigrateRecord(ctx context.Context, mgr *db.Manager, raw map[string]any, res *Result) error {
	entry, iss := transform.TransformSystemConfig(raw)
	res.Warnings = append(res.Warnings, iss.Warnings...)
	if !iss.OK() {
		res.ErrorCount++
		res.Errors = append(res.Errors, iss.Errors...)
		return nil
	}

	stored, err := mgr.QueryRow(ctx,
		`SELECT config_key, config_value, config_type FROM system_config WHERE config_key = ?`,
		entry.ConfigKey)
	if err != nil {
		return fmt.Errorf("system_config existence check failed: %w", err)
	}
	if stored != nil {
		storedFp := transform.Fingerprint(
			asString(stored["config_key"]), asString(stored["config_value"]),
			asString(stored["config_type"]))
		if storedFp != entry.Fingerprint() {
			res.warnf("config %s already exists, skipped (stored content differs)", entry.ConfigKey)
		} else {
			res.warnf("config %s already exists, skipped", entry.ConfigKey)
		}
		res.SkippedCount++
		return nil
	}

	_, err = mgr.Query(ctx, `
		INSERT INTO system_config
		(config_key, config_value, config_type, description, updated_by)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ConfigKey, entry.ConfigValue, entry.ConfigType,
		entry.Description, entry.UpdatedBy)
	if err != nil {
		res.errorf("failed to insert config %s: %v", entry.ConfigKey, err)
		return nil
	}

	res.MigratedCount++
	return nil
}
