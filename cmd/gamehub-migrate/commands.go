package main

import (
	"context"
	"fmt"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/integrity"
	"github.com/ruslano69/gamehub-migrate/pkg/migration"
	"github.com/ruslano69/gamehub-migrate/pkg/schema"
)

// runRollback удаляет мигрированные строки одной таблицы
func runRollback(ctx context.Context, config *Config, table string) error {
	mgr, err := db.Connect(ctx, config.Database)
	if err != nil {
		return err
	}
	defer mgr.Close()

	res := integrity.RollbackTable(ctx, mgr, table)
	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}
	fmt.Printf("✓ %s\n", res.Message)
	return nil
}

// runStatus печатает журнал миграций, новые записи первыми
func runStatus(ctx context.Context, config *Config) error {
	mgr, err := db.Connect(ctx, config.Database)
	if err != nil {
		return err
	}
	defer mgr.Close()

	logs := migration.NewLogStore(mgr)
	entries, err := logs.History(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("Migration log is empty")
		return nil
	}

	fmt.Printf("%-20s %-13s %-10s %-10s %8s %8s\n",
		"STARTED", "TABLE", "TYPE", "STATUS", "SOURCE", "MIGRATED")
	for _, e := range entries {
		fmt.Printf("%-20s %-13s %-10s %-10s %8d %8d\n",
			e.StartedAt.Format("2006-01-02 15:04:05"),
			e.TableName, e.MigrationType, e.Status,
			e.SourceCount, e.MigratedCount)
		if e.ErrorMessage != "" {
			fmt.Printf("    %s\n", e.ErrorMessage)
		}
	}

	stuck, err := logs.Stuck(ctx)
	if err != nil {
		return err
	}
	for _, e := range stuck {
		fmt.Printf("! run for %s started %s is still marked running (interrupted?)\n",
			e.TableName, e.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// runHealth выполняет проверку состояния целевой БД
func runHealth(ctx context.Context, config *Config) error {
	mgr, err := db.Connect(ctx, config.Database)
	if err != nil {
		return err
	}
	defer mgr.Close()

	report := integrity.PerformHealthCheck(ctx, mgr)

	fmt.Printf("Connection: %s\n", okMark(report.Connection))
	for _, table := range schema.Tables {
		fmt.Printf("Table %-15s %s\n", table, okMark(report.Tables[table]))
	}
	for _, issue := range report.Issues {
		fmt.Printf("  - %s\n", issue)
	}

	if !report.Healthy {
		return fmt.Errorf("health check found %d issue(s)", len(report.Issues))
	}
	fmt.Println("✓ Database is healthy")
	return nil
}

// runSchema создаёт целевые таблицы
func runSchema(ctx context.Context, config *Config) error {
	mgr, err := db.Connect(ctx, config.Database)
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := schema.Create(ctx, mgr); err != nil {
		return err
	}
	fmt.Printf("✓ Schema created in %s (%s)\n", mgr.DatabaseName(), mgr.Dialect().Name())
	return nil
}

func okMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
