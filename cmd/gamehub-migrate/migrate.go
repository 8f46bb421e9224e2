package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/integrity"
	"github.com/ruslano69/gamehub-migrate/pkg/migration"
	"github.com/ruslano69/gamehub-migrate/pkg/report"
	"github.com/ruslano69/gamehub-migrate/pkg/source"
)

// runMigrate выполняет миграцию всех таблиц (или одной указанной),
// пишет отчёты и публикует итог
func runMigrate(ctx context.Context, config *Config, table string) error {
	if config.Source.Path == "" {
		return fmt.Errorf("source.path is required for migrate")
	}

	snap, err := source.Load(config.Source.Path)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded snapshot: %d users, %d boards, %d topics, %d articles\n",
		len(snap.Users), len(snap.Boards), len(snap.Topics), len(snap.Articles))

	mgr, err := db.Connect(ctx, config.Database)
	if err != nil {
		return err
	}
	defer mgr.Close()

	m := migration.New(mgr)
	startedAt := time.Now()

	var success bool
	var results []*migration.Result
	if table != "" {
		res := m.MigrateTable(ctx, snap, table)
		success = res.Success
		results = []*migration.Result{res}
	} else {
		success, results = m.MigrateAll(ctx, snap)
	}
	finishedAt := time.Now()

	for _, res := range results {
		printResult(res)
	}

	health := integrity.PerformHealthCheck(ctx, mgr)
	if health.Healthy {
		fmt.Println("Health check: OK")
	} else {
		fmt.Printf("Health check: %d issue(s)\n", len(health.Issues))
		for _, issue := range health.Issues {
			fmt.Printf("  - %s\n", issue)
		}
	}

	summary := report.Build(success, results, health, startedAt, finishedAt)
	if err := writeReports(summary, config); err != nil {
		return err
	}
	if err := publishResult(ctx, summary, config); err != nil {
		return err
	}

	if !success {
		return fmt.Errorf("migration finished with failures")
	}
	fmt.Printf("✓ Migration completed: %d migrated, %d skipped in %d ms\n",
		summary.TotalMigrated, summary.TotalSkipped, summary.DurationMs)
	return nil
}

func printResult(res *migration.Result) {
	mark := "✓"
	if !res.Success {
		mark = "✗"
	}
	fmt.Printf("%s %-13s migrated=%d skipped=%d errors=%d (%d ms)\n",
		mark, res.TableName, res.MigratedCount, res.SkippedCount,
		res.ErrorCount, res.Duration.Milliseconds())
	for _, w := range res.Warnings {
		fmt.Printf("    warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Printf("    error: %s\n", e)
	}
}

func writeReports(summary *report.Summary, config *Config) error {
	format := config.Report.Format
	if format == "json" || format == "both" {
		path, err := report.WriteJSON(summary, config.Report.Dir)
		if err != nil {
			return err
		}
		fmt.Printf("Report written: %s\n", path)
	}
	if format == "xlsx" || format == "both" {
		path, err := report.WriteXLSX(summary, config.Report.Dir)
		if err != nil {
			return err
		}
		fmt.Printf("Report written: %s\n", path)
	}
	return nil
}

func publishResult(ctx context.Context, summary *report.Summary, config *Config) error {
	if config.ResultLog.Type != "redis" {
		return nil
	}
	publisher := report.NewRedisPublisher(config.ResultLog)
	defer publisher.Close()

	if err := publisher.Publish(ctx, summary); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	fmt.Printf("Result published to redis as %s\n", config.ResultLog.Name)
	return nil
}
