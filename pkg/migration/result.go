package migration

import (
	"fmt"
	"time"
)

// Result - итог миграции одной таблицы
type Result struct {
	TableName     string        `json:"table_name"`
	Success       bool          `json:"success"`
	SourceCount   int           `json:"source_count"`
	MigratedCount int           `json:"migrated_count"`
	SkippedCount  int           `json:"skipped_count"`
	ErrorCount    int           `json:"error_count"`
	Errors        []string      `json:"errors,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	Duration      time.Duration `json:"duration"`
}

func (r *Result) errorf(format string, args ...any) {
	r.ErrorCount++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
