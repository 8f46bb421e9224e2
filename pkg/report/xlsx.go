package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Migration"

var xlsxHeaders = []string{
	"Table", "Success", "Source", "Migrated", "Skipped", "Errors", "Duration (ms)", "Warnings",
}

// WriteXLSX сохраняет сводку листом Excel рядом с JSON-отчётом.
// Имя файла повторяет JSON-отчёт с расширением .xlsx.
func WriteXLSX(s *Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := strings.TrimSuffix(reportFileName(s.StartedAt), ".json") + ".xlsx"
	path := filepath.Join(dir, name)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, header := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, r := range s.Tables {
		row := i + 2
		values := []any{
			r.TableName, r.Success, r.SourceCount, r.MigratedCount,
			r.SkippedCount, r.ErrorCount, r.Duration.Milliseconds(),
			strings.Join(r.Warnings, "\n"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	// Итоговая строка
	totalRow := len(s.Tables) + 2
	totals := []any{
		"TOTAL", s.Success, s.TotalSource, s.TotalMigrated,
		s.TotalSkipped, s.TotalErrors, s.DurationMs, "",
	}
	for col, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
		f.SetCellValue(sheetName, cell, v)
	}

	if err := f.Write(out); err != nil {
		return "", fmt.Errorf("failed to save xlsx report: %w", err)
	}
	return path, nil
}
