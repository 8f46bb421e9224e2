package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteJSON сохраняет сводку в migration_report_<timestamp>.json.
// Файл write-once: существующий файл с тем же именем - ошибка,
// отчёты никогда не перезаписываются.
func WriteJSON(s *Summary, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, reportFileName(s.StartedAt))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func reportFileName(t time.Time) string {
	return fmt.Sprintf("migration_report_%s.json", t.UTC().Format("20060102_150405"))
}
