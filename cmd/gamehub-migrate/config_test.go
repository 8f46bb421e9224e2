package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigValid(t *testing.T) {
	path := writeConfig(t, `
database:
  type: mysql
  host: db.example.com
  port: 3306
  user: migrator
  password: secret
  database: gamehub
source:
  path: ./export.json
report:
  format: both
result_log:
  type: redis
  address: 127.0.0.1:6379
  name: gamehub_migration
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Database.Type != "mysql" || config.Database.Host != "db.example.com" {
		t.Errorf("database section not parsed: %+v", config.Database)
	}
	if config.Source.Path != "./export.json" {
		t.Errorf("source section not parsed: %+v", config.Source)
	}
	if config.Report.Format != "both" {
		t.Errorf("report format = %q", config.Report.Format)
	}
	if config.Report.Dir != "./reports" {
		t.Errorf("report dir default not applied: %q", config.Report.Dir)
	}
	if config.ResultLog.TTL != 3600 {
		t.Errorf("result_log TTL default not applied: %d", config.ResultLog.TTL)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  type: sqlite
  path: ./gamehub.db
`)

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Report.Format != "json" {
		t.Errorf("default report format = %q, want json", config.Report.Format)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown db type", "database:\n  type: oracle\n"},
		{"sqlite without path", "database:\n  type: sqlite\n"},
		{"bad report format", "database:\n  type: sqlite\n  path: x.db\nreport:\n  format: pdf\n"},
		{"bad result_log type", "database:\n  type: sqlite\n  path: x.db\nresult_log:\n  type: kafka\n  address: x\n  name: y\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCreateConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := createConfigTemplate(path); err != nil {
		t.Fatalf("createConfigTemplate failed: %v", err)
	}

	// Шаблон обязан быть валидной конфигурацией
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("template config does not load: %v", err)
	}

	// Существующий файл не перезаписывается
	if err := createConfigTemplate(path); err == nil {
		t.Error("existing config must not be overwritten")
	}
}
