package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
	"github.com/ruslano69/gamehub-migrate/pkg/report"
)

// Config - основная структура конфигурации утилиты
type Config struct {
	Database  db.Config              `yaml:"database"`
	Source    SourceConfig           `yaml:"source"`
	Report    ReportConfig           `yaml:"report,omitempty"`
	ResultLog report.ResultLogConfig `yaml:"result_log,omitempty"`
}

// SourceConfig описывает источник данных миграции
type SourceConfig struct {
	// Path - путь к JSON-экспорту клиентского хранилища
	// (поддерживается сжатие .zst)
	Path string `yaml:"path"`
}

// ReportConfig описывает параметры файлового отчёта
type ReportConfig struct {
	Dir    string `yaml:"dir"`    // Директория отчётов (по умолчанию ./reports)
	Format string `yaml:"format"` // json, xlsx или both (по умолчанию json)
}

// LoadConfig загружает и валидирует конфигурацию из YAML файла
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate проверяет конфигурацию и подставляет значения по умолчанию
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.ResultLog.Validate(); err != nil {
		return err
	}

	if c.Report.Dir == "" {
		c.Report.Dir = "./reports"
	}
	switch c.Report.Format {
	case "":
		c.Report.Format = "json"
	case "json", "xlsx", "both":
	default:
		return fmt.Errorf("report.format must be json, xlsx or both, got %q", c.Report.Format)
	}
	return nil
}

const sampleConfig = `# gamehub-migrate configuration
database:
  type: mysql            # mysql, sqlite, postgres
  host: 127.0.0.1
  port: 3306
  user: gamehub
  password: change-me
  database: gamehub
  charset: utf8mb4
  max_open_conns: 10
  max_idle_conns: 2
  query_timeout: 30s
  retry:
    enabled: true
    max_attempts: 5
    initial_delay: 1s
    max_delay: 30s
    backoff_strategy: exponential

source:
  path: ./localstorage_export.json   # .zst supported

report:
  dir: ./reports
  format: json           # json, xlsx, both

# Publish the run result to Redis (empty type = disabled)
result_log:
  type: ""
  address: 127.0.0.1:6379
  name: gamehub_migration
  ttl: 3600
`

// createConfigTemplate записывает образец конфигурации
func createConfigTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}
	return nil
}
