package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultLogConfig определяет параметры публикации итога миграции.
// Позволяет внешнему оркестратору отслеживать состояние через Redis
// (GET/SUBSCRIBE). Пустой Type означает, что публикация отключена.
type ResultLogConfig struct {
	Type     string `yaml:"type"`     // Тип: redis (пустое = отключено)
	Address  string `yaml:"address"`  // Адрес Redis, например "127.0.0.1:6379"
	Name     string `yaml:"name"`     // Имя результата (ключ/канал)
	Password string `yaml:"password"` // Пароль Redis (опционально)
	DB       int    `yaml:"db"`       // Индекс базы данных Redis
	TTL      int    `yaml:"ttl"`      // TTL ключа в секундах (по умолчанию 3600)
}

// Validate проверяет корректность конфигурации публикации
func (c *ResultLogConfig) Validate() error {
	if c.Type == "" {
		return nil
	}
	if c.Type != "redis" {
		return fmt.Errorf("unsupported result_log type: %s (available: redis)", c.Type)
	}
	if c.Address == "" {
		return fmt.Errorf("result_log.address is required")
	}
	if c.Name == "" {
		return fmt.Errorf("result_log.name is required")
	}
	if c.TTL == 0 {
		c.TTL = 3600
	}
	return nil
}

// RedisPublisher публикует итог миграции в Redis:
//
//	SET  gamehub:migration:<name>:state  <JSON>  EX <ttl>  — для опроса (polling)
//	PUB  gamehub:migration:<name>                          — для подписки (pub/sub)
type RedisPublisher struct {
	client *redis.Client
	config ResultLogConfig
}

// NewRedisPublisher создает новый Redis publisher на основе конфигурации
func NewRedisPublisher(config ResultLogConfig) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// publishedState - состояние, публикуемое в Redis после запуска
type publishedState struct {
	ResultName    string    `json:"result_name"`
	Status        string    `json:"status"` // "success" | "failed"
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	DurationMs    int64     `json:"duration_ms"`
	TotalSource   int       `json:"total_source"`
	TotalMigrated int       `json:"total_migrated"`
	TotalSkipped  int       `json:"total_skipped"`
	TotalErrors   int       `json:"total_errors"`
}

// Publish публикует сводку. Вызывается независимо от итога запуска.
func (p *RedisPublisher) Publish(ctx context.Context, s *Summary) error {
	state := publishedState{
		ResultName:    p.config.Name,
		StartedAt:     s.StartedAt,
		FinishedAt:    s.FinishedAt,
		DurationMs:    s.DurationMs,
		TotalSource:   s.TotalSource,
		TotalMigrated: s.TotalMigrated,
		TotalSkipped:  s.TotalSkipped,
		TotalErrors:   s.TotalErrors,
	}
	if s.Success {
		state.Status = "success"
	} else {
		state.Status = "failed"
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	stateKey := fmt.Sprintf("gamehub:migration:%s:state", p.config.Name)
	eventChannel := fmt.Sprintf("gamehub:migration:%s", p.config.Name)
	ttl := time.Duration(p.config.TTL) * time.Second

	if err := p.client.Set(ctx, stateKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	if err := p.client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
