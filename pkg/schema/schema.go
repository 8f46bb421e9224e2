// Package schema содержит DDL целевых таблиц и операции их создания.
// Уникальные индексы по бизнес-ключам (users.username, boards.name,
// topics.name, system_config.config_key) - страховка от дубликатов
// на уровне БД, дополняющая проверки мигратора.
package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/gamehub-migrate/pkg/db"
)

// Tables - целевые таблицы в порядке зависимостей
var Tables = []string{"users", "boards", "topics", "articles", "system_config", "migration_log"}

const ddlMySQL = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	email VARCHAR(255) NOT NULL DEFAULT '',
	password VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	user_type VARCHAR(20) NOT NULL DEFAULT 'regular',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_guest BOOLEAN NOT NULL DEFAULT FALSE,
	guest_id VARCHAR(100) NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	last_login_at DATETIME NULL,
	UNIQUE KEY uq_users_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS boards (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	description TEXT,
	icon VARCHAR(50) NOT NULL DEFAULT '',
	color VARCHAR(100) NOT NULL DEFAULT '',
	sort_order INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	topic_count INT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uq_boards_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS topics (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	description TEXT,
	board_id VARCHAR(100) NULL,
	icon VARCHAR(50) NOT NULL DEFAULT '',
	color VARCHAR(100) NOT NULL DEFAULT '',
	sort_order INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	article_count INT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	UNIQUE KEY uq_topics_name (name),
	KEY idx_topics_board_id (board_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS articles (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	content LONGTEXT NOT NULL,
	author VARCHAR(50) NOT NULL,
	author_id VARCHAR(100) NULL,
	author_type VARCHAR(20) NOT NULL DEFAULT 'regular',
	category VARCHAR(100) NOT NULL,
	board_id VARCHAR(100) NULL,
	topic_id VARCHAR(100) NULL,
	tags TEXT,
	likes INT NOT NULL DEFAULT 0,
	views INT NOT NULL DEFAULT 0,
	comments INT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'published',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	KEY idx_articles_author_id (author_id),
	KEY idx_articles_board_id (board_id),
	KEY idx_articles_topic_id (topic_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS system_config (
	id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	config_key VARCHAR(100) NOT NULL,
	config_value TEXT,
	config_type VARCHAR(20) NOT NULL DEFAULT 'string',
	description TEXT,
	updated_by VARCHAR(50) NOT NULL DEFAULT 'system',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uq_system_config_key (config_key)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

CREATE TABLE IF NOT EXISTS migration_log (
	id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	table_name VARCHAR(50) NOT NULL,
	migration_type VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL,
	source_data_count INT NOT NULL DEFAULT 0,
	migrated_data_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at DATETIME NOT NULL,
	completed_at DATETIME NULL,
	KEY idx_migration_log_table (table_name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`

const ddlSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT NOT NULL PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	user_type TEXT NOT NULL DEFAULT 'regular',
	is_active INTEGER NOT NULL DEFAULT 1,
	is_guest INTEGER NOT NULL DEFAULT 0,
	guest_id TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	last_login_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (username);

CREATE TABLE IF NOT EXISTS boards (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	icon TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	sort_order INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	topic_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_boards_name ON boards (name);

CREATE TABLE IF NOT EXISTS topics (
	id TEXT NOT NULL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	board_id TEXT,
	icon TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	sort_order INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	article_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_topics_name ON topics (name);
CREATE INDEX IF NOT EXISTS idx_topics_board_id ON topics (board_id);

CREATE TABLE IF NOT EXISTS articles (
	id TEXT NOT NULL PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author TEXT NOT NULL,
	author_id TEXT,
	author_type TEXT NOT NULL DEFAULT 'regular',
	category TEXT NOT NULL,
	board_id TEXT,
	topic_id TEXT,
	tags TEXT,
	likes INTEGER NOT NULL DEFAULT 0,
	views INTEGER NOT NULL DEFAULT 0,
	comments INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'published',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles (author_id);
CREATE INDEX IF NOT EXISTS idx_articles_board_id ON articles (board_id);
CREATE INDEX IF NOT EXISTS idx_articles_topic_id ON articles (topic_id);

CREATE TABLE IF NOT EXISTS system_config (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	config_key TEXT NOT NULL,
	config_value TEXT,
	config_type TEXT NOT NULL DEFAULT 'string',
	description TEXT,
	updated_by TEXT NOT NULL DEFAULT 'system',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_system_config_key ON system_config (config_key);

CREATE TABLE IF NOT EXISTS migration_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	table_name TEXT NOT NULL,
	migration_type TEXT NOT NULL,
	status TEXT NOT NULL,
	source_data_count INTEGER NOT NULL DEFAULT 0,
	migrated_data_count INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at DATETIME NOT NULL,
	completed_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_migration_log_table ON migration_log (table_name);
`

const ddlPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	username VARCHAR(50) NOT NULL,
	email VARCHAR(255) NOT NULL DEFAULT '',
	password VARCHAR(255) NOT NULL,
	role VARCHAR(20) NOT NULL DEFAULT 'user',
	user_type VARCHAR(20) NOT NULL DEFAULT 'regular',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	is_guest BOOLEAN NOT NULL DEFAULT FALSE,
	guest_id VARCHAR(100),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	last_login_at TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_users_username ON users (username);

CREATE TABLE IF NOT EXISTS boards (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	description TEXT,
	icon VARCHAR(50) NOT NULL DEFAULT '',
	color VARCHAR(100) NOT NULL DEFAULT '',
	sort_order INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	topic_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_boards_name ON boards (name);

CREATE TABLE IF NOT EXISTS topics (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	description TEXT,
	board_id VARCHAR(100),
	icon VARCHAR(50) NOT NULL DEFAULT '',
	color VARCHAR(100) NOT NULL DEFAULT '',
	sort_order INT NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	article_count INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_topics_name ON topics (name);
CREATE INDEX IF NOT EXISTS idx_topics_board_id ON topics (board_id);

CREATE TABLE IF NOT EXISTS articles (
	id VARCHAR(100) NOT NULL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	content TEXT NOT NULL,
	author VARCHAR(50) NOT NULL,
	author_id VARCHAR(100),
	author_type VARCHAR(20) NOT NULL DEFAULT 'regular',
	category VARCHAR(100) NOT NULL,
	board_id VARCHAR(100),
	topic_id VARCHAR(100),
	tags TEXT,
	likes INT NOT NULL DEFAULT 0,
	views INT NOT NULL DEFAULT 0,
	comments INT NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'published',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles (author_id);
CREATE INDEX IF NOT EXISTS idx_articles_board_id ON articles (board_id);
CREATE INDEX IF NOT EXISTS idx_articles_topic_id ON articles (topic_id);

CREATE TABLE IF NOT EXISTS system_config (
	id SERIAL PRIMARY KEY,
	config_key VARCHAR(100) NOT NULL,
	config_value TEXT,
	config_type VARCHAR(20) NOT NULL DEFAULT 'string',
	description TEXT,
	updated_by VARCHAR(50) NOT NULL DEFAULT 'system',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_system_config_key ON system_config (config_key);

CREATE TABLE IF NOT EXISTS migration_log (
	id SERIAL PRIMARY KEY,
	table_name VARCHAR(50) NOT NULL,
	migration_type VARCHAR(20) NOT NULL,
	status VARCHAR(20) NOT NULL,
	source_data_count INT NOT NULL DEFAULT 0,
	migrated_data_count INT NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_migration_log_table ON migration_log (table_name);
`

// Script возвращает DDL-скрипт для указанного диалекта
func Script(dialect db.Dialect) (string, error) {
	switch dialect.Name() {
	case "mysql":
		return ddlMySQL, nil
	case "sqlite":
		return ddlSQLite, nil
	case "postgres":
		return ddlPostgres, nil
	default:
		return "", fmt.Errorf("no schema script for dialect %s", dialect.Name())
	}
}

// Create создаёт целевые таблицы и фиксирует факт создания
// строкой типа create в migration_log
func Create(ctx context.Context, mgr *db.Manager) error {
	script, err := Script(mgr.Dialect())
	if err != nil {
		return err
	}

	if err := mgr.ExecuteSQLScript(ctx, script); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	now := time.Now().UTC()
	_, err = mgr.Query(ctx, `
		INSERT INTO migration_log
		(table_name, migration_type, status, source_data_count, migrated_data_count, started_at, completed_at)
		VALUES (?, ?, ?, 0, 0, ?, ?)`,
		"schema", "create", "completed", now, now)
	if err != nil {
		return fmt.Errorf("failed to record schema creation: %w", err)
	}
	return nil
}

// Drop удаляет целевые таблицы (используется в тестах).
// Порядок обратный зависимостям.
func Drop(ctx context.Context, mgr *db.Manager) error {
	for i := len(Tables) - 1; i >= 0; i-- {
		quoted := mgr.Dialect().QuoteIdentifier(Tables[i])
		if _, err := mgr.Query(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", Tables[i], err)
		}
	}
	return nil
}
