// Package source загружает экспорт клиентского хранилища (localStorage)
// из JSON-файла. Поддерживаются снапшоты, сжатые zstd (.zst).
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Ключи клиентского хранилища в экспорте
const (
	KeyUsers        = "gamehub_users"
	KeySimpleUsers  = "simple_users"
	KeyBoards       = "gamehub_boards"
	KeyTopics       = "gamehub_topics"
	KeyArticles     = "gamehub_articles"
	KeySystemConfig = "system_config"
)

// Snapshot - разобранный экспорт клиентского хранилища.
// Users содержит объединение gamehub_users и simple_users
// в исходном порядке.
type Snapshot struct {
	Users        []map[string]any
	Boards       []map[string]any
	Topics       []map[string]any
	Articles     []map[string]any
	SystemConfig map[string]any
}

// Load читает снапшот из файла. Файлы с суффиксом .zst прозрачно
// распаковываются. Отсутствующие ключи дают пустые коллекции,
// а не ошибку: частичный экспорт - нормальная ситуация.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
		}
	}

	return Parse(data)
}

// Parse разбирает JSON-экспорт. Значение каждого ключа может быть
// либо уже разобранной структурой, либо строкой с вложенным JSON -
// localStorage хранит строки, и дампы встречаются в обоих видах.
func Parse(data []byte) (*Snapshot, error) {
	var export map[string]json.RawMessage
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("invalid snapshot format: %w", err)
	}

	snap := &Snapshot{}

	users, err := parseList(export, KeyUsers)
	if err != nil {
		return nil, err
	}
	simpleUsers, err := parseList(export, KeySimpleUsers)
	if err != nil {
		return nil, err
	}
	snap.Users = append(users, simpleUsers...)

	if snap.Boards, err = parseList(export, KeyBoards); err != nil {
		return nil, err
	}
	if snap.Topics, err = parseList(export, KeyTopics); err != nil {
		return nil, err
	}
	if snap.Articles, err = parseList(export, KeyArticles); err != nil {
		return nil, err
	}
	if snap.SystemConfig, err = parseObject(export, KeySystemConfig); err != nil {
		return nil, err
	}

	return snap, nil
}

// Collection возвращает коллекцию записей для целевой таблицы
func (s *Snapshot) Collection(table string) []map[string]any {
	switch table {
	case "users":
		return s.Users
	case "boards":
		return s.Boards
	case "topics":
		return s.Topics
	case "articles":
		return s.Articles
	case "system_config":
		if s.SystemConfig == nil {
			return nil
		}
		return []map[string]any{s.SystemConfig}
	}
	return nil
}

func parseList(export map[string]json.RawMessage, key string) ([]map[string]any, error) {
	raw, ok := export[key]
	if !ok {
		return []map[string]any{}, nil
	}

	raw, err := unwrapString(raw)
	if err != nil {
		return nil, fmt.Errorf("key %s: %w", key, err)
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err != nil {
		// Не-массив в ключе коллекции трактуется как пустая коллекция,
		// как в исходном экстракторе
		return []map[string]any{}, nil
	}
	return list, nil
}

func parseObject(export map[string]json.RawMessage, key string) (map[string]any, error) {
	raw, ok := export[key]
	if !ok {
		return nil, nil
	}

	raw, err := unwrapString(raw)
	if err != nil {
		return nil, fmt.Errorf("key %s: %w", key, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil
	}
	return obj, nil
}

// unwrapString разворачивает значение-строку во вложенный JSON
func unwrapString(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, `"`) {
		return raw, nil
	}

	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return nil, fmt.Errorf("malformed string value: %w", err)
	}
	return json.RawMessage(inner), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
