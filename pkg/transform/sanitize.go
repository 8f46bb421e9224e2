package transform

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// scriptRe удаляет блоки <script>...</script> из контента статей.
// Это точечная защита от сохранённой разметки с исполняемым кодом,
// НЕ полноценный HTML-санитайзер (известное ограничение).
var scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)

// SanitizeString очищает строковое поле: обрезает пробелы и удаляет
// литеральные символы '<' и '>'. Узкая мера против XSS, не общая
// стратегия экранирования.
func SanitizeString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "<", "")
	return strings.ReplaceAll(s, ">", "")
}

// SanitizeContent очищает контент статьи: вырезает <script>-блоки,
// остальную разметку сохраняет.
func SanitizeContent(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(scriptRe.ReplaceAllString(s, ""))
}

// timeFormats - форматы, в которых экспорт может содержать даты
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp приводит значение произвольного типа к времени UTC.
// Числовые значения трактуются как миллисекунды Unix (формат Date.now()
// в JS-экспорте). При отсутствии значения или ошибке разбора
// подставляется текущее время.
func NormalizeTimestamp(v any) time.Time {
	if t, ok := parseTimestamp(v); ok {
		return t
	}
	return time.Now().UTC()
}

// NormalizeNullableTimestamp - как NormalizeTimestamp, но отсутствующее
// или нечитаемое значение даёт nil (для полей вида last_login_at)
func NormalizeNullableTimestamp(v any) *time.Time {
	if t, ok := parseTimestamp(v); ok {
		return &t
	}
	return nil
}

func parseTimestamp(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), true
	case float64:
		return time.UnixMilli(int64(val)).UTC(), true
	case int64:
		return time.UnixMilli(val).UTC(), true
	case int:
		return time.UnixMilli(int64(val)).UTC(), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		for _, f := range timeFormats {
			if t, err := time.Parse(f, s); err == nil {
				return t.UTC(), true
			}
		}
		// Числовая строка с миллисекундами
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

// NormalizeNumber разбирает числовое поле и ограничивает его снизу нулём.
// При ошибке разбора возвращается значение по умолчанию.
func NormalizeNumber(v any, def int) int {
	n := def
	switch val := v.(type) {
	case float64:
		n = int(val)
	case int:
		n = val
	case int64:
		n = int(val)
	case bool:
		// bool в числовом поле - мусор, оставляем default
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return maxInt(def, 0)
		}
		n = parsed
	}
	return maxInt(n, 0)
}

// NormalizeBool приводит значение к bool по правилам JS truthiness
// для типов, встречающихся в JSON-экспорте
func NormalizeBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != "" && val != "false" && val != "0"
	default:
		return false
	}
}

// NormalizeTags приводит поле тегов к списку непустых строк.
// Всё, что не является массивом строк, даёт пустой список.
func NormalizeTags(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = SanitizeString(s)
		if s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

// NormalizeEnum приводит значение к одному из допустимых, иначе default
func NormalizeEnum(v any, allowed []string, def string) string {
	s, ok := v.(string)
	if !ok {
		return def
	}
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return def
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateID формирует идентификатор записи, у которой его не было
// в источнике: {type}_{unix_millis}_{9 случайных base36}.
// Для уже мигрированной записи идентификатор никогда не генерируется заново.
func GenerateID(entityType string) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("%s_%d_%s", entityType, time.Now().UnixMilli(), suffix)
}

// stringField извлекает строковое поле из сырой записи.
// Второе значение - присутствовало ли поле строкового типа.
func stringField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// optionalID извлекает необязательный идентификатор (nullable foreign key)
func optionalID(raw map[string]any, key string) *string {
	s, ok := stringField(raw, key)
	if !ok {
		return nil
	}
	s = SanitizeString(s)
	if s == "" {
		return nil
	}
	return &s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
