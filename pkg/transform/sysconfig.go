package transform

import (
	"fmt"
	"strconv"
)

// ConfigKeyGuestPost - единственный известный ключ системной конфигурации
const ConfigKeyGuestPost = "allow_guest_anonymous_post"

// SystemConfigEntry - нормализованная запись таблицы system_config.
// Значение хранится строкой вместе с явным тегом типа.
type SystemConfigEntry struct {
	ConfigKey   string
	ConfigValue string
	ConfigType  string // boolean | number | string
	Description string
	UpdatedBy   string
}

// NaturalKey возвращает бизнес-ключ для обнаружения дубликатов
func (c *SystemConfigEntry) NaturalKey() string { return c.ConfigKey }

// Fingerprint - контрольная сумма содержимого записи
func (c *SystemConfigEntry) Fingerprint() string {
	return Fingerprint(c.ConfigKey, c.ConfigValue, c.ConfigType)
}

// TransformSystemConfig нормализует объект системной конфигурации.
// Значение приводится к объявленному типу и сериализуется строкой.
func TransformSystemConfig(raw map[string]any) (*SystemConfigEntry, Issues) {
	var iss Issues

	if raw == nil {
		iss.Errorf("system config data is empty")
		return nil, iss
	}

	updatedBy, _ := stringField(raw, "updatedBy")
	if updatedBy == "" {
		updatedBy = "system"
	}

	return &SystemConfigEntry{
		ConfigKey:   ConfigKeyGuestPost,
		ConfigValue: coerceConfigValue(raw["allowGuestAnonymousPost"], "boolean"),
		ConfigType:  "boolean",
		Description: "whether guests may post articles anonymously",
		UpdatedBy:   SanitizeString(updatedBy),
	}, iss
}

// coerceConfigValue приводит значение к объявленному типу конфигурации
// и возвращает строковое представление для хранения
func coerceConfigValue(v any, configType string) string {
	switch configType {
	case "boolean":
		return strconv.FormatBool(NormalizeBool(v))
	case "number":
		return strconv.Itoa(NormalizeNumber(v, 0))
	default:
		if s, ok := v.(string); ok {
			return SanitizeString(s)
		}
		if v == nil {
			return ""
		}
		return SanitizeString(fmt.Sprintf("%v", v))
	}
}
