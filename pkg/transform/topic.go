package transform

import "time"

const (
	defaultTopicIcon  = "🌟"
	defaultTopicColor = "from-yellow-500 to-orange-500"
)

// Topic - нормализованная запись таблицы topics.
// BoardID - необязательная ссылка на board: если она задана, на момент
// вставки board обязан существовать (проверяет оркестратор, не transform).
type Topic struct {
	ID           string
	Name         string
	Description  string
	BoardID      *string
	Icon         string
	Color        string
	SortOrder    int
	IsActive     bool
	ArticleCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NaturalKey возвращает бизнес-ключ для обнаружения дубликатов
func (t *Topic) NaturalKey() string { return t.Name }

// Fingerprint - контрольная сумма содержимого записи
func (t *Topic) Fingerprint() string {
	boardID := ""
	if t.BoardID != nil {
		boardID = *t.BoardID
	}
	return Fingerprint(t.Name, t.Description, boardID, t.Icon, t.Color)
}

// TransformTopic валидирует и нормализует сырую запись topic
func TransformTopic(raw map[string]any) (*Topic, Issues) {
	var iss Issues

	if raw == nil {
		iss.Errorf("topic data is empty")
		return nil, iss
	}

	name, ok := stringField(raw, "name")
	if !ok || SanitizeString(name) == "" {
		iss.Errorf("invalid topic name")
		return nil, iss
	}

	id, _ := stringField(raw, "id")
	if id == "" {
		id = GenerateID("topic")
	}

	description, _ := stringField(raw, "description")
	icon, hasIcon := stringField(raw, "icon")
	if !hasIcon || icon == "" {
		icon = defaultTopicIcon
	}
	color, hasColor := stringField(raw, "color")
	if !hasColor || color == "" {
		color = defaultTopicColor
	}

	boardID := optionalID(raw, "boardId")
	if boardID == nil {
		iss.Warnf("topic %q has no board reference", SanitizeString(name))
	}

	return &Topic{
		ID:           id,
		Name:         SanitizeString(name),
		Description:  SanitizeString(description),
		BoardID:      boardID,
		Icon:         SanitizeString(icon),
		Color:        SanitizeString(color),
		SortOrder:    NormalizeNumber(raw["order"], 0),
		IsActive:     NormalizeBool(raw["isActive"]),
		ArticleCount: NormalizeNumber(raw["articleCount"], 0),
		CreatedAt:    NormalizeTimestamp(raw["createdAt"]),
		UpdatedAt:    NormalizeTimestamp(raw["updatedAt"]),
	}, iss
}
