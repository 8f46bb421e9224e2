package transform

import "time"

// Значения по умолчанию для оформления board из исходного приложения
const (
	defaultBoardIcon  = "🎮"
	defaultBoardColor = "from-blue-600 to-purple-600"
)

// Board - нормализованная запись таблицы boards.
// TopicCount - денормализованный счётчик: производные данные,
// его точность проверяется health-check'ом, но не влияет на миграцию.
type Board struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
	SortOrder   int
	IsActive    bool
	TopicCount  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NaturalKey возвращает бизнес-ключ для обнаружения дубликатов
func (b *Board) NaturalKey() string { return b.Name }

// Fingerprint - контрольная сумма содержимого записи
func (b *Board) Fingerprint() string {
	return Fingerprint(b.Name, b.Description, b.Icon, b.Color)
}

// TransformBoard валидирует и нормализует сырую запись board
func TransformBoard(raw map[string]any) (*Board, Issues) {
	var iss Issues

	if raw == nil {
		iss.Errorf("board data is empty")
		return nil, iss
	}

	name, ok := stringField(raw, "name")
	if !ok || SanitizeString(name) == "" {
		iss.Errorf("invalid board name")
		return nil, iss
	}

	id, _ := stringField(raw, "id")
	if id == "" {
		id = GenerateID("board")
	}

	description, _ := stringField(raw, "description")
	icon, hasIcon := stringField(raw, "icon")
	if !hasIcon || icon == "" {
		icon = defaultBoardIcon
	}
	color, hasColor := stringField(raw, "color")
	if !hasColor || color == "" {
		color = defaultBoardColor
	}

	return &Board{
		ID:          id,
		Name:        SanitizeString(name),
		Description: SanitizeString(description),
		Icon:        SanitizeString(icon),
		Color:       SanitizeString(color),
		SortOrder:   NormalizeNumber(raw["order"], 0),
		IsActive:    NormalizeBool(raw["isActive"]),
		TopicCount:  NormalizeNumber(raw["topicCount"], 0),
		CreatedAt:   NormalizeTimestamp(raw["createdAt"]),
		UpdatedAt:   NormalizeTimestamp(raw["updatedAt"]),
	}, iss
}
