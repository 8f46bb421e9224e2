package transform

import "time"

var validArticleStatuses = []string{"published", "draft"}

// Article - нормализованная запись таблицы articles.
// Дубликаты определяются только по идентификатору: заголовки статей
// не уникальны и бизнес-ключом служить не могут.
type Article struct {
	ID         string
	Title      string
	Content    string
	Author     string
	AuthorID   *string
	AuthorType string
	Category   string
	BoardID    *string
	TopicID    *string
	Tags       []string
	Likes      int
	Views      int
	Comments   int
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Fingerprint - контрольная сумма содержимого записи
func (a *Article) Fingerprint() string {
	return Fingerprint(a.Title, a.Content, a.Author, a.Category, a.Status)
}

// TransformArticle валидирует и нормализует сырую запись статьи.
// Контент проходит через SanitizeContent: вырезаются <script>-блоки,
// остальная разметка сохраняется как есть.
func TransformArticle(raw map[string]any) (*Article, Issues) {
	var iss Issues

	if raw == nil {
		iss.Errorf("article data is empty")
		return nil, iss
	}

	title, ok := stringField(raw, "title")
	if !ok || SanitizeString(title) == "" {
		iss.Errorf("invalid article title")
	}

	content, ok := stringField(raw, "content")
	if !ok || content == "" {
		iss.Errorf("invalid article content")
	} else if len(content) < 10 {
		iss.Warnf("article content is too short")
	}

	author, ok := stringField(raw, "author")
	if !ok || SanitizeString(author) == "" {
		iss.Errorf("invalid article author")
	}

	category, ok := stringField(raw, "category")
	if !ok || SanitizeString(category) == "" {
		iss.Errorf("invalid article category")
	}

	if !iss.OK() {
		return nil, iss
	}

	id, _ := stringField(raw, "id")
	if id == "" {
		id = GenerateID("article")
	}

	a := &Article{
		ID:         id,
		Title:      SanitizeString(title),
		Content:    SanitizeContent(content),
		Author:     SanitizeString(author),
		AuthorID:   optionalID(raw, "authorId"),
		AuthorType: NormalizeEnum(raw["authorType"], validUserTypes, "regular"),
		Category:   SanitizeString(category),
		BoardID:    optionalID(raw, "boardId"),
		TopicID:    optionalID(raw, "topicId"),
		Tags:       NormalizeTags(raw["tags"]),
		Likes:      NormalizeNumber(raw["likes"], 0),
		Views:      NormalizeNumber(raw["views"], 0),
		Comments:   NormalizeNumber(raw["comments"], 0),
		Status:     NormalizeEnum(raw["status"], validArticleStatuses, "published"),
		CreatedAt:  NormalizeTimestamp(raw["createdAt"]),
		UpdatedAt:  NormalizeTimestamp(raw["updatedAt"]),
	}

	if a.AuthorID == nil {
		iss.Warnf("article %q has no author reference", a.Title)
	}
	if a.BoardID == nil {
		iss.Warnf("article %q has no board reference", a.Title)
	}
	if a.TopicID == nil {
		iss.Warnf("article %q has no topic reference", a.Title)
	}

	return a, iss
}
