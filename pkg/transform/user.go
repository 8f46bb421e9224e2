package transform

import (
	"regexp"
	"time"
	"unicode/utf8"
)

// emailRe - намеренно либеральная проверка формата email
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Допустимые значения закрытых множеств ролей и типов пользователей
var (
	validRoles     = []string{"user", "admin", "superAdmin"}
	validUserTypes = []string{"guest", "regular", "admin", "superAdmin"}
)

// User - нормализованная запись таблицы users
type User struct {
	ID          string
	Username    string
	Email       string
	Password    string
	Role        string
	UserType    string
	IsActive    bool
	IsGuest     bool
	GuestID     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// NaturalKey возвращает бизнес-ключ для обнаружения дубликатов
func (u *User) NaturalKey() string { return u.Username }

// Fingerprint - контрольная сумма содержимого записи
func (u *User) Fingerprint() string {
	return Fingerprint(u.Username, u.Email, u.Password, u.Role, u.UserType)
}

// TransformUser валидирует и нормализует сырую запись пользователя.
// При наличии ошибок в Issues запись мигрировать нельзя.
func TransformUser(raw map[string]any) (*User, Issues) {
	var iss Issues

	if raw == nil {
		iss.Errorf("user data is empty")
		return nil, iss
	}

	username, ok := stringField(raw, "username")
	if !ok {
		iss.Errorf("invalid username")
	} else if utf8.RuneCountInString(username) < 3 {
		iss.Errorf("username too short (min 3 characters)")
	}

	password, ok := stringField(raw, "password")
	if !ok || password == "" {
		iss.Errorf("invalid password")
	} else if len(password) < 6 {
		iss.Warnf("password length insufficient")
	}

	email, _ := stringField(raw, "email")
	if email != "" && !emailRe.MatchString(email) {
		iss.Warnf("invalid email format: %s", email)
	}

	if !iss.OK() {
		return nil, iss
	}

	id, _ := stringField(raw, "id")
	if id == "" {
		id = GenerateID("user")
	}

	u := &User{
		ID:          id,
		Username:    SanitizeString(username),
		Email:       SanitizeString(email),
		Password:    SanitizeString(password),
		Role:        NormalizeEnum(raw["role"], validRoles, "user"),
		UserType:    NormalizeEnum(raw["userType"], validUserTypes, "regular"),
		IsActive:    NormalizeBool(raw["isActive"]),
		IsGuest:     NormalizeBool(raw["isGuest"]),
		GuestID:     optionalID(raw, "guestId"),
		CreatedAt:   NormalizeTimestamp(raw["createdAt"]),
		UpdatedAt:   NormalizeTimestamp(raw["updatedAt"]),
		LastLoginAt: NormalizeNullableTimestamp(raw["lastLoginAt"]),
	}

	if u.Email == "" {
		iss.Warnf("user email is empty")
	}

	return u, iss
}
