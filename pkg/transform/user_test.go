package transform

import (
	"strings"
	"testing"
	"time"
)

func validUserRaw() map[string]any {
	return map[string]any{
		"id":        "user_1700000000000_abc123def",
		"username":  "alice",
		"email":     "alice@example.com",
		"password":  "secret123",
		"role":      "admin",
		"userType":  "admin",
		"isActive":  true,
		"createdAt": "2024-01-10T08:00:00Z",
		"updatedAt": "2024-01-12T09:00:00Z",
	}
}

func TestTransformUserValid(t *testing.T) {
	u, iss := TransformUser(validUserRaw())
	if !iss.OK() {
		t.Fatalf("unexpected errors: %v", iss.Errors)
	}
	if len(iss.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", iss.Warnings)
	}

	if u.ID != "user_1700000000000_abc123def" {
		t.Errorf("source id must be preserved, got %q", u.ID)
	}
	if u.Username != "alice" || u.Email != "alice@example.com" {
		t.Errorf("unexpected user fields: %+v", u)
	}
	if u.Role != "admin" || u.UserType != "admin" {
		t.Errorf("role/userType not normalized: %q/%q", u.Role, u.UserType)
	}
	if !u.IsActive {
		t.Error("isActive not carried over")
	}
	want := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	if !u.CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v, want %v", u.CreatedAt, want)
	}
	if u.LastLoginAt != nil {
		t.Error("absent lastLoginAt should stay nil")
	}
}

func TestTransformUserErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing username", func(r map[string]any) { delete(r, "username") }},
		{"short username", func(r map[string]any) { r["username"] = "ab" }},
		{"short multibyte username", func(r map[string]any) { r["username"] = "你好" }},
		{"missing password", func(r map[string]any) { delete(r, "password") }},
		{"empty password", func(r map[string]any) { r["password"] = "" }},
		{"non-string username", func(r map[string]any) { r["username"] = 42 }},
		{"nil record", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]any
			if tt.mutate != nil {
				raw = validUserRaw()
				tt.mutate(raw)
			}
			u, iss := TransformUser(raw)
			if iss.OK() {
				t.Fatal("expected errors")
			}
			if u != nil {
				t.Error("record with errors must not be produced")
			}
		})
	}
}

func TestTransformUserWarnings(t *testing.T) {
	// Короткий пароль: запись проходит, но с предупреждением
	raw := validUserRaw()
	raw["password"] = "12345"
	u, iss := TransformUser(raw)
	if !iss.OK() {
		t.Fatalf("short password must not block migration: %v", iss.Errors)
	}
	if u == nil {
		t.Fatal("expected a record")
	}
	if !hasWarning(iss, "password length insufficient") {
		t.Errorf("expected password warning, got %v", iss.Warnings)
	}

	// Некорректный email: предупреждение, запись проходит
	raw = validUserRaw()
	raw["email"] = "not-an-email"
	u, iss = TransformUser(raw)
	if !iss.OK() || u == nil {
		t.Fatalf("bad email must not block migration: %v", iss.Errors)
	}
	if !hasWarning(iss, "invalid email format") {
		t.Errorf("expected email warning, got %v", iss.Warnings)
	}
	if u.Email != "not-an-email" {
		t.Errorf("email should be kept as-is, got %q", u.Email)
	}

	// Пустой email
	raw = validUserRaw()
	delete(raw, "email")
	_, iss = TransformUser(raw)
	if !hasWarning(iss, "user email is empty") {
		t.Errorf("expected empty email warning, got %v", iss.Warnings)
	}
}

func TestTransformUserDefaults(t *testing.T) {
	raw := map[string]any{
		"username": "bob",
		"password": "supersecret",
	}
	u, iss := TransformUser(raw)
	if !iss.OK() {
		t.Fatalf("unexpected errors: %v", iss.Errors)
	}

	if u.ID == "" {
		t.Error("missing id must be generated")
	}
	if u.Role != "user" {
		t.Errorf("default role should be user, got %q", u.Role)
	}
	if u.UserType != "regular" {
		t.Errorf("default userType should be regular, got %q", u.UserType)
	}
	if u.CreatedAt.IsZero() {
		t.Error("missing createdAt should fall back to now")
	}
}

func TestTransformUserUnknownRole(t *testing.T) {
	raw := validUserRaw()
	raw["role"] = "root"
	u, _ := TransformUser(raw)
	if u.Role != "user" {
		t.Errorf("unknown role must collapse to default, got %q", u.Role)
	}
}

func TestUserNaturalKeyAndFingerprint(t *testing.T) {
	u1, _ := TransformUser(validUserRaw())
	if u1.NaturalKey() != "alice" {
		t.Errorf("natural key should be username, got %q", u1.NaturalKey())
	}

	raw := validUserRaw()
	raw["email"] = "changed@example.com"
	u2, _ := TransformUser(raw)

	if u1.NaturalKey() != u2.NaturalKey() {
		t.Error("same username must give same natural key")
	}
	if u1.Fingerprint() == u2.Fingerprint() {
		t.Error("changed content must change the fingerprint")
	}
}

func hasWarning(iss Issues, substr string) bool {
	for _, w := range iss.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
