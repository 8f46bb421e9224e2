package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const sampleExport = `{
	"gamehub_users": [{"username": "alice"}, {"username": "bob"}],
	"simple_users": [{"username": "carol"}],
	"gamehub_boards": [{"name": "Action"}],
	"gamehub_topics": [{"name": "Speedruns"}],
	"gamehub_articles": [{"title": "First"}],
	"system_config": {"allowGuestAnonymousPost": true}
}`

func TestParseFullExport(t *testing.T) {
	snap, err := Parse([]byte(sampleExport))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(snap.Users) != 3 {
		t.Errorf("expected 3 merged users, got %d", len(snap.Users))
	}
	if snap.Users[2]["username"] != "carol" {
		t.Error("simple_users must be appended after gamehub_users")
	}
	if len(snap.Boards) != 1 || len(snap.Topics) != 1 || len(snap.Articles) != 1 {
		t.Errorf("collections not parsed: %d/%d/%d", len(snap.Boards), len(snap.Topics), len(snap.Articles))
	}
	if snap.SystemConfig == nil || snap.SystemConfig["allowGuestAnonymousPost"] != true {
		t.Errorf("system config not parsed: %v", snap.SystemConfig)
	}
}

func TestParseStringWrappedValues(t *testing.T) {
	// localStorage хранит строки: дамп может содержать вложенный JSON
	export := `{
		"gamehub_users": "[{\"username\": \"alice\"}]",
		"system_config": "{\"allowGuestAnonymousPost\": false}"
	}`

	snap, err := Parse([]byte(export))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(snap.Users) != 1 || snap.Users[0]["username"] != "alice" {
		t.Errorf("string-wrapped users not parsed: %v", snap.Users)
	}
	if snap.SystemConfig == nil || snap.SystemConfig["allowGuestAnonymousPost"] != false {
		t.Errorf("string-wrapped config not parsed: %v", snap.SystemConfig)
	}
}

func TestParsePartialExport(t *testing.T) {
	snap, err := Parse([]byte(`{"gamehub_boards": [{"name": "Only"}]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(snap.Boards) != 1 {
		t.Errorf("expected 1 board, got %d", len(snap.Boards))
	}
	if snap.Users == nil || len(snap.Users) != 0 {
		t.Errorf("missing keys must give empty non-nil collections, got %v", snap.Users)
	}
	if snap.SystemConfig != nil {
		t.Error("missing system_config must stay nil")
	}
}

func TestParseMalformedCollection(t *testing.T) {
	// Не-массив в ключе коллекции не должен ронять загрузку
	snap, err := Parse([]byte(`{"gamehub_users": 42}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(snap.Users) != 0 {
		t.Errorf("expected empty users, got %v", snap.Users)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Users) != 3 {
		t.Errorf("expected 3 users, got %d", len(snap.Users))
	}
}

func TestLoadZstdFile(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	compressed := enc.EncodeAll([]byte(sampleExport), nil)
	enc.Close()

	path := filepath.Join(t.TempDir(), "export.json.zst")
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		t.Fatal(err)
	}

	snap, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Boards) != 1 {
		t.Errorf("expected 1 board from compressed snapshot, got %d", len(snap.Boards))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/export.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCollection(t *testing.T) {
	snap, _ := Parse([]byte(sampleExport))

	if got := snap.Collection("users"); len(got) != 3 {
		t.Errorf("Collection(users) = %d records", len(got))
	}
	if got := snap.Collection("system_config"); len(got) != 1 {
		t.Errorf("Collection(system_config) = %d records, want 1", len(got))
	}
	if got := snap.Collection("unknown"); got != nil {
		t.Errorf("unknown table must give nil, got %v", got)
	}

	empty, _ := Parse([]byte(`{}`))
	if got := empty.Collection("system_config"); got != nil {
		t.Errorf("absent system_config must give nil collection, got %v", got)
	}
}
