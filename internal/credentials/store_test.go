package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAPIKeyPrefersSavedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemini.key")
	if err := os.WriteFile(path, []byte(" saved-key-123456 \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, "env-key-abcdefgh")
	if got := store.APIKey(); got != "saved-key-123456" {
		t.Fatalf("APIKey = %q, want saved key", got)
	}
}

func TestAPIKeyFallsBackToEnv(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.key"), "env-key-abcdefgh")
	if got := store.APIKey(); got != "env-key-abcdefgh" {
		t.Fatalf("APIKey = %q", got)
	}
	if !store.Ready() {
		t.Fatal("Ready = false with env key")
	}
}

func TestAPIKeyIgnoresPlaceholder(t *testing.T) {
	store := NewStore("", "PASTE_YOUR_KEY_FROM AI Studio")
	if got := store.APIKey(); got != "" {
		t.Fatalf("APIKey = %q, want empty", got)
	}
	if store.Ready() {
		t.Fatal("Ready = true for placeholder")
	}
	if got := store.Masked(); got != "NONE" {
		t.Fatalf("Masked = %q", got)
	}
}

func TestSaveAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gemini.key")
	store := NewStore(path, "env-key-abcdefgh")

	if err := store.Save("  "); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("Save(blank) err = %v", err)
	}
	if err := store.Save("AIzaSyDUMMYKEY9876"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm = %o, want 600", perm)
	}
	if got := store.Masked(); got != "AIza....9876" {
		t.Fatalf("Masked = %q", got)
	}

	// a fresh store sees the persisted key
	if got := NewStore(path, "").APIKey(); got != "AIzaSyDUMMYKEY9876" {
		t.Fatalf("reloaded APIKey = %q", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("key file still exists: %v", err)
	}
	if got := store.APIKey(); got != "env-key-abcdefgh" {
		t.Fatalf("APIKey after Clear = %q, want env key", got)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                 "NONE",
		"short":            "****",
		"abcdefghijklmnop": "abcd....mnop",
	}
	for in, want := range tests {
		if got := Mask(in); got != want {
			t.Fatalf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
