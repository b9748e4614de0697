package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ErrEmptyKey = errors.New("gemini api key is required")

// envPlaceholder marks template values copied from the AI Studio setup page.
const envPlaceholder = "AI Studio"

// Store resolves the Gemini API key: the persisted key file first, then the
// key supplied by the environment.
type Store struct {
	path   string
	envKey string

	mu     sync.Mutex
	loaded bool
	saved  string
}

func NewStore(path, envKey string) *Store {
	return &Store{
		path:   strings.TrimSpace(path),
		envKey: strings.TrimSpace(envKey),
	}
}

// APIKey returns the active key, or "" when none is configured.
func (s *Store) APIKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if saved := s.loadLocked(); saved != "" {
		return saved
	}
	if s.envKey == "" || strings.Contains(s.envKey, envPlaceholder) {
		return ""
	}
	return s.envKey
}

func (s *Store) Ready() bool {
	return s.APIKey() != ""
}

// Masked shows the first and last four characters, or NONE.
func (s *Store) Masked() string {
	return Mask(s.APIKey())
}

func (s *Store) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("create key dir: %w", err)
			}
		}
		if err := os.WriteFile(s.path, []byte(key+"\n"), 0o600); err != nil {
			return fmt.Errorf("write key file: %w", err)
		}
	}
	s.saved = key
	s.loaded = true
	return nil
}

// Clear forgets the persisted key. An environment key still applies afterwards.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = ""
	s.loaded = true
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove key file: %w", err)
	}
	return nil
}

func (s *Store) loadLocked() string {
	if s.loaded {
		return s.saved
	}
	s.loaded = true
	if s.path == "" {
		return ""
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	s.saved = strings.TrimSpace(string(raw))
	return s.saved
}

func Mask(key string) string {
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return "NONE"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "...." + key[len(key)-4:]
	}
}
