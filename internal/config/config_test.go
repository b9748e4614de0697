package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_OWNER_ID", "TELEGRAM_SEND_PER_SECOND",
		"GEMINI_3_API_KEY", "GEMINI_API_KEY", "API_KEY_FILE",
		"GEMINI_TEXT_MODEL", "GEMINI_IMAGE_MODEL", "GEMINI_IMAGE_SIZE",
		"MAX_CONCURRENT", "REQUEST_TIMEOUT_SECONDS", "SESSION_TTL_MINUTES",
		"MAX_UPLOAD_MB", "LOG_LEVEL", "WEB_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadToleratesMissingKey(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GeminiAPIKey != "" {
		t.Fatalf("GeminiAPIKey = %q, want empty", cfg.GeminiAPIKey)
	}
	if cfg.GeminiTextModel != "gemini-2.5-flash" || cfg.GeminiImageModel != "gemini-3-pro-image-preview" {
		t.Fatalf("models = %q, %q", cfg.GeminiTextModel, cfg.GeminiImageModel)
	}
	if cfg.GeminiImageSize != "1K" {
		t.Fatalf("GeminiImageSize = %q", cfg.GeminiImageSize)
	}
	if cfg.MaxUploadBytes != 25<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
}

func TestLoadPrefersGemini3Key(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "old-key")
	t.Setenv("GEMINI_3_API_KEY", " new-key ")

	cfg, _ := Load()
	if cfg.GeminiAPIKey != "new-key" {
		t.Fatalf("GeminiAPIKey = %q, want new-key", cfg.GeminiAPIKey)
	}

	t.Setenv("GEMINI_3_API_KEY", "")
	cfg, _ = Load()
	if cfg.GeminiAPIKey != "old-key" {
		t.Fatalf("GeminiAPIKey = %q, want old-key", cfg.GeminiAPIKey)
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-5")
	t.Setenv("SESSION_TTL_MINUTES", "abc")
	t.Setenv("LOG_LEVEL", " DEBUG ")

	cfg, _ := Load()
	if cfg.MaxConcurrent != 1 {
		t.Fatalf("MaxConcurrent = %d", cfg.MaxConcurrent)
	}
	if cfg.RequestTimeout != 180*time.Second {
		t.Fatalf("RequestTimeout = %s", cfg.RequestTimeout)
	}
	if cfg.SessionTTL != 120*time.Minute {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadBotRequiresToken(t *testing.T) {
	clearEnv(t)
	if _, err := LoadBot(); err == nil {
		t.Fatal("LoadBot without token returned nil error")
	}

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_OWNER_ID", "42")
	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot: %v", err)
	}
	if cfg.TelegramOwnerID != 42 {
		t.Fatalf("TelegramOwnerID = %d", cfg.TelegramOwnerID)
	}
}
