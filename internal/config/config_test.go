package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"interview-prep-simulator/internal/storage"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ORACLE_PROVIDER", "OPENROUTER_API_KEY", "SESSION_BACKEND", "SESSION_MAX_AGE_HOURS", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := LoadAppConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Sessions.MaxAge != 24*time.Hour {
		t.Errorf("MaxAge = %v, want 24h", cfg.Sessions.MaxAge)
	}
	if cfg.Sessions.Backend != SessionBackendMemory {
		t.Errorf("Backend = %q", cfg.Sessions.Backend)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 1 || cfg.Server.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Oracle.Provider != ProviderOpenRouter || cfg.Oracle.Model != "google/gemma-2-9b-it:free" {
		t.Errorf("oracle defaults = %+v", cfg.Oracle)
	}
	if cfg.Oracle.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.Oracle.MaxRetries)
	}
}

func TestLoadAppConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, ,https://example.com")
	t.Setenv("SESSION_MAX_AGE_HOURS", "2")
	t.Setenv("SESSION_SWEEP_INTERVAL", "5m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := LoadAppConfig()

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if got := strings.Join(cfg.Server.CORSAllowedOrigins, "|"); got != "http://localhost:3000|https://example.com" {
		t.Errorf("CORSAllowedOrigins = %q", got)
	}
	if cfg.Sessions.MaxAge != 2*time.Hour || cfg.Sessions.SweepInterval != 5*time.Minute {
		t.Errorf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Server.RateLimitPerMinute != 60 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Server.RateLimitPerMinute)
	}
}

func TestOracleConfigProviderDefaults(t *testing.T) {
	tests := []struct {
		provider string
		keyEnv   string
		model    string
		baseURL  string
	}{
		{ProviderOpenRouter, "OPENROUTER_API_KEY", "google/gemma-2-9b-it:free", "https://openrouter.ai/api/v1"},
		{ProviderOpenAI, "OPENAI_API_KEY", "gpt-4o", "https://api.openai.com/v1"},
		{ProviderGemini, "GEMINI_API_KEY", "gemini-2.5-flash", ""},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			t.Setenv("ORACLE_PROVIDER", tt.provider)
			t.Setenv("ORACLE_MODEL", "")
			t.Setenv("ORACLE_BASE_URL", "")
			t.Setenv(tt.keyEnv, "secret")

			cfg := LoadOracleConfig()
			if cfg.APIKey != "secret" || cfg.Model != tt.model || cfg.BaseURL != tt.baseURL {
				t.Errorf("config = %+v", cfg)
			}
			if !cfg.Ready() {
				t.Errorf("expected ready, got %v", cfg.ValidateConfig())
			}
		})
	}
}

func TestOracleConfigReadiness(t *testing.T) {
	base := OracleConfig{
		Provider:       ProviderOpenRouter,
		APIKey:         "k",
		Model:          "m",
		MaxTokens:      100,
		Temperature:    0.7,
		ResponseFormat: ResponseFormatJSONObject,
	}

	tests := []struct {
		name   string
		mutate func(*OracleConfig)
		ready  bool
	}{
		{"complete", func(*OracleConfig) {}, true},
		{"missing key", func(c *OracleConfig) { c.APIKey = "" }, false},
		{"stub needs no key", func(c *OracleConfig) { c.Provider = ProviderStub; c.APIKey = "" }, true},
		{"unknown provider", func(c *OracleConfig) { c.Provider = "acme" }, false},
		{"bad temperature", func(c *OracleConfig) { c.Temperature = 3 }, false},
		{"negative retries", func(c *OracleConfig) { c.MaxRetries = -1 }, false},
		{"bad response format", func(c *OracleConfig) { c.ResponseFormat = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if got := cfg.Ready(); got != tt.ready {
				t.Errorf("Ready() = %v, want %v (err: %v)", got, tt.ready, cfg.ValidateConfig())
			}
		})
	}

	info := base.GetModelInfo()
	if _, leaked := info["api_key"]; leaked {
		t.Error("model info must not carry the credential")
	}
}

func TestLoadCatalog(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "interview.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, it := range storage.InterviewTypes {
		entry, ok := cfg.Lookup(it)
		if !ok || entry.Focus == "" {
			t.Errorf("catalog entry for %q = %+v, %v", it, entry, ok)
		}
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if len(cfg.InterviewTypes) != len(storage.InterviewTypes) {
		t.Errorf("default catalog has %d types", len(cfg.InterviewTypes))
	}
}

func TestLoadRejectsInvalidCatalog(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing types", "interview_types:\n  - name: technical\n    title: T\n    focus: F\n"},
		{"unknown type", "interview_types:\n  - name: coding\n    title: T\n    focus: F\n"},
		{"empty focus", `interview_types:
  - {name: technical, title: T, focus: ""}
  - {name: behavioral, title: T, focus: F}
  - {name: hr, title: T, focus: F}
  - {name: system_design, title: T, focus: F}
`},
		{"malformed", "interview_types: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "interview.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadOrDefault(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
