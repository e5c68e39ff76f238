package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderStub       = "stub"
)

const (
	ResponseFormatJSONObject = "json_object"
	ResponseFormatJSONSchema = "json_schema"
	ResponseFormatNone       = "none"
)

// OracleConfig configures the generation oracle behind question and feedback generation.
type OracleConfig struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	ResponseFormat string
}

type providerDefaults struct {
	keyEnv  string
	baseURL string
	model   string
}

var providers = map[string]providerDefaults{
	ProviderOpenRouter: {keyEnv: "OPENROUTER_API_KEY", baseURL: "https://openrouter.ai/api/v1", model: "google/gemma-2-9b-it:free"},
	ProviderOpenAI:     {keyEnv: "OPENAI_API_KEY", baseURL: "https://api.openai.com/v1", model: "gpt-4o"},
	ProviderGemini:     {keyEnv: "GEMINI_API_KEY", model: "gemini-2.5-flash"},
	ProviderStub:       {model: "stub"},
}

// LoadOracleConfig reads the oracle settings from the environment.
// The credential variable and the model/base URL defaults depend on ORACLE_PROVIDER.
func LoadOracleConfig() *OracleConfig {
	provider := strings.ToLower(getEnv("ORACLE_PROVIDER", ProviderOpenRouter))
	defaults := providers[provider]

	cfg := &OracleConfig{
		Provider:       provider,
		BaseURL:        getEnv("ORACLE_BASE_URL", defaults.baseURL),
		Model:          getEnv("ORACLE_MODEL", defaults.model),
		MaxTokens:      getEnvAsInt("ORACLE_MAX_TOKENS", 2000),
		Temperature:    getEnvAsFloat("ORACLE_TEMPERATURE", 0.7),
		Timeout:        getEnvAsDuration("ORACLE_TIMEOUT", 60*time.Second),
		MaxRetries:     getEnvAsInt("ORACLE_MAX_RETRIES", 2),
		RetryBackoff:   getEnvAsDuration("ORACLE_RETRY_BACKOFF", 500*time.Millisecond),
		ResponseFormat: strings.ToLower(getEnv("ORACLE_RESPONSE_FORMAT", ResponseFormatJSONObject)),
	}
	if defaults.keyEnv != "" {
		cfg.APIKey = getEnv(defaults.keyEnv, "")
	}
	return cfg
}

// ValidateConfig reports the first problem that keeps the oracle from being usable.
func (c *OracleConfig) ValidateConfig() error {
	defaults, ok := providers[c.Provider]
	if !ok {
		return fmt.Errorf("ORACLE_PROVIDER %q is not supported", c.Provider)
	}

	if c.Provider != ProviderStub && c.APIKey == "" {
		return fmt.Errorf("%s is required", defaults.keyEnv)
	}

	if c.Model == "" {
		return fmt.Errorf("ORACLE_MODEL is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("ORACLE_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("ORACLE_TEMPERATURE must be between 0 and 2")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("ORACLE_MAX_RETRIES cannot be negative")
	}

	switch c.ResponseFormat {
	case ResponseFormatJSONObject, ResponseFormatJSONSchema, ResponseFormatNone:
	default:
		return fmt.Errorf("ORACLE_RESPONSE_FORMAT %q is not supported", c.ResponseFormat)
	}

	return nil
}

// Ready reports whether oracle calls can be attempted at all.
// When false the service still starts and every call takes the fallback path.
func (c *OracleConfig) Ready() bool {
	return c.ValidateConfig() == nil
}

// GetModelInfo describes the configured model without exposing the credential.
func (c *OracleConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    c.Provider,
		"model":       c.Model,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"ready":       c.Ready(),
	}
}
