// Package config loads the shopassist runtime configuration from the environment.
// Both binaries call Load once at startup and pass the result down explicitly.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	envProduction = "production"
)

// Config holds all application configuration.
type Config struct {
	Env       string
	Assistant AssistantConfig
	Backend   BackendConfig
	LLM       LLMConfig
	Audit     AuditConfig
	Relay     RelayConfig
	RateLimit RateLimitConfig
}

// AssistantConfig configures the orchestration service listener.
type AssistantConfig struct {
	Host              string
	Port              int
	CORSAllowedOrigin string
}

// BackendConfig points at the product/cart backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// LLMConfig selects and tunes the chat-completion provider.
type LLMConfig struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OllamaBaseURL string
	OllamaModel   string
	Temperature   float64
	MaxTokens     int
}

// AuditConfig enables the sqlite tool-dispatch audit trail when DBPath is set.
type AuditConfig struct {
	DBPath string
}

// RelayConfig configures the storefront relay.
type RelayConfig struct {
	Host         string
	Port         int
	AssistantURL string
	Timeout      time.Duration
	JWTSecret    string
}

// RateLimitConfig configures per-client throttling on the relay.
type RateLimitConfig struct {
	RedisURL string
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables and validates the shared fields.
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Assistant: AssistantConfig{
			Host:              getEnv("ASSISTANT_HOST", "0.0.0.0"),
			Port:              getEnvInt("ASSISTANT_PORT", 3001),
			CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_API_URL", "http://localhost:3000"), "/"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		LLM: LLMConfig{
			Provider:      strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OllamaBaseURL: strings.TrimRight(getEnv("OLLAMA_BASE_URL", "http://localhost:11434"), "/"),
			OllamaModel:   getEnv("OLLAMA_CHAT_MODEL", "llama3.2:3b"),
			Temperature:   getEnvFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:     getEnvInt("LLM_MAX_TOKENS", 500),
		},
		Audit: AuditConfig{
			DBPath: getEnv("AUDIT_DB_PATH", ""),
		},
		Relay: RelayConfig{
			Host:         getEnv("STOREFRONT_HOST", "0.0.0.0"),
			Port:         getEnvInt("STOREFRONT_PORT", 8080),
			AssistantURL: strings.TrimRight(getEnv("ASSISTANT_URL", "http://localhost:3001"), "/"),
			Timeout:      getEnvDuration("RELAY_TIMEOUT", 30*time.Second),
			JWTSecret:    getEnv("JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 20),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields both binaries depend on.
func (c *Config) Validate() error {
	if err := validateURL("BACKEND_API_URL", c.Backend.BaseURL); err != nil {
		return err
	}
	if err := validateURL("ASSISTANT_URL", c.Relay.AssistantURL); err != nil {
		return err
	}
	if c.Assistant.Port <= 0 || c.Relay.Port <= 0 {
		return fmt.Errorf("ASSISTANT_PORT and STOREFRONT_PORT must be > 0")
	}
	if c.Relay.Timeout <= 0 {
		return fmt.Errorf("RELAY_TIMEOUT must be > 0")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// ValidateAssistant checks the settings only the orchestration service needs.
func (c *Config) ValidateAssistant() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", ProviderOpenAI)
		}
	case ProviderOllama:
		if err := validateURL("OLLAMA_BASE_URL", c.LLM.OllamaBaseURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderOllama, c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2]")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be > 0")
	}
	return nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, envProduction)
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
