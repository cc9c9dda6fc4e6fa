package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "ASSISTANT_PORT", "BACKEND_API_URL", "LLM_PROVIDER", "OPENAI_MODEL",
		"LLM_TEMPERATURE", "LLM_MAX_TOKENS", "ASSISTANT_URL", "RELAY_TIMEOUT", "JWT_SECRET",
		"REDIS_URL", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "AUDIT_DB_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Assistant.Port != 3001 {
		t.Errorf("Assistant.Port = %d, want 3001", cfg.Assistant.Port)
	}
	if cfg.Backend.BaseURL != "http://localhost:3000" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.LLM.Provider != ProviderOpenAI || cfg.LLM.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("unexpected LLM defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Temperature != 0.7 || cfg.LLM.MaxTokens != 500 {
		t.Errorf("unexpected sampling defaults: temperature=%v max_tokens=%d", cfg.LLM.Temperature, cfg.LLM.MaxTokens)
	}
	if cfg.Relay.AssistantURL != "http://localhost:3001" {
		t.Errorf("Relay.AssistantURL = %q", cfg.Relay.AssistantURL)
	}
	if cfg.Relay.Timeout != 30*time.Second {
		t.Errorf("Relay.Timeout = %v, want 30s", cfg.Relay.Timeout)
	}
	if cfg.IsProduction() {
		t.Error("expected development environment by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("BACKEND_API_URL", "http://backend:4000/")
	t.Setenv("LLM_PROVIDER", "OLLAMA")
	t.Setenv("RELAY_TIMEOUT", "5s")
	t.Setenv("STOREFRONT_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Backend.BaseURL != "http://backend:4000" {
		t.Errorf("trailing slash not trimmed: %q", cfg.Backend.BaseURL)
	}
	if cfg.LLM.Provider != ProviderOllama {
		t.Errorf("Provider = %q, want ollama", cfg.LLM.Provider)
	}
	if cfg.Relay.Timeout != 5*time.Second {
		t.Errorf("Relay.Timeout = %v", cfg.Relay.Timeout)
	}
	if cfg.Relay.Port != 9090 {
		t.Errorf("Relay.Port = %d", cfg.Relay.Port)
	}
}

func TestLoad_InvalidBackendURL_ReturnsError(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "not-a-url")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "BACKEND_API_URL") {
		t.Fatalf("expected BACKEND_API_URL error, got %v", err)
	}
}

func TestValidateAssistant(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{LLM: LLMConfig{
			Provider:      ProviderOpenAI,
			OpenAIAPIKey:  "sk-test",
			OllamaBaseURL: "http://localhost:11434",
			Temperature:   0.7,
			MaxTokens:     500,
		}}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid openai", mutate: func(*Config) {}},
		{name: "missing key", mutate: func(c *Config) { c.LLM.OpenAIAPIKey = "" }, wantErr: "OPENAI_API_KEY"},
		{name: "ollama without key", mutate: func(c *Config) { c.LLM.Provider = ProviderOllama; c.LLM.OpenAIAPIKey = "" }},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "bard" }, wantErr: "LLM_PROVIDER"},
		{name: "temperature out of range", mutate: func(c *Config) { c.LLM.Temperature = 3 }, wantErr: "LLM_TEMPERATURE"},
		{name: "zero max tokens", mutate: func(c *Config) { c.LLM.MaxTokens = 0 }, wantErr: "LLM_MAX_TOKENS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			err := cfg.ValidateAssistant()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
