package config

import (
	"strings"
	"testing"
	"time"
)

func TestEnvIntValid(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	v, err := envInt("TEST_INT", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestEnvIntFallback(t *testing.T) {
	// TEST_INT_MISSING is not set.
	v, err := envInt("TEST_INT_MISSING", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 99 {
		t.Fatalf("expected fallback 99, got %d", v)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	_, err := envInt("TEST_INT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-integer value, got nil")
	}
	if got := err.Error(); got != `TEST_INT_BAD="abc" is not a valid integer` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvBoolValid(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	v, err := envBool("TEST_BOOL", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v {
		t.Fatal("expected true")
	}
}

func TestEnvBoolInvalid(t *testing.T) {
	t.Setenv("TEST_BOOL_BAD", "maybe")
	_, err := envBool("TEST_BOOL_BAD", false)
	if err == nil {
		t.Fatal("expected error for non-boolean value, got nil")
	}
	if got := err.Error(); got != `TEST_BOOL_BAD="maybe" is not a valid boolean` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvDurationValid(t *testing.T) {
	t.Setenv("TEST_DUR", "5s")
	v, err := envDuration("TEST_DUR", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Seconds() != 5 {
		t.Fatalf("expected 5s, got %s", v)
	}
}

func TestEnvDurationInvalid(t *testing.T) {
	t.Setenv("TEST_DUR_BAD", "five-seconds")
	_, err := envDuration("TEST_DUR_BAD", 0)
	if err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
	if got := err.Error(); got != `TEST_DUR_BAD="five-seconds" is not a valid duration` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvFloatInvalid(t *testing.T) {
	t.Setenv("TEST_FLOAT_BAD", "warm")
	_, err := envFloat("TEST_FLOAT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-numeric value, got nil")
	}
	if got := err.Error(); got != `TEST_FLOAT_BAD="warm" is not a valid number` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestLoadFailsOnInvalidTemperature(t *testing.T) {
	t.Setenv("KANSA_LLM_TEMPERATURE", "abc")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with invalid KANSA_LLM_TEMPERATURE")
	}
	// Error should mention the variable name and value.
	if got := err.Error(); !strings.Contains(got, "KANSA_LLM_TEMPERATURE") || !strings.Contains(got, "abc") {
		t.Fatalf("error should mention KANSA_LLM_TEMPERATURE and value 'abc', got: %s", got)
	}
}

func TestLoadFailsOnMultipleInvalid(t *testing.T) {
	t.Setenv("KANSA_LLM_TIMEOUT", "abc")
	t.Setenv("KANSA_MAX_CONTENT_BYTES", "xyz")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with multiple invalid vars")
	}
	got := err.Error()
	if !strings.Contains(got, "KANSA_LLM_TIMEOUT") {
		t.Fatalf("error should mention KANSA_LLM_TIMEOUT, got: %s", got)
	}
	if !strings.Contains(got, "KANSA_MAX_CONTENT_BYTES") {
		t.Fatalf("error should mention KANSA_MAX_CONTENT_BYTES, got: %s", got)
	}
}

func TestLoadSucceedsWithDefaults(t *testing.T) {
	// With no env vars set, Load should succeed using all defaults.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed with defaults, got: %v", err)
	}
	if cfg.LLMBaseURL != "http://localhost:1234/v1" {
		t.Fatalf("unexpected default base URL %q", cfg.LLMBaseURL)
	}
	if cfg.LLMModel != "local_model" || cfg.LLMTemperature != 0.2 {
		t.Fatalf("unexpected generation defaults: model=%q temperature=%g", cfg.LLMModel, cfg.LLMTemperature)
	}
	if cfg.FetchMode != FetchModeFirecrawl {
		t.Fatalf("expected default fetch mode firecrawl, got %q", cfg.FetchMode)
	}
	if cfg.LLMTimeout != 120*time.Second {
		t.Fatalf("expected default LLM timeout 120s, got %s", cfg.LLMTimeout)
	}
}

func TestLoadDoesNotRequireFirecrawlKey(t *testing.T) {
	t.Setenv("FIRECRAWL_API_KEY", "")
	if _, err := Load(); err != nil {
		t.Fatalf("a missing Firecrawl key must not fail Load(), got: %v", err)
	}
}

func TestLoadLogLevelAlias(t *testing.T) {
	t.Setenv("LOGGING_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected LOGGING_LEVEL to apply, got %q", cfg.LogLevel)
	}

	t.Setenv("KANSA_LOG_LEVEL", "warn")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected KANSA_LOG_LEVEL to win, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		LLMProvider:     ProviderOllama,
		FetchMode:       FetchModeDirect,
		LLMTemperature:  0.2,
		MaxContentBytes: 1,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}

	cases := map[string]func(c *Config){
		"KANSA_LLM_PROVIDER":      func(c *Config) { c.LLMProvider = "anthropic" },
		"KANSA_FETCH_MODE":        func(c *Config) { c.FetchMode = "headless" },
		"KANSA_LLM_TEMPERATURE":   func(c *Config) { c.LLMTemperature = 2.5 },
		"KANSA_LLM_TIMEOUT":       func(c *Config) { c.LLMTimeout = -time.Second },
		"KANSA_FETCH_TIMEOUT":     func(c *Config) { c.FetchTimeout = -time.Second },
		"KANSA_MAX_CONTENT_BYTES": func(c *Config) { c.MaxContentBytes = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("error should mention %s, got: %s", name, err)
			}
		})
	}
}
