// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ashita-ai/kansa/internal/llm"
)

// Generation providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Fetch modes.
const (
	FetchModeFirecrawl = "firecrawl"
	FetchModeDirect    = "direct"
)

// Config holds all application configuration.
type Config struct {
	// Generation settings.
	LLMProvider    string // "openai" (any OpenAI-compatible server) or "ollama"
	LLMBaseURL     string
	OpenAIAPIKey   string // May be a dummy value for local servers.
	LLMModel       string
	LLMTemperature float64
	LLMTimeout     time.Duration // Per call; 0 disables.
	OllamaURL      string

	// Fetch settings.
	FetchMode       string // "firecrawl" or "direct"
	FirecrawlAPIKey string // Checked by the fetch stage, not here.
	FirecrawlURL    string
	FetchTimeout    time.Duration
	MaxContentBytes int64

	// Report archive. Empty disables archiving; postgres:// or sqlite:// otherwise.
	DatabaseURL string

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with sensible defaults.
// Every malformed variable is reported, not just the first.
func Load() (Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		LLMProvider:     strings.ToLower(envStr("KANSA_LLM_PROVIDER", ProviderOpenAI)),
		LLMBaseURL:      envStr("LOCAL_LLM_BASE_URL", "http://localhost:1234/v1"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", "not-needed"),
		LLMModel:        envStr("KANSA_LLM_MODEL", "local_model"),
		OllamaURL:       envStr("OLLAMA_URL", "http://localhost:11434"),
		FetchMode:       strings.ToLower(envStr("KANSA_FETCH_MODE", FetchModeFirecrawl)),
		FirecrawlAPIKey: envStr("FIRECRAWL_API_KEY", ""),
		FirecrawlURL:    envStr("FIRECRAWL_API_URL", "https://api.firecrawl.dev"),
		DatabaseURL:     envStr("KANSA_DATABASE_URL", ""),
		OTELEndpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:     envStr("OTEL_SERVICE_NAME", "kansa"),
		LogLevel:        envStr("KANSA_LOG_LEVEL", envStr("LOGGING_LEVEL", "info")),
		LogFile:         envStr("KANSA_LOG_FILE", ""),
	}

	var err error
	cfg.LLMTemperature, err = envFloat("KANSA_LLM_TEMPERATURE", llm.DefaultTemperature)
	collect(err)
	cfg.LLMTimeout, err = envDuration("KANSA_LLM_TIMEOUT", 120*time.Second)
	collect(err)
	cfg.FetchTimeout, err = envDuration("KANSA_FETCH_TIMEOUT", 60*time.Second)
	collect(err)
	maxBytes, err := envInt("KANSA_MAX_CONTENT_BYTES", 2*1024*1024) // 2 MB default
	collect(err)
	cfg.MaxContentBytes = int64(maxBytes)
	cfg.OTELInsecure, err = envBool("OTEL_EXPORTER_OTLP_INSECURE", false)
	collect(err)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the loaded values are usable.
func (c Config) Validate() error {
	var errs []error
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("KANSA_LLM_PROVIDER must be %q or %q, got %q", ProviderOpenAI, ProviderOllama, c.LLMProvider))
	}
	switch c.FetchMode {
	case FetchModeFirecrawl, FetchModeDirect:
	default:
		errs = append(errs, fmt.Errorf("KANSA_FETCH_MODE must be %q or %q, got %q", FetchModeFirecrawl, FetchModeDirect, c.FetchMode))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		errs = append(errs, fmt.Errorf("KANSA_LLM_TEMPERATURE must be between 0 and 2, got %g", c.LLMTemperature))
	}
	if c.LLMTimeout < 0 {
		errs = append(errs, fmt.Errorf("KANSA_LLM_TIMEOUT must not be negative"))
	}
	if c.FetchTimeout < 0 {
		errs = append(errs, fmt.Errorf("KANSA_FETCH_TIMEOUT must not be negative"))
	}
	if c.MaxContentBytes <= 0 {
		errs = append(errs, fmt.Errorf("KANSA_MAX_CONTENT_BYTES must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid number", key, v)
	}
	return f, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
