// Package config holds process-wide configuration for the medical agent.
// All credentials and provider selectors are resolved once at startup and
// passed explicitly to the components that need them; business logic never
// reads the environment directly.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by FromEnv.
const (
	EnvGroqAPIKey     = "GROQ_API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvSerpAPIKey     = "SERPAPI_API_KEY"
	EnvBingKey        = "BING_SUBSCRIPTION_KEY"
	EnvLLMProvider    = "LLM_PROVIDER"
	EnvSearchProvider = "SEARCH_PROVIDER"
	EnvDataDir        = "MEDAGENT_DATA_DIR"
)

// Supported completion providers.
const (
	LLMProviderGroq   = "groq"
	LLMProviderOpenAI = "openai"
)

// DefaultDataDir is where the dataset stores live unless overridden.
const DefaultDataDir = "db"

// ConfigurationError indicates a missing or invalid startup setting.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Message)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Message: message}
}

// Config carries everything the agent needs at construction time.
type Config struct {
	// LLMProvider selects the completion backend ("groq" or "openai").
	LLMProvider string
	// LLMAPIKey is the credential for the selected completion backend.
	LLMAPIKey string
	// SearchProvider selects the web search backend ("serpapi" or "bing").
	SearchProvider string
	// SerpAPIKey is the SerpAPI credential (may be empty).
	SerpAPIKey string
	// BingKey is the Bing credential (may be empty).
	BingKey string
	// DataDir is the directory holding the per-disease SQLite stores.
	DataDir string
}

// FromEnv builds a Config from the process environment. A .env file in the
// working directory is loaded first if present. The completion credential is
// required; search credentials are optional and their absence degrades only
// the web tool.
func FromEnv() (*Config, error) {
	// Missing .env is fine; real env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:    strings.ToLower(getEnvDefault(EnvLLMProvider, LLMProviderGroq)),
		SearchProvider: strings.ToLower(getEnvDefault(EnvSearchProvider, "serpapi")),
		SerpAPIKey:     os.Getenv(EnvSerpAPIKey),
		BingKey:        os.Getenv(EnvBingKey),
		DataDir:        getEnvDefault(EnvDataDir, DefaultDataDir),
	}

	switch cfg.LLMProvider {
	case LLMProviderGroq:
		cfg.LLMAPIKey = os.Getenv(EnvGroqAPIKey)
		if cfg.LLMAPIKey == "" {
			return nil, NewConfigurationError(EnvGroqAPIKey,
				"not set; add it to your .env or environment")
		}
	case LLMProviderOpenAI:
		cfg.LLMAPIKey = os.Getenv(EnvOpenAIAPIKey)
		if cfg.LLMAPIKey == "" {
			return nil, NewConfigurationError(EnvOpenAIAPIKey,
				"not set; add it to your .env or environment")
		}
	default:
		return nil, NewConfigurationError(EnvLLMProvider,
			fmt.Sprintf("unknown provider %q", cfg.LLMProvider))
	}

	return cfg, nil
}

// SearchAPIKey returns the credential for the configured search provider.
func (c *Config) SearchAPIKey() string {
	if c.SearchProvider == "bing" {
		return c.BingKey
	}
	return c.SerpAPIKey
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
