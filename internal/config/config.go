package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port            int           `koanf:"port"`
	LogLevel        string        `koanf:"log_level"`
	NatsURL         string        `koanf:"nats_url"`
	NatsToken       string        `koanf:"nats_token"`
	DatabaseURL     string        `koanf:"database_url"`
	RedisURL        string        `koanf:"redis_url"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	LLMProvider     string        `koanf:"llm_provider"`
	AnthropicAPIKey string        `koanf:"anthropic_api_key"`
	OpenAIAPIKey    string        `koanf:"openai_api_key"`
	Model           string        `koanf:"model"`
	FallbackModel   string        `koanf:"fallback_model"`
	Language        string        `koanf:"language"`
	RulesFile       string        `koanf:"rules_file"`
	Strategy        string        `koanf:"strategy"`
	APIToken        string        `koanf:"api_token"`
	MaxExamples     int           `koanf:"max_examples"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

func Default() *Config {
	return &Config{
		Port:        8760,
		LogLevel:    "info",
		CacheTTL:    time.Hour,
		Language:    "nb",
		Strategy:    "rules",
		MaxExamples: 8,
		CORSOrigins: []string{"*"},
	}
}

// envKeys maps environment variables onto config keys.
var envKeys = map[string]string{
	"OARS_PORT":           "port",
	"LOG_LEVEL":           "log_level",
	"NATS_URL":            "nats_url",
	"NATS_TOKEN":          "nats_token",
	"DATABASE_URL":        "database_url",
	"REDIS_URL":           "redis_url",
	"OARS_CACHE_TTL":      "cache_ttl",
	"LLM_PROVIDER":        "llm_provider",
	"ANTHROPIC_API_KEY":   "anthropic_api_key",
	"OPENAI_API_KEY":      "openai_api_key",
	"OARS_MODEL":          "model",
	"OARS_FALLBACK_MODEL": "fallback_model",
	"OARS_LANGUAGE":       "language",
	"OARS_RULES_FILE":     "rules_file",
	"OARS_STRATEGY":       "strategy",
	"OARS_API_TOKEN":      "api_token",
	"OARS_MAX_EXAMPLES":   "max_examples",
	"OARS_CORS_ORIGINS":   "cors_origins",
}

// DotEnvFiles are loaded before the environment is read. Missing files are
// skipped and variables already set in the environment win.
var DotEnvFiles = []string{".env"}

// Load builds the config from defaults, an optional YAML file at path and
// the environment, in that order. Empty variables are ignored.
func Load(path string) (*Config, error) {
	for _, f := range DotEnvFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("loading %s: %w", f, err)
			}
		}
	}

	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		name, ok := envKeys[key]
		if !ok || strings.TrimSpace(value) == "" {
			return "", nil
		}
		return name, value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validStrategies = map[string]bool{"rules": true, "llm": true}
	validProviders  = map[string]bool{"": true, "none": true, "anthropic": true, "openai": true}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	if !validStrategies[c.Strategy] {
		return fmt.Errorf("invalid strategy %q: must be rules or llm", c.Strategy)
	}
	if !validProviders[c.LLMProvider] {
		return fmt.Errorf("invalid llm_provider %q: must be anthropic, openai or none", c.LLMProvider)
	}
	if c.Language == "" {
		return fmt.Errorf("language is required")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative")
	}
	if c.MaxExamples < 0 {
		return fmt.Errorf("max_examples must be non-negative")
	}
	return nil
}
