package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dileep-u-k/askbot/internal/llm"
	"github.com/dileep-u-k/askbot/internal/tools"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yaml"
	defaultPort       = "3001"
	defaultCookieName = "askbot_session"
	defaultSessionTTL = time.Hour
)

// AppConfig is built once at startup and handed to every constructor.
type AppConfig struct {
	Provider          string
	Model             string
	CompletionAPIKey  string
	CompletionBaseURL string

	WeatherAPIKey  string
	WeatherBaseURL string

	RedisAddr  string
	SessionTTL time.Duration
	CookieName string
	Port       string
}

// fileConfig mirrors the optional config.yaml. Credentials are never read from
// it, and sampling settings are fixed: temperature 0 and 300 output tokens.
type fileConfig struct {
	Completion struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"completion"`
	Weather struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"weather"`
	Session struct {
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
	} `yaml:"session"`
}

// providerKeyEnv maps each completion provider to the variable holding its key.
var providerKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"mistral":   "MISTRAL_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

var providerDefaultModel = map[string]string{
	"openai":    llm.DefaultOpenAIModel,
	"mistral":   llm.DefaultMistralModel,
	"gemini":    llm.DefaultGeminiModel,
	"anthropic": llm.DefaultAnthropicModel,
}

// LoadConfig layers defaults, config.yaml and the environment, in that order.
// A missing credential is an error; main treats every error here as fatal.
func LoadConfig() (*AppConfig, error) {
	// In release mode configuration comes straight from the environment.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		Provider:       "openai",
		WeatherBaseURL: tools.DefaultWeatherBaseURL,
		SessionTTL:     defaultSessionTTL,
		CookieName:     defaultCookieName,
		Port:           defaultPort,
	}

	if err := applyConfigFile(cfg, getEnv("CONFIG_FILE", defaultConfigFile)); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	keyEnv, ok := providerKeyEnv[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = providerDefaultModel[cfg.Provider]
	}

	var missing []string
	if cfg.CompletionAPIKey = os.Getenv(keyEnv); cfg.CompletionAPIKey == "" {
		missing = append(missing, keyEnv)
	}
	if cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_KEY"); cfg.WeatherAPIKey == "" {
		missing = append(missing, "WEATHERAPI_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are missing: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func applyConfigFile(cfg *AppConfig, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if fc.Completion.Provider != "" {
		cfg.Provider = strings.ToLower(fc.Completion.Provider)
	}
	if fc.Completion.Model != "" {
		cfg.Model = fc.Completion.Model
	}
	if fc.Completion.BaseURL != "" {
		cfg.CompletionBaseURL = fc.Completion.BaseURL
	}
	if fc.Weather.BaseURL != "" {
		cfg.WeatherBaseURL = fc.Weather.BaseURL
	}
	if fc.Session.CookieName != "" {
		cfg.CookieName = fc.Session.CookieName
	}
	if fc.Session.TTL != "" {
		ttl, err := time.ParseDuration(fc.Session.TTL)
		if err != nil {
			return fmt.Errorf("invalid session.ttl in %s: %w", path, err)
		}
		cfg.SessionTTL = ttl
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("COMPLETION_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("COMPLETION_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("COMPLETION_BASE_URL"); v != "" {
		cfg.CompletionBaseURL = v
	}
	if v := os.Getenv("WEATHERAPI_BASE_URL"); v != "" {
		cfg.WeatherBaseURL = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = ttl
	}
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.Port = getEnv("PORT", cfg.Port)
	return nil
}

// getEnv reads an env var or returns a default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
