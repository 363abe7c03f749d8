// Package config provides application configuration with multi-source
// priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.skiff/config.yaml, or ./config.yaml)
//  3. Default values (a local Ollama install works out of the box)
//
// Error handling uses sentinel errors checked with errors.Is(); Load
// validates immediately so a bad configuration fails at startup rather than
// mid-conversation.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidModelHost indicates the model host URL is empty or malformed.
	ErrInvalidModelHost = errors.New("invalid model host")

	// ErrInvalidTemperature indicates the default temperature is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates the default max tokens is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidMaxRounds indicates the tool-round bound is out of range.
	ErrInvalidMaxRounds = errors.New("invalid max rounds")

	// ErrInvalidListenAddr indicates the serve address is empty.
	ErrInvalidListenAddr = errors.New("invalid listen address")

	// ErrInvalidTimeout indicates a timeout value is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Config stores application configuration.
type Config struct {
	// Model configuration. ModelHost is the base URL of an OpenAI-compatible
	// server; a local Ollama install is the expected default.
	ModelHost    string        `mapstructure:"model_host" json:"model_host"`
	ModelName    string        `mapstructure:"model_name" json:"model_name"`
	ModelTimeout time.Duration `mapstructure:"model_timeout" json:"model_timeout"`

	// Sampling defaults applied to new sessions.
	Temperature float64 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`

	// Orchestration limits.
	MaxRounds           int     `mapstructure:"max_rounds" json:"max_rounds"`
	ModelCallsPerSecond float64 `mapstructure:"model_calls_per_second" json:"model_calls_per_second"`

	// HTTP server configuration.
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`

	// Tool backends. The defaults point at the public services; tests and
	// air-gapped deployments override them.
	SearchEndpoint   string        `mapstructure:"search_endpoint" json:"search_endpoint"`
	WikiEndpoint     string        `mapstructure:"wiki_endpoint" json:"wiki_endpoint"`
	GeocodeEndpoint  string        `mapstructure:"geocode_endpoint" json:"geocode_endpoint"`
	ForecastEndpoint string        `mapstructure:"forecast_endpoint" json:"forecast_endpoint"`
	ToolTimeout      time.Duration `mapstructure:"tool_timeout" json:"tool_timeout"`

	// Logging configuration.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".skiff")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets all default configuration values on v.
func setDefaults(v *viper.Viper) {
	// Model defaults target a stock local Ollama install.
	v.SetDefault("model_host", "http://localhost:11434")
	v.SetDefault("model_name", "qwen2.5:7b")
	v.SetDefault("model_timeout", "120s")

	// Sampling defaults for new sessions.
	v.SetDefault("temperature", 0.2)
	v.SetDefault("max_tokens", 8000)

	// Orchestration defaults.
	v.SetDefault("max_rounds", 5)
	v.SetDefault("model_calls_per_second", 0)

	v.SetDefault("listen_addr", ":8080")

	// Tool backend defaults.
	v.SetDefault("search_endpoint", "https://html.duckduckgo.com/html/")
	v.SetDefault("wiki_endpoint", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("geocode_endpoint", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("forecast_endpoint", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("tool_timeout", "30s")

	// Logging defaults.
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
}

// bindEnvVariables binds environment overrides explicitly. Only the knobs
// that make sense to flip per-deployment get an environment name.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("model_host", "SKIFF_MODEL_HOST")
	mustBind("model_name", "SKIFF_MODEL_NAME")
	mustBind("listen_addr", "SKIFF_LISTEN_ADDR")
	mustBind("log_level", "SKIFF_LOG_LEVEL")
	mustBind("log_json", "SKIFF_LOG_JSON")
	mustBind("search_endpoint", "SKIFF_SEARCH_ENDPOINT")
	mustBind("wiki_endpoint", "SKIFF_WIKI_ENDPOINT")
}
