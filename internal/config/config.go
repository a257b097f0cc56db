// Package config provides configuration loading and validation for the
// advisor service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the service configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must
// be provided via CLI flags or environment variables.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	CatalogDir  string `json:"catalog_dir,omitempty"`  // Override role catalog directory (empty = embedded)
	MaxAttempts int    `json:"max_attempts,omitempty"` // Generation attempts before giving up
	TopK        int    `json:"top_k,omitempty"`        // Candidate roles handed to the model

	// Quota
	AnonTurnLimit     int `json:"anon_turn_limit,omitempty"`     // Regeneration turns for anonymous visitors
	EntitledTurnLimit int `json:"entitled_turn_limit,omitempty"` // Regeneration turns for entitled users

	// Auth
	JWTSecret          string `json:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty"`
	WebhookSecret      string `json:"checkout_webhook_secret,omitempty"` // Shared secret signing checkout webhook deliveries

	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // json or console
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Port:               8080,
		MaxAttempts:        2,
		TopK:               6,
		AnonTurnLimit:      3,
		EntitledTurnLimit:  10,
		JWTExpirationHours: 24,
		LogLevel:           "info",
		LogFormat:          "console",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills a Config from environment variables. File values win over
// environment values, so this is applied as a defaults layer.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		APIKey:        os.Getenv("GEMINI_API_KEY"),
		CatalogDir:    os.Getenv("CATALOG_DIR"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		WebhookSecret: os.Getenv("CHECKOUT_WEBHOOK_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
	}
	if port := os.Getenv("PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			cfg.Port = v
		}
	}
	if hours := os.Getenv("JWT_EXPIRATION_HOURS"); hours != "" {
		if v, err := strconv.Atoi(hours); err == nil {
			cfg.JWTExpirationHours = v
		}
	}
	if limit := os.Getenv("ANON_TURN_LIMIT"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			cfg.AnonTurnLimit = v
		}
	}
	if limit := os.Getenv("ENTITLED_TURN_LIMIT"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			cfg.EntitledTurnLimit = v
		}
	}
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config error: 'max_attempts' must be at least 1")
	}
	if c.TopK < 1 {
		return fmt.Errorf("config error: 'top_k' must be at least 1")
	}
	if c.AnonTurnLimit < 0 {
		return fmt.Errorf("config error: 'anon_turn_limit' must be non-negative")
	}
	if c.EntitledTurnLimit < 0 {
		return fmt.Errorf("config error: 'entitled_turn_limit' must be non-negative")
	}
	if c.CatalogDir != "" {
		if _, err := os.Stat(c.CatalogDir); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog directory not found: %s", c.CatalogDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-value fields filled
// from defaults. Applied twice at startup: file values over env values,
// then over the built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.CatalogDir == "" {
		result.CatalogDir = defaults.CatalogDir
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.TopK == 0 {
		result.TopK = defaults.TopK
	}
	if result.AnonTurnLimit == 0 {
		result.AnonTurnLimit = defaults.AnonTurnLimit
	}
	if result.EntitledTurnLimit == 0 {
		result.EntitledTurnLimit = defaults.EntitledTurnLimit
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.WebhookSecret == "" {
		result.WebhookSecret = defaults.WebhookSecret
	}
	if result.JWTExpirationHours == 0 {
		result.JWTExpirationHours = defaults.JWTExpirationHours
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	return result
}
