// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	window := cfg.Matching.DateWindowDays
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ledgerlink/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Matching      MatchingConfig      `yaml:"matching"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MatchingConfig holds the linking subsystem's matching parameters
type MatchingConfig struct {
	DateWindowDays    int      `yaml:"date_window_days"`
	AmountTolerance   float64  `yaml:"amount_tolerance"`
	SuggestThreshold  int      `yaml:"suggest_threshold"`
	AutoLinkThreshold int      `yaml:"auto_link_threshold"`
	// MerchantMatching is a pointer so an omitted key defaults to
	// enabled while an explicit "merchant_matching: false" sticks.
	MerchantMatching *bool `yaml:"merchant_matching"`
	MerchantKeywords  []string `yaml:"merchant_keywords"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MatcherConfig converts the YAML matching section into the matcher
// package's runtime config.
func (c *Config) MatcherConfig() matcher.Config {
	return matcher.Config{
		DateWindowDays:         c.Matching.DateWindowDays,
		AmountTolerance:        decimal.NewFromFloat(c.Matching.AmountTolerance),
		SuggestThreshold:       c.Matching.SuggestThreshold,
		AutoLinkThreshold:      c.Matching.AutoLinkThreshold,
		EnableMerchantMatching: c.Matching.MerchantMatching == nil || *c.Matching.MerchantMatching,
		MerchantKeywords:       c.Matching.MerchantKeywords,
	}
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${LEDGERLINK_DB_PATH})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("PORT", 8080),
			AllowedOrigins: splitEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("LEDGERLINK_DB_PATH", "ledgerlink.db"),
		},
		Matching: MatchingConfig{
			DateWindowDays:    getEnvInt("MATCH_DATE_WINDOW_DAYS", 5),
			AmountTolerance:   getEnvFloat("MATCH_AMOUNT_TOLERANCE", 3.00),
			SuggestThreshold:  getEnvInt("MATCH_SUGGEST_THRESHOLD", 70),
			AutoLinkThreshold: getEnvInt("MATCH_AUTO_LINK_THRESHOLD", 90),
			MerchantMatching:  getEnvBool("MATCH_MERCHANT_MATCHING", true),
			MerchantKeywords:  splitEnv("MATCH_MERCHANT_KEYWORDS", []string{"amazon", "amzn"}),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}

	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills in zero values a hand-written YAML file commonly omits.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "ledgerlink.db"
	}
	if c.Matching.DateWindowDays == 0 {
		c.Matching.DateWindowDays = 5
	}
	if c.Matching.AmountTolerance == 0 {
		c.Matching.AmountTolerance = 3.00
	}
	if c.Matching.SuggestThreshold == 0 {
		c.Matching.SuggestThreshold = 70
	}
	if c.Matching.AutoLinkThreshold == 0 {
		c.Matching.AutoLinkThreshold = 90
	}
	if c.Matching.MerchantMatching == nil {
		enabled := true
		c.Matching.MerchantMatching = &enabled
	}
	if len(c.Matching.MerchantKeywords) == 0 {
		c.Matching.MerchantKeywords = []string{"amazon", "amzn"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvBool retrieves a boolean environment variable with a fallback default
func getEnvBool(key string, fallback bool) *bool {
	result := fallback
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			result = parsed
		}
	}
	return &result
}

// splitEnv retrieves a comma-separated environment variable as a slice
func splitEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}
