package deckfill

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for the deckfill engine
type Config struct {
	// Delimiter is the single character that bounds tokens
	Delimiter string `yaml:"delimiter"`
	// StrictMode turns unresolved placeholders into errors
	StrictMode bool `yaml:"strict_mode"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// Workers is the number of slides filled concurrently
	Workers int `yaml:"workers"`
	// CacheMaxSize is the maximum number of templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cache_max_size"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Delimiter:    DefaultDelimiter,
		StrictMode:   false,
		LogLevel:     "info",
		Workers:      1,
		CacheMaxSize: 100,
		CacheTTL:     0,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config, os.Getenv)
	return config
}

func applyEnvironment(config *Config, getenv func(string) string) {
	// DECKFILL_DELIMITER
	if val := getenv("DECKFILL_DELIMITER"); val != "" {
		config.Delimiter = val
	}

	// DECKFILL_STRICT_MODE
	if val := getenv("DECKFILL_STRICT_MODE"); val != "" {
		config.StrictMode = parseBool(val)
	}

	// DECKFILL_LOG_LEVEL
	if val := getenv("DECKFILL_LOG_LEVEL"); val != "" {
		config.LogLevel = strings.ToLower(val)
	}

	// DECKFILL_WORKERS
	if val := getenv("DECKFILL_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Workers = n
		}
	}

	// DECKFILL_CACHE_MAX_SIZE
	if val := getenv("DECKFILL_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	// DECKFILL_CACHE_TTL
	if val := getenv("DECKFILL_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}
}

// fileConfig mirrors Config with pointer fields so that a YAML file only
// overrides the keys it sets.
type fileConfig struct {
	Delimiter    *string `yaml:"delimiter"`
	StrictMode   *bool   `yaml:"strict_mode"`
	LogLevel     *string `yaml:"log_level"`
	Workers      *int    `yaml:"workers"`
	CacheMaxSize *int    `yaml:"cache_max_size"`
	CacheTTL     *string `yaml:"cache_ttl"`
}

// LoadConfigFile reads a YAML configuration file. Keys missing from the file
// keep their value from the environment or the defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := ConfigFromEnvironment()
	if err := config.applyYAML(data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config, nil
}

func (c *Config) applyYAML(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	if fc.Delimiter != nil {
		c.Delimiter = *fc.Delimiter
	}
	if fc.StrictMode != nil {
		c.StrictMode = *fc.StrictMode
	}
	if fc.LogLevel != nil {
		c.LogLevel = strings.ToLower(*fc.LogLevel)
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.CacheMaxSize != nil {
		c.CacheMaxSize = *fc.CacheMaxSize
	}
	if fc.CacheTTL != nil {
		d, err := time.ParseDuration(*fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache_ttl: %w", err)
		}
		c.CacheTTL = d
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be exactly one character, got %q", c.Delimiter)
	}

	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
