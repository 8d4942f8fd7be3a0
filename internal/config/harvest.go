// Package config reads the harvester's settings from the environment (and
// an optional BEA_CONFIG override file) once at process start, per
// spec.md's design note that environment variables are read once and
// passed down as an immutable record, never re-read mid-crawl.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration failures.
var (
	ErrMissingBeaURL  = errors.New("BEA_URL is required")
	ErrInvalidBeaURL  = errors.New("BEA_URL must parse as a URL")
	ErrMissingAPIKey  = errors.New("API_KEY is required")
	ErrMissingBeaData = errors.New("BEA_DATA is required")
	ErrBeaDataNotDir  = errors.New("BEA_DATA must be a directory")
)

// Config is the immutable record read once at process start. Per the
// source design notes, it is never re-read mid-crawl.
type Config struct {
	BeaURL   string
	APIKey   string
	BeaData  string
	CallCap  int
	ErrorCap int
	SizeCap  int64
	ChanCap  int
	LogLevel slog.Level
}

// fileOverrides mirrors the subset of Config that BEA_CONFIG may override
// before environment variables are applied on top.
type fileOverrides struct {
	CallCap  *int   `yaml:"call_cap"`
	ErrorCap *int   `yaml:"error_cap"`
	SizeCap  *int64 `yaml:"size_cap"`
	ChanCap  *int   `yaml:"chan_cap"`
	LogLevel string `yaml:"log_level"`
}

const (
	defaultCallCap  = 30
	defaultErrorCap = 7
	defaultSizeCap  = 100_000_000
	defaultChanCap  = 29
)

// Load reads the harvester configuration from the environment, optionally
// seeded by a BEA_CONFIG YAML file. Environment variables always win over
// the file, matching common ops practice.
func Load() (*Config, error) {
	cfg := &Config{
		CallCap:  defaultCallCap,
		ErrorCap: defaultErrorCap,
		SizeCap:  defaultSizeCap,
		ChanCap:  defaultChanCap,
		LogLevel: slog.LevelInfo,
	}

	if path := GetEnvStr("BEA_CONFIG", ""); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.BeaURL = GetEnvStr("BEA_URL", cfg.BeaURL)
	cfg.APIKey = GetEnvStr("API_KEY", cfg.APIKey)
	cfg.BeaData = GetEnvStr("BEA_DATA", cfg.BeaData)
	cfg.CallCap = GetEnvInt("CALL_CAP", cfg.CallCap)
	cfg.ErrorCap = GetEnvInt("ERROR_CAP", cfg.ErrorCap)
	cfg.SizeCap = GetEnvInt64("SIZE_CAP", cfg.SizeCap)
	cfg.ChanCap = GetEnvInt("CHANNEL_CAPACITY", cfg.ChanCap)
	cfg.LogLevel = GetEnvLogLevel("LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.validate()
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading BEA_CONFIG %s: %w", path, err)
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parsing BEA_CONFIG %s: %w", path, err)
	}

	if overrides.CallCap != nil {
		cfg.CallCap = *overrides.CallCap
	}

	if overrides.ErrorCap != nil {
		cfg.ErrorCap = *overrides.ErrorCap
	}

	if overrides.SizeCap != nil {
		cfg.SizeCap = *overrides.SizeCap
	}

	if overrides.ChanCap != nil {
		cfg.ChanCap = *overrides.ChanCap
	}

	if overrides.LogLevel != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(overrides.LogLevel)); err == nil {
			cfg.LogLevel = lvl
		}
	}

	return nil
}

func (c *Config) validate() error {
	if c.BeaURL == "" {
		return ErrMissingBeaURL
	}

	if _, err := url.Parse(c.BeaURL); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBeaURL, err)
	}

	if c.APIKey == "" {
		return ErrMissingAPIKey
	}

	if c.BeaData == "" {
		return ErrMissingBeaData
	}

	info, err := os.Stat(c.BeaData)
	if err != nil || !info.IsDir() {
		return ErrBeaDataNotDir
	}

	return nil
}

// GetEnvStr returns a string environment variable value or a default if not set.
//
// Parameters:
//   - key[string]: Name of the environment variable as a string
//   - defaultValue[string]: The default value to return in-case no environment variable is set
//
// Example:
//
//	url := GetEnvStr("BEA_URL", "https://apps.bea.gov/api/data")
func GetEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// GetEnvInt returns an int environment variable value or a default if not set.
//
// Parameters:
//   - key[string]: Name of the environment variable as a string
//   - defaultValue[int]: The default value to return in-case no environment variable is set
//
// Example:
//
//	callCap := GetEnvInt("CALL_CAP", 30)
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}

	return defaultValue
}

// GetEnvInt64 returns an int64 environment variable value or a default if not set.
//
// Parameters:
//   - key[string]: Name of the environment variable as a string
//   - defaultValue[int64]: The default value to return in-case no environment variable is set
//
// Example:
//
//	sizeCap := GetEnvInt64("SIZE_CAP", 100_000_000)
func GetEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if int64Value, err := strconv.ParseInt(value, 10, 64); err == nil {
			return int64Value
		}
	}

	return defaultValue
}

// GetEnvBool returns a bool environment variable value or a default if not set.
// Accepts: "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
//
// Parameters:
//   - key[string]: Name of the environment variable as a string
//   - defaultValue[bool]: The default value to return in-case no environment variable is set
//
// Example:
//
//	overwrite := GetEnvBool("BEA_OVERWRITE", false)
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}

	return defaultValue
}

// GetEnvDuration returns the environment variable value or a default if not set.
//
// Parameters:
//   - key[string]: Name of the environment variable as a string
//   - defaultValue[time.Duration]: The default value to return in-case no environment variable is set
//
// Example:
//
//	timeout := GetEnvDuration("BEA_HTTP_TIMEOUT", 2*time.Minute)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}

	return defaultValue
}

// GetEnvLogLevel returns the environment variable value or a default if not set.
//
// Parameters:
//   - key[string]: Name of the environment variable as a string
//   - defaultValue[slog.Level]: The default value to return in-case no environment variable is set
//
// Example:
//
//	l := GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo)
func GetEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "debug":
			return slog.LevelDebug
		case "info":
			return slog.LevelInfo
		case "warn", "warning":
			return slog.LevelWarn
		case "error":
			return slog.LevelError
		}
	}

	return defaultValue
}

// ParseCommaSeparatedList parses a comma-separated string into a slice of
// trimmed strings. Empty values are filtered out. Used to parse the CLI's
// -individual flag into the set of ParameterName values a crawl should
// enumerate individually instead of "ALL".
func ParseCommaSeparatedList(input string) []string {
	if input == "" {
		return []string{}
	}

	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
