// Package config loads server configuration from environment variables and an
// optional .env file using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all server configuration.
// Priority: environment variables > .env file > defaults.
type Config struct {
	AppEnv         string   // Application environment (dev, staging, prod)
	HTTPAddr       string   // HTTP server bind address (e.g. ":8080")
	MetricsAddr    string   // Metrics server bind address
	LogLevel       string   // zerolog level name
	LogFormat      string   // json or console
	FlagsSource    string   // Where flag definitions come from (file or postgres)
	FlagsFiles     []string // TOML settings files, merged in order
	FlagsEnv       string   // Settings section layered over [default]
	FlagsEnvPrefix string   // Prefix of per-field environment overrides
	DatabaseDSN    string   // PostgreSQL connection string (FLAGS_SOURCE=postgres)
	RateLimitPerIP int      // Requests per minute per client IP; 0 disables
	SessionParam   string   // Query parameter carrying the session id
}

// Load reads configuration. It does not validate; call Validate before use.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env") // optional
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	setConfigDefaults(v)

	return &Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPAddr:       v.GetString("APP_HTTP_ADDR"),
		MetricsAddr:    v.GetString("METRICS_ADDR"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		FlagsSource:    v.GetString("FLAGS_SOURCE"),
		FlagsFiles:     SplitList(v.GetString("FLAGS_FILES")),
		FlagsEnv:       v.GetString("FLAGS_ENV"),
		FlagsEnvPrefix: v.GetString("FLAGS_ENV_PREFIX"),
		DatabaseDSN:    v.GetString("DB_DSN"),
		RateLimitPerIP: v.GetInt("RATE_LIMIT_PER_IP"),
		SessionParam:   v.GetString("SESSION_PARAM"),
	}, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("FLAGS_SOURCE", SourceFile)
	v.SetDefault("FLAGS_FILES", "configs/flags/default.toml")
	v.SetDefault("FLAGS_ENV", "default")
	v.SetDefault("FLAGS_ENV_PREFIX", "BUCKETFLAGS")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("RATE_LIMIT_PER_IP", 600)
	v.SetDefault("SESSION_PARAM", "sid")
}

// SplitList splits a comma separated list, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidationError describes the first configuration problem found.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns the first ValidationError.
//
// Rules:
//  1. FLAGS_SOURCE is "file" or "postgres"
//  2. file source needs at least one FLAGS_FILES entry
//  3. postgres source needs DB_DSN
//  4. APP_HTTP_ADDR, METRICS_ADDR and SESSION_PARAM are non-empty
//  5. RATE_LIMIT_PER_IP is not negative
//  6. LOG_LEVEL is a zerolog level, LOG_FORMAT is json or console
func (c *Config) Validate() error {
	switch c.FlagsSource {
	case SourceFile:
		if len(c.FlagsFiles) == 0 {
			return ValidationError{Field: "FLAGS_FILES", Message: "at least one settings file is required when FLAGS_SOURCE=file"}
		}
	case SourcePostgres:
		if c.DatabaseDSN == "" {
			return ValidationError{Field: "DB_DSN", Message: "database DSN is required when FLAGS_SOURCE=postgres"}
		}
	default:
		return ValidationError{
			Field:   "FLAGS_SOURCE",
			Message: fmt.Sprintf("must be '%s' or '%s', got '%s'", SourceFile, SourcePostgres, c.FlagsSource),
		}
	}

	if c.HTTPAddr == "" {
		return ValidationError{Field: "APP_HTTP_ADDR", Message: "HTTP server address cannot be empty"}
	}
	if c.MetricsAddr == "" {
		return ValidationError{Field: "METRICS_ADDR", Message: "metrics server address cannot be empty"}
	}
	if strings.TrimSpace(c.SessionParam) == "" {
		return ValidationError{Field: "SESSION_PARAM", Message: "session query parameter cannot be empty"}
	}
	if c.RateLimitPerIP < 0 {
		return ValidationError{Field: "RATE_LIMIT_PER_IP", Message: "must not be negative"}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return ValidationError{Field: "LOG_LEVEL", Message: err.Error()}
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return ValidationError{Field: "LOG_FORMAT", Message: fmt.Sprintf("must be 'json' or 'console', got '%s'", c.LogFormat)}
	}
	return nil
}
