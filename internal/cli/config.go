package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/bucketflags/internal/config"
	"github.com/TimurManjosov/bucketflags/internal/flags"
)

// Config is the CLI configuration file.
type Config struct {
	Env         string   `yaml:"env"`
	Source      string   `yaml:"source"`
	Files       []string `yaml:"files,omitempty"`
	DatabaseDSN string   `yaml:"database_dsn,omitempty"`
}

// Overrides are values given on the command line; empty fields are unset.
type Overrides struct {
	Env         string
	Source      string
	Files       []string
	DatabaseDSN string
}

func defaultConfig() *Config {
	return &Config{
		Env:    flags.BaseEnv,
		Source: config.SourceFile,
		Files:  []string{"configs/flags/default.toml"},
	}
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".bucketflags", "config.yaml"), nil
}

// LoadConfig loads the configuration from the default path.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom loads the configuration at path. A missing file yields the
// defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveConfigTo writes cfg to path, creating the directory if needed.
func SaveConfigTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitConfig writes the default config file and returns its path.
func InitConfig() (string, error) {
	path, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return path, SaveConfigTo(path, defaultConfig())
}

// SourceConfig merges the file config with environment variables and
// command-line overrides into a server config limited to the flag source.
// Priority: overrides > environment variables > config file. The env
// override prefix comes from FLAGS_ENV_PREFIX, as it does for the server.
func (c *Config) SourceConfig(o Overrides) *config.Config {
	pick := func(flag, envVar, file string) string {
		if flag != "" {
			return flag
		}
		if v := os.Getenv(envVar); v != "" {
			return v
		}
		return file
	}

	files := c.Files
	if v := os.Getenv("FLAGS_FILES"); v != "" {
		files = config.SplitList(v)
	}
	if len(o.Files) > 0 {
		files = o.Files
	}

	return &config.Config{
		FlagsSource:    pick(o.Source, "FLAGS_SOURCE", c.Source),
		FlagsFiles:     files,
		FlagsEnv:       pick(o.Env, "FLAGS_ENV", c.Env),
		FlagsEnvPrefix: os.Getenv("FLAGS_ENV_PREFIX"),
		DatabaseDSN:    pick(o.DatabaseDSN, "DB_DSN", c.DatabaseDSN),
	}
}
