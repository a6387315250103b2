// Package config provides configuration management for the versioning backend.
//
// Configuration is an explicit value built by the process entry point and
// passed to the components that need it. It is read from an optional YAML
// file, then overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// GitHubConfig holds the GitHub App installation credentials.
type GitHubConfig struct {
	// BaseURL defaults to https://api.github.com.
	BaseURL        string `yaml:"base_url"`
	AppID          int64  `yaml:"app_id"`
	InstallationID int64  `yaml:"installation_id"`
	// PrivateKey is the PEM encoded App private key.
	PrivateKey string `yaml:"private_key"`
	// PrivateKeyFile is read when PrivateKey is empty.
	PrivateKeyFile string `yaml:"private_key_file"`
	ClientSecret   string `yaml:"client_secret"`
}

// StoreConfig selects the build record backend.
type StoreConfig struct {
	// DatabaseURL selects the Postgres backend. Empty means in-memory.
	DatabaseURL string `yaml:"database_url"`
	// PropagateCreateErrors returns storage errors from create instead of
	// logging and dropping them.
	PropagateCreateErrors bool `yaml:"propagate_create_errors"`
	// GuardPublished rejects failure/publish reports for published builds.
	GuardPublished bool `yaml:"guard_published"`
}

// EventsConfig configures lifecycle event publishing.
type EventsConfig struct {
	// Brokers is the Redpanda/Kafka seed list. Empty disables publishing.
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config holds the application configuration.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	Store  StoreConfig  `yaml:"store"`
	Events EventsConfig `yaml:"events"`
	Log    LogConfig    `yaml:"log"`
}

// Load reads the YAML file at path (skipped when path is empty) and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only, using
// VERSIONING_CONFIG as an optional file path.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("VERSIONING_CONFIG"))
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFile parses a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "file", Reason: "cannot read " + path, Err: err}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Field: "file", Reason: "invalid YAML in " + path, Err: err}
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int64) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &ConfigError{Field: key, Reason: "must be an integer", Err: err}
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigError{Field: key, Reason: "must be a boolean", Err: err}
		}
		*dst = b
		return nil
	}

	str("GITHUB_API_URL", &c.GitHub.BaseURL)
	if err := integer("GITHUB_APP_ID", &c.GitHub.AppID); err != nil {
		return err
	}
	if err := integer("GITHUB_INSTALLATION_ID", &c.GitHub.InstallationID); err != nil {
		return err
	}
	str("GITHUB_PRIVATE_KEY", &c.GitHub.PrivateKey)
	str("GITHUB_PRIVATE_KEY_FILE", &c.GitHub.PrivateKeyFile)
	str("GITHUB_CLIENT_SECRET", &c.GitHub.ClientSecret)

	str("DATABASE_URL", &c.Store.DatabaseURL)
	if err := boolean("PROPAGATE_CREATE_ERRORS", &c.Store.PropagateCreateErrors); err != nil {
		return err
	}
	if err := boolean("GUARD_PUBLISHED", &c.Store.GuardPublished); err != nil {
		return err
	}

	if v, ok := lookup("REDPANDA_BROKERS"); ok && v != "" {
		c.Events.Brokers = splitList(v)
	}
	str("BUILD_EVENTS_TOPIC", &c.Events.Topic)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return nil
}

func (c *Config) applyDefaults() {
	if c.Events.Topic == "" {
		c.Events.Topic = "ci_build_events"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks that all App credentials are present and resolves
// PrivateKeyFile into PrivateKey.
func (g *GitHubConfig) Validate() error {
	if g.AppID <= 0 {
		return &ConfigError{Field: "github.app_id", Reason: "is required"}
	}
	if g.InstallationID <= 0 {
		return &ConfigError{Field: "github.installation_id", Reason: "is required"}
	}
	if g.PrivateKey == "" && g.PrivateKeyFile != "" {
		data, err := os.ReadFile(g.PrivateKeyFile)
		if err != nil {
			return &ConfigError{Field: "github.private_key_file", Reason: "cannot read key file", Err: err}
		}
		g.PrivateKey = string(data)
	}
	if strings.TrimSpace(g.PrivateKey) == "" {
		return &ConfigError{Field: "github.private_key", Reason: "is required"}
	}
	if g.ClientSecret == "" {
		return &ConfigError{Field: "github.client_secret", Reason: "is required"}
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
