package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all client configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Client   ClientConfig   `yaml:"client"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
}

// ClientConfig holds behavior settings for the query and session layers
type ClientConfig struct {
	QueryTimeout time.Duration `yaml:"query_timeout"`
	LogLevel     string        `yaml:"log_level"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Database: DatabaseConfig{
			Host:      getEnv("DB_HOST", "localhost"),
			Port:      getEnv("DB_PORT", "8000"),
			Namespace: getEnv("DB_NAMESPACE", "docq"),
			Database:  getEnv("DB_DATABASE", "main"),
			User:      getEnv("DB_USER", "root"),
			Password:  getEnv("DB_PASSWORD", "root"),
		},
		Client: ClientConfig{
			QueryTimeout: getDurationEnv("QUERY_TIMEOUT", 30*time.Second),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// LoadFile reads configuration from the environment and overlays values from
// a YAML file. File values win over environment values; zero-value fields in
// the file leave the environment value in place.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	overlay(cfg, &file)
	return cfg, nil
}

func overlay(base, file *Config) {
	setIf(&base.Database.Host, file.Database.Host)
	setIf(&base.Database.Port, file.Database.Port)
	setIf(&base.Database.Namespace, file.Database.Namespace)
	setIf(&base.Database.Database, file.Database.Database)
	setIf(&base.Database.User, file.Database.User)
	setIf(&base.Database.Password, file.Database.Password)
	setIf(&base.Client.LogLevel, file.Client.LogLevel)
	if file.Client.QueryTimeout != 0 {
		base.Client.QueryTimeout = file.Client.QueryTimeout
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Endpoint returns the websocket URL the driver connects to.
func (d DatabaseConfig) Endpoint() string {
	return fmt.Sprintf("ws://%s:%s/rpc", d.Host, d.Port)
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	if c.Client.QueryTimeout <= 0 {
		errs = append(errs, errors.New("QUERY_TIMEOUT must be positive"))
	}
	switch strings.ToLower(c.Client.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be 'debug', 'info', 'warn', or 'error', got '%s'", c.Client.LogLevel))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
