package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocumentPath string `yaml:"document"` // .hcl file or directory

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	HTTPPort int `yaml:"http_port"`

	RedisAddr     string `yaml:"redis_addr"` // empty keeps reports in memory
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	ReportHistory int    `yaml:"report_history"`

	NotifyURL       string `yaml:"notify_url"` // empty disables notifications
	NotifyNamespace string `yaml:"notify_namespace"`

	MaxExecutionsPerObject int `yaml:"max_executions_per_object"`
}

// NewConfig fills defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocumentPath == "" {
		return nil, errors.New("DocumentPath is a required configuration field and cannot be empty")
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log-format '%s': must be 'text' or 'json'", cfg.LogFormat)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log-level '%s': must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http-port %d", cfg.HTTPPort)
	}
	if cfg.ReportHistory < 0 {
		return nil, fmt.Errorf("invalid report-history %d: must not be negative", cfg.ReportHistory)
	}
	if cfg.MaxExecutionsPerObject < 0 {
		return nil, fmt.Errorf("invalid max-executions %d: must not be negative", cfg.MaxExecutionsPerObject)
	}
	if cfg.NotifyURL != "" && cfg.NotifyNamespace == "" {
		cfg.NotifyNamespace = "/"
	}

	return &cfg, nil
}

// ReadConfigFile decodes a YAML config file. Unknown keys are rejected.
func ReadConfigFile(path string) (Config, error) {
	var cfg Config
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config file '%s': %w", path, err)
	}
	return cfg, nil
}
