// Package config resolves the ds command line configuration from flags,
// environment variables and config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	deepseek "github.com/hunjixin/deepseek-api"
)

// ErrMissingAPIKey is returned by Validate when no API key was configured.
var ErrMissingAPIKey = errors.New("config: missing API key (set DEEPSEEK_API_KEY or api_key in config.toml)")

// Config is the resolved configuration.
type Config struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	SessionDir  string        `mapstructure:"session_dir"`
	Log         LogConfig     `mapstructure:"log"`
	ContextGlob []string      `mapstructure:"context"`
}

// LogConfig selects the log level, format and destination.
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.deepseek.com",
		Model:      string(deepseek.DefaultModel),
		Timeout:    5 * time.Minute,
		MaxRetries: 2,
	}
}

// Validate checks the fields every network command needs.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if _, ok := deepseek.Model(c.Model).Info(); !ok {
		return fmt.Errorf("config: unknown model %q", c.Model)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("config: max_tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// DefaultDir returns the directory searched for config.toml when no
// override is given, normally ~/.config/ds.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve config dir: %w", err)
	}
	return filepath.Join(base, "ds"), nil
}
