package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DS"

// InitViper creates a *viper.Viper holding defaults, the config.toml found
// in configDir (DefaultDir when empty) and DS_* environment variables.
//
// Precedence, highest first:
//  1. CLI flags, once bound with BindRegisteredFlags
//  2. Environment variables (DS_MODEL, DS_LOG_DEBUG, ...)
//  3. config.toml
//  4. NewDefaultConfig
//
// The API key additionally falls back to DEEPSEEK_API_KEY.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", envPrefix+"_API_KEY", "DEEPSEEK_API_KEY"); err != nil {
		return nil, fmt.Errorf("config: bind env: %w", err)
	}

	return v, nil
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("model", d.Model)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("max_retries", d.MaxRetries)
	v.SetDefault("session_dir", d.SessionDir)
	v.SetDefault("context", d.ContextGlob)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
}
