package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag describes a CLI flag once, so every command that carries it agrees
// on its name, shorthand, default and config key.
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// Flag registry keys.
const (
	FlagAPIKey     = "api-key"
	FlagBaseURL    = "base-url"
	FlagModel      = "model"
	FlagMaxTokens  = "max-tokens"
	FlagTimeout    = "timeout"
	FlagMaxRetries = "max-retries"
	FlagSessionDir = "session-dir"
	FlagDebug      = "debug"
	FlagLogJSON    = "log-json"
	FlagLogFile    = "log-file"
	FlagContext    = "context"
)

// Flags is the registry shared by all ds commands.
var Flags = map[string]Flag{
	FlagAPIKey:     {Name: "api-key", ViperKey: "api_key", Description: "DeepSeek API key (prefer DEEPSEEK_API_KEY)"},
	FlagBaseURL:    {Name: "base-url", ViperKey: "base_url", Description: "API base URL"},
	FlagModel:      {Name: "model", Shorthand: "m", ViperKey: "model", Description: "model (deepseek-chat or deepseek-reasoner)"},
	FlagMaxTokens:  {Name: "max-tokens", ViperKey: "max_tokens", Description: "maximum completion tokens (0 = service default)"},
	FlagTimeout:    {Name: "timeout", ViperKey: "timeout", Description: "time allowed for a full response, or for stream headers"},
	FlagMaxRetries: {Name: "max-retries", ViperKey: "max_retries", Description: "retries for rate-limited or failed requests"},
	FlagSessionDir: {Name: "session-dir", ViperKey: "session_dir", Description: "directory for saved chat sessions"},
	FlagDebug:      {Name: "debug", ViperKey: "log.debug", Description: "enable debug logging"},
	FlagLogJSON:    {Name: "log-json", ViperKey: "log.json", Description: "write logs as JSON"},
	FlagLogFile:    {Name: "log-file", ViperKey: "log.file", Description: "write logs to this file"},
	FlagContext:    {Name: "context", Shorthand: "c", ViperKey: "context", Description: "glob of files to attach as context (repeatable)"},
}

// AllFlags lists every registry key.
var AllFlags = []string{
	FlagAPIKey, FlagBaseURL, FlagModel, FlagMaxTokens, FlagTimeout,
	FlagMaxRetries, FlagSessionDir, FlagDebug, FlagLogJSON, FlagLogFile, FlagContext,
}

// AddFlags registers the named flags on fs with defaults from
// NewDefaultConfig.
func AddFlags(fs *pflag.FlagSet, keys ...string) {
	d := viper.New()
	setViperDefaults(d)

	for _, key := range keys {
		f, ok := Flags[key]
		if !ok {
			continue
		}
		switch key {
		case FlagDebug, FlagLogJSON:
			fs.BoolP(f.Name, f.Shorthand, d.GetBool(f.ViperKey), f.Description)
		case FlagMaxTokens, FlagMaxRetries:
			fs.IntP(f.Name, f.Shorthand, d.GetInt(f.ViperKey), f.Description)
		case FlagTimeout:
			fs.DurationP(f.Name, f.Shorthand, d.GetDuration(f.ViperKey), f.Description)
		case FlagContext:
			fs.StringSliceP(f.Name, f.Shorthand, d.GetStringSlice(f.ViperKey), f.Description)
		default:
			fs.StringP(f.Name, f.Shorthand, d.GetString(f.ViperKey), f.Description)
		}
	}
}

// BindRegisteredFlags binds already-registered flags to viper so that they
// take precedence over environment and file values. Call it after
// InitViper. Flags left at their default do not shadow lower layers.
func BindRegisteredFlags(v *viper.Viper, fs *pflag.FlagSet, keys ...string) {
	for _, key := range keys {
		f, ok := Flags[key]
		if !ok {
			continue
		}
		pf := fs.Lookup(f.Name)
		if pf == nil {
			continue
		}
		_ = v.BindPFlag(f.ViperKey, pf)
	}
}
