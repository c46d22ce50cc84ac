// Package config loads skillreg settings from flags, SKILLREG_* environment
// variables and an optional config.yaml, using viper.
package config

import (
	"net"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the complete skillreg configuration
type Config struct {
	LogLevel  string        `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFormat string        `mapstructure:"log_format" json:"log_format" yaml:"log_format"`
	Skills    SkillsConfig  `mapstructure:"skills" json:"skills" yaml:"skills"`
	Serve     ServeConfig   `mapstructure:"serve" json:"serve" yaml:"serve"`
	Watch     WatchConfig   `mapstructure:"watch" json:"watch" yaml:"watch"`
	Tracing   TracingConfig `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
}

// SkillsConfig controls where and how skills are loaded
type SkillsConfig struct {
	Dir         string   `mapstructure:"dir" json:"dir" yaml:"dir"`
	Extensions  []string `mapstructure:"extensions" json:"extensions" yaml:"extensions"`
	Exclude     []string `mapstructure:"exclude" json:"exclude" yaml:"exclude"`
	Allowed     []string `mapstructure:"allowed" json:"allowed" yaml:"allowed"`
	SkillFile   string   `mapstructure:"skill_file" json:"skill_file" yaml:"skill_file"`
	Concurrency int      `mapstructure:"concurrency" json:"concurrency" yaml:"concurrency"`
}

// ServeConfig holds the HTTP server settings
type ServeConfig struct {
	Host string `mapstructure:"host" json:"host" yaml:"host"`
	Port int    `mapstructure:"port" json:"port" yaml:"port"`
}

// WatchConfig holds the directory watcher settings
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// TracingConfig holds the OpenTelemetry settings
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Sampler string  `mapstructure:"sampler" json:"sampler" yaml:"sampler"`
	Ratio   float64 `mapstructure:"ratio" json:"ratio" yaml:"ratio"`
}

// Defaults are applied before the config file, environment and flags
var Defaults = map[string]any{
	"log_level":          "info",
	"log_format":         "fmt",
	"skills.dir":         "./skills",
	"skills.extensions":  []string{".md", ".markdown"},
	"skills.exclude":     []string{},
	"skills.allowed":     []string{},
	"skills.skill_file":  "SKILL.md",
	"skills.concurrency": 0,
	"serve.host":         "localhost",
	"serve.port":         8080,
	"watch.debounce_ms":  300,
	"tracing.enabled":    false,
	"tracing.sampler":    "ratio",
	"tracing.ratio":      1.0,
}

// InitViper sets the defaults, environment binding and config file search
// paths on v. An explicit configFile replaces the search paths. A missing
// config file is not an error; an unreadable one is.
func InitViper(v *viper.Viper, configFile string) error {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("SKILLREG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.skillreg")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && configFile == "" {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// GetConfigFromViper decodes and validates the configuration held by v
func GetConfigFromViper(v *viper.Viper) (Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return config, errors.Wrap(err, "failed to unmarshal configuration")
	}
	if err := config.Validate(); err != nil {
		return config, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

// Validate validates the configuration values
func (c Config) Validate() error {
	switch c.LogFormat {
	case "fmt", "text", "json":
	default:
		return errors.Errorf("invalid log format '%s', must be one of: fmt, text, json", c.LogFormat)
	}

	if c.Skills.Dir == "" {
		return errors.New("skills directory cannot be empty")
	}
	if len(c.Skills.Extensions) == 0 {
		return errors.New("at least one skill document extension is required")
	}
	if c.Skills.Concurrency < 0 {
		return errors.Errorf("skills concurrency cannot be negative: %d", c.Skills.Concurrency)
	}

	if err := c.Serve.Validate(); err != nil {
		return err
	}

	if c.Watch.DebounceMS < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.Watch.DebounceMS)
	}

	switch c.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		return errors.Errorf("invalid tracing sampler '%s', must be one of: always, never, ratio", c.Tracing.Sampler)
	}
	if c.Tracing.Ratio < 0 || c.Tracing.Ratio > 1 {
		return errors.Errorf("tracing ratio must be between 0 and 1, got %v", c.Tracing.Ratio)
	}

	return nil
}

// Validate validates the server configuration
func (c ServeConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}

	if c.Host != "localhost" && c.Host != "0.0.0.0" {
		if ip := net.ParseIP(c.Host); ip == nil {
			if strings.Contains(c.Host, " ") || strings.Contains(c.Host, ":") {
				return errors.Errorf("invalid host: %s", c.Host)
			}
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	return nil
}
