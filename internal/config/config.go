// Package config loads this service's ambient settings the same way
// the teacher obfuscator loads its own: a YAML file plus environment
// overrides, merged onto documented defaults. Unlike the teacher
// (whose LoadConfig read YAML directly and left viper's env-binding
// machinery unwired), this version drives the whole merge through a
// viper.Viper instance so PHPINTEL_-prefixed environment variables
// actually take effect.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every ambient setting the service façade, diagnostics
// coordinator, and symbol indexer read at startup. Struct tags control
// how viper/yaml map file keys and environment variables onto fields.
type Config struct {
	// General behavior
	Silent    bool `mapstructure:"silent" yaml:"silent"`           // suppress informational messages
	DebugMode bool `mapstructure:"debug_mode" yaml:"debug_mode"`   // verbose debug logging

	// ParserMode selects the PHP dialect version.Version targets,
	// "<major>.<minor>" (e.g. "8.1"); see ParserVersion.
	ParserMode string `mapstructure:"parser_mode" yaml:"parser_mode"`

	// SkipPaths lists glob patterns excluded from a workspace-wide
	// discover walk (vendor trees, VCS metadata, backups).
	SkipPaths []string `mapstructure:"skip" yaml:"skip"`

	// MaxCompletions caps the item count a completions request returns.
	MaxCompletions int `mapstructure:"max_completions" yaml:"max_completions"`

	// DiagnosticsWaitMS is the debounce quiescence window, in
	// milliseconds, before a changed document is re-diagnosed.
	DiagnosticsWaitMS int `mapstructure:"diagnostics_wait_ms" yaml:"diagnostics_wait_ms"`

	// DiagnosticsMaxItems caps the diagnostics payload per publish.
	DiagnosticsMaxItems int `mapstructure:"diagnostics_max_items" yaml:"diagnostics_max_items"`
}

// ParserVersion parses ParserMode into the version.Version the parser
// configuration expects, falling back to PHP 8.1 (the same dialect
// internal/document.New uses for a nil version) when it is empty or
// malformed.
func (c *Config) ParserVersion() *version.Version {
	major, minor, ok := parseDotted(c.ParserMode)
	if !ok {
		return &version.Version{Major: 8, Minor: 1}
	}
	return &version.Version{Major: uint64(major), Minor: uint64(minor)}
}

// DiagnosticsWait returns DiagnosticsWaitMS as a time.Duration.
func (c *Config) DiagnosticsWait() time.Duration {
	return time.Duration(c.DiagnosticsWaitMS) * time.Millisecond
}

func parseDotted(s string) (major, minor int, ok bool) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	maj, err1 := strconv.Atoi(parts[0])
	min, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return maj, min, true
}

// Testing suppresses PrintInfo output during tests, mirroring the
// teacher's package-level testing switch.
var Testing bool

// PrintInfo prints an informational message, respecting Testing.
func PrintInfo(format string, args ...interface{}) {
	if !Testing {
		fmt.Printf(format, args...)
	}
}

// defaults mirrors DefaultConfig as the lowercase key/value pairs
// viper.SetDefault expects; keys here must stay in sync with the
// mapstructure tags above.
var defaults = map[string]interface{}{
	"silent":                false,
	"debug_mode":            false,
	"parser_mode":           "8.1",
	"skip":                  []string{"vendor/*", "*.git*", "*.svn*"},
	"max_completions":       100,
	"diagnostics_wait_ms":   1000,
	"diagnostics_max_items": 100,
}

// DefaultConfig returns a Config populated with documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Silent:              false,
		DebugMode:           false,
		ParserMode:          "8.1",
		SkipPaths:           []string{"vendor/*", "*.git*", "*.svn*"},
		MaxCompletions:      100,
		DiagnosticsWaitMS:   1000,
		DiagnosticsMaxItems: 100,
	}
}

const envPrefix = "PHPINTEL"

// bindEnv registers key (and every key under it, for nested lookups)
// against its PHPINTEL_-prefixed environment variable, so e.g.
// max_completions is overridable via PHPINTEL_MAX_COMPLETIONS without
// needing the key present in any config file.
func bindEnv(v *viper.Viper, key string) {
	envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	_ = v.BindEnv(key, envKey)
}

// LoadConfig reads configuration from configPath (searching the
// working directory for "phpintel.yaml" when configPath is empty),
// overlays PHPINTEL_-prefixed environment variables, and returns the
// merged result. A missing file is not an error: LoadConfig falls back
// to defaults plus environment overrides, matching the teacher's
// "no config file, use defaults" behavior.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	for key, val := range defaults {
		v.SetDefault(key, val)
		bindEnv(v, key)
	}

	searchedDefault := false
	if configPath == "" {
		configPath = "phpintel.yaml"
		searchedDefault = true
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: checking %s: %w", configPath, err)
	} else if !searchedDefault {
		return nil, fmt.Errorf("config: specified config file not found: %s", configPath)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling merged configuration: %w", err)
	}
	if !cfg.Silent {
		if v.ConfigFileUsed() != "" {
			PrintInfo("Info: loaded configuration from %s\n", v.ConfigFileUsed())
		} else {
			PrintInfo("Info: no configuration file found, using defaults and environment overrides\n")
		}
	}
	return cfg, nil
}

// SaveConfig writes the default configuration to path as YAML,
// creating any missing parent directory.
func SaveConfig(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshalling default configuration: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating directory for %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	PrintInfo("Info: saved default configuration to %s\n", path)
	return nil
}
