// Package config loads the debugctx configuration: the diagnostic-context
// toggles and the logging section.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up by FindConfigFile.
const DefaultFileName = ".debugctx.yaml"

// EnvPrefix prefixes the per-option environment overrides, e.g.
// DEBUGCTX_ONLY_EXPLICIT_CONTEXT=true.
const EnvPrefix = "DEBUGCTX_"

// Config holds all debugctx configuration.
type Config struct {
	DebugContext DebugContext  `yaml:"debug_context"`
	Logging      LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DebugContext: DefaultDebugContext(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; env overrides apply either way.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile is Load without the environment overrides. Use it when the
// result is going to be saved back.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// EnvName returns the environment variable overriding option.
func EnvName(option string) string {
	return EnvPrefix + strings.ToUpper(option)
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	for _, name := range OptionNames() {
		raw, ok := os.LookupEnv(EnvName(name))
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvName(name), raw, err)
		}
		if _, err := c.DebugContext.Set(name, v); err != nil {
			return err
		}
	}

	if os.Getenv("DEBUGCTX_DEBUG") != "" {
		c.Logging.DebugMode = true
	}
	if level := os.Getenv("DEBUGCTX_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// FindConfigFile walks up from dir looking for DefaultFileName, stopping at
// the first directory that has it or a go.mod. It returns the path the file
// has or would have there.
func FindConfigFile(dir string) string {
	original := dir
	for {
		candidate := filepath.Join(dir, DefaultFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Join(original, DefaultFileName)
}
