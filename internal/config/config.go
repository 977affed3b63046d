// Package config loads, validates, and persists forge workspace
// configuration from .forge/config.yaml. Every field has a working default,
// so a missing config file is never an error; FORGE_* environment variables
// override file values after loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the unified workspace configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Tables  TablesConfig  `yaml:"tables"`
	Browser BrowserConfig `yaml:"browser"`
	Store   StoreConfig   `yaml:"store"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// TablesConfig points the classifier at a keyword table pack. An empty pack
// path keeps the built-in tables.
type TablesConfig struct {
	PackPath string `yaml:"pack_path"`
}

// BrowserConfig configures the live page snapshot provider.
type BrowserConfig struct {
	// DebuggerURL attaches to a running browser instead of launching one.
	DebuggerURL string `yaml:"debugger_url"`

	Headless          bool   `yaml:"headless"`
	NavigationTimeout string `yaml:"navigation_timeout"` // e.g. "30s"
	MaxElements       int    `yaml:"max_elements"`
}

// StoreConfig configures the test-case store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// RenderConfig configures script generation.
type RenderConfig struct {
	Framework      string `yaml:"framework"`
	HeaderComments bool   `yaml:"header_comments"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "specforge",
		Version: "1.0.0",

		Tables: TablesConfig{
			PackPath: "",
		},

		Browser: BrowserConfig{
			Headless:          true,
			NavigationTimeout: "30s",
			MaxElements:       200,
		},

		Store: StoreConfig{
			Path: filepath.Join(".forge", "forge.db"),
		},

		Render: RenderConfig{
			Framework:      "playwright-ts",
			HeaderComments: true,
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("FORGE_TABLES"); path != "" {
		c.Tables.PackPath = path
	}
	if path := os.Getenv("FORGE_DB"); path != "" {
		c.Store.Path = path
	}
	if url := os.Getenv("FORGE_BROWSER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if level := os.Getenv("FORGE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	switch os.Getenv("FORGE_DEBUG") {
	case "1", "true":
		c.Logging.DebugMode = true
	case "0", "false":
		c.Logging.DebugMode = false
	}
}

// GetNavigationTimeout returns the browser navigation timeout as a duration.
func (c *Config) GetNavigationTimeout() time.Duration {
	d, err := time.ParseDuration(c.Browser.NavigationTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// validLogLevels lists accepted logging levels.
var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate validates the configuration. Load tolerates anything; Validate
// is for callers that want to refuse a broken workspace file up front.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path not configured")
	}

	if c.Browser.NavigationTimeout != "" {
		if _, err := time.ParseDuration(c.Browser.NavigationTimeout); err != nil {
			return fmt.Errorf("invalid browser navigation_timeout %q: %w", c.Browser.NavigationTimeout, err)
		}
	}
	if c.Browser.MaxElements < 0 {
		return fmt.Errorf("browser max_elements must not be negative: %d", c.Browser.MaxElements)
	}

	if c.Logging.Level != "" {
		valid := false
		for _, l := range validLogLevels {
			if c.Logging.Level == l {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, validLogLevels)
		}
	}

	return nil
}

// FindWorkspaceRoot attempts to find the project root by looking for .forge
// or go.mod. If not found, returns the current working directory.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".forge")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// DefaultPath returns the default path to .forge/config.yaml, anchored at
// the workspace root.
func DefaultPath() string {
	root, err := FindWorkspaceRoot()
	if err != nil {
		return filepath.Join(".forge", "config.yaml")
	}
	return filepath.Join(root, ".forge", "config.yaml")
}
