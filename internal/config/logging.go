package config

// LoggingConfig configures the category file logger. The logging package
// reads this same section straight from .forge/config.yaml at startup, so
// field names here and there must stay in sync.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	DebugMode  bool            `yaml:"debug_mode"` // master toggle, false = no logging
	Categories map[string]bool `yaml:"categories"` // per-category toggles
}
