package config

// LoggingConfig controls the global log level. Output format is selected by
// the APP_ENV environment variable.
type LoggingConfig struct {
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}
