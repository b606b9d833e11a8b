package app

import (
	"io"
	"os"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// ConfigPath overrides the layered settings files with a single file.
	ConfigPath string

	// StorePath overrides the location of the persisted state file.
	StorePath string

	// LogOutput receives CLI log lines. Defaults to stderr.
	LogOutput io.Writer
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath, storePath string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		StorePath:  storePath,
		LogOutput:  os.Stderr,
	}
}
