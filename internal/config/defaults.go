package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultDatabasePort     = 5432
	DefaultDatabaseName     = "bdent"
	DefaultDatabaseUser     = "postgres"
	DefaultDatabasePassword = "postgres"
	DefaultBackendPort      = 8000
	DefaultBackendBinary    = "backend"
	DefaultCallbackPort     = 8080

	DefaultStartTimeout  = 10 * time.Second
	DefaultReadyGrace    = 3 * time.Second
	DefaultHealthTimeout = 2 * time.Second
	DefaultStopGrace     = 5 * time.Second
	DefaultAuthTimeout   = 300 * time.Second
	DefaultBrowserDelay  = 100 * time.Millisecond
)

// For mocking in tests
var osExecutable = os.Executable

// GetDefaultSettings returns the compiled-in settings. Paths that depend on the
// machine are left empty and filled in by resolvePaths after all layers merged.
func GetDefaultSettings() Settings {
	return Settings{
		LogLevel: "info",
		Database: DatabaseSettings{
			Port:         DefaultDatabasePort,
			Name:         DefaultDatabaseName,
			User:         DefaultDatabaseUser,
			Password:     DefaultDatabasePassword,
			StartTimeout: DefaultStartTimeout,
			ReadyGrace:   DefaultReadyGrace,
		},
		Backend: BackendSettings{
			Port:          DefaultBackendPort,
			Binary:        DefaultBackendBinary,
			HealthTimeout: DefaultHealthTimeout,
			StopGrace:     DefaultStopGrace,
		},
		Auth: AuthSettings{
			CallbackPort: DefaultCallbackPort,
			Timeout:      DefaultAuthTimeout,
			BrowserDelay: DefaultBrowserDelay,
		},
	}
}

// resolvePaths fills machine-dependent paths: resources next to the
// executable, data and engine log under the user config directory.
func resolvePaths(s Settings) (Settings, error) {
	if s.ResourceDir == "" {
		exe, err := osExecutable()
		if err != nil {
			return s, err
		}
		s.ResourceDir = filepath.Join(filepath.Dir(exe), "resources")
	}
	if s.DataDir == "" || s.Database.LogFile == "" || s.Backend.PIDFile == "" {
		dir, err := GetUserConfigDir()
		if err != nil {
			return s, err
		}
		if s.DataDir == "" {
			s.DataDir = filepath.Join(dir, "postgres-data")
		}
		if s.Database.LogFile == "" {
			s.Database.LogFile = filepath.Join(dir, "postgres.log")
		}
		if s.Backend.PIDFile == "" {
			s.Backend.PIDFile = filepath.Join(dir, "backend.pid")
		}
	}
	return s, nil
}
