package app

import (
	"fmt"
	"os"

	"molard/internal/config"
	"molard/pkg/logging"
)

// Application is the main application structure that bootstraps molard
type Application struct {
	config   *Config
	store    *config.Store
	services *Services
	commands *Commands
}

// NewApplication loads settings and the persisted store and wires the services.
func NewApplication(cfg *Config) (*Application, error) {
	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}
	// Logging starts at debug or info; the settings file may lower it below.
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	logging.InitForCLI(appLogLevel, out)

	var settings config.Settings
	var err error
	if cfg.ConfigPath != "" {
		settings, err = config.LoadSettingsFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load settings from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load settings from path %s: %w", cfg.ConfigPath, err)
		}
		logging.Debug("Bootstrap", "Loaded settings from custom path: %s", cfg.ConfigPath)
	} else {
		settings, err = config.LoadSettings()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load settings")
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		logging.Debug("Bootstrap", "Loaded settings using layered approach")
	}

	if !cfg.Debug && settings.LogLevel != "" {
		logging.InitForCLI(logging.ParseLevel(settings.LogLevel), out)
	}

	storePath := cfg.StorePath
	if storePath == "" {
		storePath, err = config.DefaultStorePath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate state file: %w", err)
		}
	}
	store, err := config.OpenStore(storePath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to open state file")
		return nil, err
	}

	services := InitializeServices(settings)

	return &Application{
		config:   cfg,
		store:    store,
		services: services,
		commands: NewCommands(store, services.Orchestrator, services.Auth),
	}, nil
}

// Commands returns the operation surface used by the CLI and the GUI.
func (a *Application) Commands() *Commands {
	return a.commands
}

// Services returns the wired services.
func (a *Application) Services() *Services {
	return a.services
}
