package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/molard"
	projectConfigDir = ".molard"
	configFileName   = "config.yaml"
)

// LoadSettings loads the molard settings by layering default, user, and project files.
func LoadSettings() (Settings, error) {
	settings := GetDefaultSettings()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
		userSettings, err := loadSettingsFromFile(userConfigPath)
		if err != nil {
			return Settings{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		settings = mergeSettings(settings, userSettings)
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
		projectSettings, err := loadSettingsFromFile(projectConfigPath)
		if err != nil {
			return Settings{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		settings = mergeSettings(settings, projectSettings)
	}

	return resolvePaths(settings)
}

// LoadSettingsFromPath loads defaults overlaid with a single explicit file.
func LoadSettingsFromPath(path string) (Settings, error) {
	fileSettings, err := loadSettingsFromFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return resolvePaths(mergeSettings(GetDefaultSettings(), fileSettings))
}

var getUserConfigPath = func() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadSettingsFromFile loads Settings from a YAML file.
func loadSettingsFromFile(filePath string) (Settings, error) {
	var settings Settings
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Settings{}, err
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// mergeSettings merges 'overlay' into 'base'. Zero values in overlay keep the base value.
func mergeSettings(base, overlay Settings) Settings {
	merged := base

	mergeString(&merged.ResourceDir, overlay.ResourceDir)
	mergeString(&merged.DataDir, overlay.DataDir)
	mergeString(&merged.LogLevel, overlay.LogLevel)

	db := overlay.Database
	mergeInt(&merged.Database.Port, db.Port)
	mergeString(&merged.Database.Name, db.Name)
	mergeString(&merged.Database.User, db.User)
	mergeString(&merged.Database.Password, db.Password)
	mergeString(&merged.Database.LogFile, db.LogFile)
	if db.StartTimeout > 0 {
		merged.Database.StartTimeout = db.StartTimeout
	}
	if db.ReadyGrace > 0 {
		merged.Database.ReadyGrace = db.ReadyGrace
	}

	be := overlay.Backend
	mergeInt(&merged.Backend.Port, be.Port)
	mergeString(&merged.Backend.Binary, be.Binary)
	mergeString(&merged.Backend.PIDFile, be.PIDFile)
	if be.HealthTimeout > 0 {
		merged.Backend.HealthTimeout = be.HealthTimeout
	}
	if be.StopGrace > 0 {
		merged.Backend.StopGrace = be.StopGrace
	}

	auth := overlay.Auth
	mergeInt(&merged.Auth.CallbackPort, auth.CallbackPort)
	if auth.Timeout > 0 {
		merged.Auth.Timeout = auth.Timeout
	}
	if auth.BrowserDelay > 0 {
		merged.Auth.BrowserDelay = auth.BrowserDelay
	}

	return merged
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
