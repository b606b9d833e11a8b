package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary config file
func createTempConfigFile(t *testing.T, dir string, filename string, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// withConfigPaths points the layered loader at tempDir for the duration of a test.
func withConfigPaths(t *testing.T, userPath, projectPath string) {
	t.Helper()
	originalUser := getUserConfigPath
	originalProject := getProjectConfigPath
	originalHome := osUserHomeDir
	originalExe := osExecutable
	t.Cleanup(func() {
		getUserConfigPath = originalUser
		getProjectConfigPath = originalProject
		osUserHomeDir = originalHome
		osExecutable = originalExe
	})

	home := t.TempDir()
	getUserConfigPath = func() (string, error) { return userPath, nil }
	getProjectConfigPath = func() (string, error) { return projectPath, nil }
	osUserHomeDir = func() (string, error) { return home, nil }
	osExecutable = func() (string, error) { return "/opt/molard/bin/molard", nil }
}

func TestLoadSettings_DefaultOnly(t *testing.T) {
	tempDir := t.TempDir()
	withConfigPaths(t,
		filepath.Join(tempDir, "non-existent-user.yaml"),
		filepath.Join(tempDir, "non-existent-project.yaml"))

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePort, s.Database.Port)
	assert.Equal(t, DefaultBackendPort, s.Backend.Port)
	assert.Equal(t, DefaultCallbackPort, s.Auth.CallbackPort)
	assert.Equal(t, 300*time.Second, s.Auth.Timeout)
	assert.Equal(t, 3*time.Second, s.Database.ReadyGrace)
	assert.Equal(t, filepath.Join("/opt/molard/bin", "resources"), s.ResourceDir)
	assert.Equal(t, "postgres-data", filepath.Base(s.DataDir))
	assert.Equal(t, "postgres.log", filepath.Base(s.Database.LogFile))
	assert.Equal(t, "backend.pid", filepath.Base(s.Backend.PIDFile))
	assert.Equal(t, filepath.Dir(s.Database.LogFile), filepath.Dir(s.Backend.PIDFile))
}

func TestLoadSettings_UserThenProjectOverride(t *testing.T) {
	tempDir := t.TempDir()
	userPath := createTempConfigFile(t, tempDir, "user/config.yaml", `
resourceDir: /srv/resources
database:
  port: 5433
  password: secret
auth:
  timeout: 2m
`)
	projectPath := createTempConfigFile(t, tempDir, "project/config.yaml", `
database:
  port: 6543
backend:
  binary: api-server
  healthTimeout: 500ms
  pidFile: /run/molard/backend.pid
`)
	withConfigPaths(t, userPath, projectPath)

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "/srv/resources", s.ResourceDir)
	assert.Equal(t, 6543, s.Database.Port, "project layer wins")
	assert.Equal(t, "secret", s.Database.Password, "user layer survives when project is silent")
	assert.Equal(t, DefaultDatabaseUser, s.Database.User)
	assert.Equal(t, 2*time.Minute, s.Auth.Timeout)
	assert.Equal(t, "api-server", s.Backend.Binary)
	assert.Equal(t, 500*time.Millisecond, s.Backend.HealthTimeout)
	assert.Equal(t, "/run/molard/backend.pid", s.Backend.PIDFile)
}

func TestLoadSettings_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	userPath := createTempConfigFile(t, tempDir, "user.yaml", "database: [unclosed")
	withConfigPaths(t, userPath, filepath.Join(tempDir, "missing.yaml"))

	_, err := LoadSettings()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading user config")
}

func TestLoadSettingsFromPath(t *testing.T) {
	tempDir := t.TempDir()
	withConfigPaths(t, "", "")
	path := createTempConfigFile(t, tempDir, "explicit.yaml", `
dataDir: /data/pg
backend:
  port: 9000
`)

	s, err := LoadSettingsFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/pg", s.DataDir)
	assert.Equal(t, 9000, s.Backend.Port)
	assert.Equal(t, DefaultDatabasePort, s.Database.Port)

	_, err = LoadSettingsFromPath(filepath.Join(tempDir, "nope.yaml"))
	assert.Error(t, err)
}

func TestAPIURL(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		serverIP string
		want     string
	}{
		{"client with ip", ModeClient, "10.0.0.5", "http://10.0.0.5:8000"},
		{"client without ip", ModeClient, "", "http://127.0.0.1:8000"},
		{"server ignores stored ip", ModeServer, "10.0.0.5", "http://127.0.0.1:8000"},
		{"client ipv6", ModeClient, "fe80::1", "http://[fe80::1]:8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, APIURL(tt.mode, tt.serverIP, 8000))
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("server")
	require.NoError(t, err)
	assert.Equal(t, ModeServer, m)

	_, err = ParseMode("hybrid")
	assert.Error(t, err)
}
