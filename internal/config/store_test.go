package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "molard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_MissingFileHasDefaults(t *testing.T) {
	s, err := OpenStore(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ModeClient, s.Mode())
	_, ok := s.ServerIP()
	assert.False(t, ok)
	assert.False(t, s.FirstRunComplete())
}

func TestStore_SaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.yaml")
	s, err := OpenStore(path)
	require.NoError(t, err)

	s.SetMode(ModeServer)
	s.SetServerIP("192.168.1.20")
	s.SetFirstRunComplete(true)
	require.NoError(t, s.Save())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	assert.Equal(t, ModeServer, reopened.Mode())
	ip, ok := reopened.ServerIP()
	assert.True(t, ok)
	assert.Equal(t, "192.168.1.20", ip)
	assert.True(t, reopened.FirstRunComplete())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first_run_complete: true")
	assert.Contains(t, string(data), "server_ip: 192.168.1.20")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestStore_UnsavedChangesAreNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	s, err := OpenStore(path)
	require.NoError(t, err)

	s.SetMode(ModeServer)

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	assert.Equal(t, ModeClient, reopened.Mode())
}

func TestOpenStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [server"), 0o644))

	_, err := OpenStore(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConfigStore))
}

func TestStore_UnknownModeFallsBackToClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: hybrid\n"), 0o644))

	s, err := OpenStore(path)
	require.NoError(t, err)
	assert.Equal(t, ModeClient, s.Mode())
}
