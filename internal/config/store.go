package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "molard/internal/errors"

	"gopkg.in/yaml.v3"
)

const stateFileName = "state.yaml"

// persistedState is the on-disk shape of the store. Keys match the ones the
// GUI has always used.
type persistedState struct {
	Mode             Mode    `yaml:"mode,omitempty"`
	ServerIP         *string `yaml:"server_ip,omitempty"`
	FirstRunComplete bool    `yaml:"first_run_complete"`
}

// Store is the persisted key/value state shared with the GUI layer.
// Setters only touch memory; Save makes them durable.
type Store struct {
	mu    sync.RWMutex
	path  string
	state persistedState
}

// DefaultStorePath returns the state file under the user config directory.
func DefaultStorePath() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, stateFileName), nil
}

// OpenStore loads the store at path. A missing file yields the defaults.
func OpenStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, apperrors.ConfigStore("read", path, err)
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, apperrors.ConfigStore("parse", path, err)
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Mode returns the stored mode, ModeClient when unset or unrecognized.
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, err := ParseMode(string(s.state.Mode)); err == nil {
		return m
	}
	return ModeClient
}

// SetMode stages a mode change.
func (s *Store) SetMode(m Mode) {
	s.mu.Lock()
	s.state.Mode = m
	s.mu.Unlock()
}

// ServerIP returns the remote server IP and whether one is stored.
func (s *Store) ServerIP() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.ServerIP == nil {
		return "", false
	}
	return *s.state.ServerIP, true
}

// SetServerIP stages a server IP change.
func (s *Store) SetServerIP(ip string) {
	s.mu.Lock()
	s.state.ServerIP = &ip
	s.mu.Unlock()
}

// FirstRunComplete reports whether setup has been completed.
func (s *Store) FirstRunComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FirstRunComplete
}

// SetFirstRunComplete stages the first-run flag.
func (s *Store) SetFirstRunComplete(v bool) {
	s.mu.Lock()
	s.state.FirstRunComplete = v
	s.mu.Unlock()
}

// Save writes the state to a temporary file next to the target and renames it
// into place, so readers never observe a partial file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := yaml.Marshal(&s.state)
	s.mu.RUnlock()
	if err != nil {
		return apperrors.ConfigStore("encode", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.ConfigStore("create directory for", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, stateFileName+".*.tmp")
	if err != nil {
		return apperrors.ConfigStore("write", s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.ConfigStore("write", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperrors.ConfigStore("sync", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperrors.ConfigStore("write", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperrors.ConfigStore("replace", s.path, err)
	}
	return nil
}
