package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Mode selects the topology the desktop application runs in.
type Mode string

const (
	// ModeServer owns the local database engine and API backend.
	ModeServer Mode = "server"
	// ModeClient talks to a remote instance.
	ModeClient Mode = "client"
)

// ParseMode validates a mode string coming from the GUI or the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeServer, ModeClient:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q (expected %q or %q)", s, ModeServer, ModeClient)
	}
}

// Settings is the top-level static configuration structure for molard.
type Settings struct {
	ResourceDir string `yaml:"resourceDir,omitempty"` // Directory holding postgres/ and the backend binary
	DataDir     string `yaml:"dataDir,omitempty"`     // Postgres data directory, initialized on first start
	LogLevel    string `yaml:"logLevel,omitempty"`    // debug, info, warn, error

	Database DatabaseSettings `yaml:"database"`
	Backend  BackendSettings  `yaml:"backend"`
	Auth     AuthSettings     `yaml:"auth"`
}

// DatabaseSettings configures the local database engine.
type DatabaseSettings struct {
	Port         int           `yaml:"port,omitempty"`
	Name         string        `yaml:"name,omitempty"`
	User         string        `yaml:"user,omitempty"` // Superuser created by initdb
	Password     string        `yaml:"password,omitempty"`
	LogFile      string        `yaml:"logFile,omitempty"`      // Engine log passed to pg_ctl -l
	StartTimeout time.Duration `yaml:"startTimeout,omitempty"` // Passed to pg_ctl -t
	ReadyGrace   time.Duration `yaml:"readyGrace,omitempty"`   // Pause between database and backend start
}

// BackendSettings configures the API backend sidecar.
type BackendSettings struct {
	Port          int           `yaml:"port,omitempty"`
	Binary        string        `yaml:"binary,omitempty"` // File name under ResourceDir
	HealthTimeout time.Duration `yaml:"healthTimeout,omitempty"`
	StopGrace     time.Duration `yaml:"stopGrace,omitempty"` // SIGTERM to SIGKILL delay
	PIDFile       string        `yaml:"pidFile,omitempty"`   // Lets a later invocation find and stop the backend
}

// AuthSettings configures the loopback sign-in listener.
type AuthSettings struct {
	CallbackPort int           `yaml:"callbackPort,omitempty"`
	Timeout      time.Duration `yaml:"timeout,omitempty"`
	BrowserDelay time.Duration `yaml:"browserDelay,omitempty"`
}

// APIURL resolves the API base URL for a mode. Server mode always targets the
// local backend; client mode targets the stored server IP and falls back to
// loopback when none is set.
func APIURL(mode Mode, serverIP string, port int) string {
	host := "127.0.0.1"
	if mode == ModeClient && serverIP != "" {
		host = serverIP
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}
