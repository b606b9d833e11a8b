package orchestrator

import (
	"context"
	"time"

	"molard/internal/config"
)

// Lifecycle is the orchestrator-level state of the local services.
type Lifecycle string

const (
	LifecycleStopped          Lifecycle = "Stopped"
	LifecycleStarting         Lifecycle = "Starting"
	LifecycleRunning          Lifecycle = "Running"
	LifecyclePartiallyStarted Lifecycle = "PartiallyStarted"
	LifecycleStopping         Lifecycle = "Stopping"
)

// DatabaseService is the database side of the supervisor.
type DatabaseService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	Probe(ctx context.Context) bool
	Initialized() bool
}

// BackendService is the API backend side of the supervisor.
type BackendService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	Probe(ctx context.Context, apiBaseURL string) bool
}

// Config holds the orchestrator's timing and addressing settings.
type Config struct {
	ReadyGrace  time.Duration // Pause between database start and backend start
	BackendPort int           // Used to build the API URL reported by Status
}

// DatabaseState is what the orchestrator knows about the database.
type DatabaseState struct {
	Initialized bool
	Running     bool
}

// BackendState is what the orchestrator knows about the backend.
type BackendState struct {
	Running bool
}

// ServiceState records which sub-services this orchestrator started.
type ServiceState struct {
	Database DatabaseState
	Backend  BackendState
}

func (s ServiceState) anyRunning() bool {
	return s.Database.Running || s.Backend.Running
}

// Status is the answer to a status query from the GUI or the CLI.
type Status struct {
	Mode               config.Mode `json:"mode"`
	ServerIP           string      `json:"server_ip,omitempty"`
	APIURL             string      `json:"api_url"`
	DatabaseRunning    bool        `json:"database_running"`
	BackendRunning     bool        `json:"backend_running"`
	AllServicesRunning bool        `json:"all_services_running"`
	Lifecycle          Lifecycle   `json:"lifecycle"`
}
