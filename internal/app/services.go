package app

import (
	"molard/internal/config"
	"molard/internal/loopback"
	"molard/internal/orchestrator"
	"molard/internal/portguard"
	"molard/internal/supervisor"
)

// Services holds all the initialized services
type Services struct {
	Settings     config.Settings
	Database     *supervisor.Database
	Backend      *supervisor.Backend
	Orchestrator *orchestrator.Orchestrator
	Auth         *loopback.Server
}

// InitializeServices wires the supervisor, orchestrator and sign-in server from settings.
func InitializeServices(settings config.Settings) *Services {
	guard := portguard.NewDefault()

	db := supervisor.NewDatabase(settings, supervisor.ExecRunner{}, guard)
	backend := supervisor.NewBackend(settings, guard)

	orch := orchestrator.New(db, backend, orchestrator.Config{
		ReadyGrace:  settings.Database.ReadyGrace,
		BackendPort: settings.Backend.Port,
	})

	return &Services{
		Settings:     settings,
		Database:     db,
		Backend:      backend,
		Orchestrator: orch,
		Auth:         loopback.NewServer(settings.Auth),
	}
}
