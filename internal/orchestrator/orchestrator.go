package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"molard/internal/config"
	"molard/pkg/logging"
)

const subsystem = "Orchestrator"

// Orchestrator starts and stops the database and backend in order.
type Orchestrator struct {
	db      DatabaseService
	backend BackendService
	cfg     Config

	opMu sync.Mutex // serializes StartServices and StopServices

	mu        sync.RWMutex
	lifecycle Lifecycle
	state     ServiceState
}

// New creates an orchestrator in the Stopped state. Nothing is started.
func New(db DatabaseService, backend BackendService, cfg Config) *Orchestrator {
	return &Orchestrator{
		db:        db,
		backend:   backend,
		cfg:       cfg,
		lifecycle: LifecycleStopped,
		state: ServiceState{
			Database: DatabaseState{Initialized: db.Initialized()},
		},
	}
}

// Lifecycle returns the current lifecycle state.
func (o *Orchestrator) Lifecycle() Lifecycle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lifecycle
}

// State returns a copy of the service state.
func (o *Orchestrator) State() ServiceState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orchestrator) setLifecycle(l Lifecycle) {
	o.mu.Lock()
	prev := o.lifecycle
	o.lifecycle = l
	o.mu.Unlock()
	if prev != l {
		logging.Debug(subsystem, "Lifecycle %s -> %s", prev, l)
	}
}

func (o *Orchestrator) updateState(fn func(*ServiceState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.state)
}

// StartServices starts the database, waits the ready grace period, then
// starts the backend. A database failure means the backend is never tried.
// Calling it while Running does nothing.
func (o *Orchestrator) StartServices(ctx context.Context) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	if o.Lifecycle() == LifecycleRunning {
		logging.Debug(subsystem, "Services already running")
		return nil
	}
	o.setLifecycle(LifecycleStarting)

	if !o.State().Database.Running {
		if err := o.db.Start(ctx); err != nil {
			o.failStart()
			return fmt.Errorf("start database: %w", err)
		}
		o.updateState(func(s *ServiceState) {
			s.Database.Running = true
			s.Database.Initialized = o.db.Initialized()
		})

		logging.Info(subsystem, "Waiting %s for the database to accept connections", o.cfg.ReadyGrace)
		if err := sleepContext(ctx, o.cfg.ReadyGrace); err != nil {
			o.failStart()
			return fmt.Errorf("waiting for database: %w", err)
		}
	}

	if !o.State().Backend.Running {
		if err := o.backend.Start(ctx); err != nil {
			o.failStart()
			return fmt.Errorf("start backend: %w", err)
		}
		o.updateState(func(s *ServiceState) { s.Backend.Running = true })
	}

	o.setLifecycle(LifecycleRunning)
	logging.Info(subsystem, "All services started")
	return nil
}

func (o *Orchestrator) failStart() {
	if o.State().anyRunning() {
		o.setLifecycle(LifecyclePartiallyStarted)
		logging.Warn(subsystem, "Services partially started")
		return
	}
	o.setLifecycle(LifecycleStopped)
}

// StopServices stops the backend, then the database, skipping anything this
// orchestrator did not start. It always completes and returns nil; failures
// are logged by the services themselves.
func (o *Orchestrator) StopServices(ctx context.Context) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()

	state := o.State()
	if !state.anyRunning() {
		o.setLifecycle(LifecycleStopped)
		return nil
	}
	o.setLifecycle(LifecycleStopping)

	if state.Backend.Running {
		logging.Info(subsystem, "Stopping backend")
		o.backend.Stop(ctx)
		o.updateState(func(s *ServiceState) { s.Backend.Running = false })
	}
	if state.Database.Running {
		logging.Info(subsystem, "Stopping database")
		o.db.Stop(ctx)
		o.updateState(func(s *ServiceState) { s.Database.Running = false })
	}

	o.setLifecycle(LifecycleStopped)
	logging.Info(subsystem, "All services stopped")
	return nil
}

// Status probes the services relevant to mode. Probes never fail; an
// unreachable service is reported as not running.
func (o *Orchestrator) Status(ctx context.Context, mode config.Mode, serverIP string) Status {
	st := Status{
		Mode:      mode,
		ServerIP:  serverIP,
		APIURL:    config.APIURL(mode, serverIP, o.cfg.BackendPort),
		Lifecycle: o.Lifecycle(),
	}

	if mode == config.ModeServer {
		st.DatabaseRunning = o.db.Probe(ctx)
		st.BackendRunning = o.backend.Probe(ctx, st.APIURL)
		st.AllServicesRunning = st.DatabaseRunning && st.BackendRunning
		if st.Lifecycle == LifecycleStopped {
			// Services left by another process are not owned here; report what the probes see.
			st.Lifecycle = probedLifecycle(st.DatabaseRunning, st.BackendRunning)
		}
		o.updateState(func(s *ServiceState) { s.Database.Initialized = o.db.Initialized() })
		return st
	}

	st.BackendRunning = o.backend.Probe(ctx, st.APIURL)
	st.AllServicesRunning = st.BackendRunning
	return st
}

func probedLifecycle(database, backend bool) Lifecycle {
	switch {
	case database && backend:
		return LifecycleRunning
	case database || backend:
		return LifecyclePartiallyStarted
	default:
		return LifecycleStopped
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
