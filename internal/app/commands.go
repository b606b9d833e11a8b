package app

import (
	"context"
	"fmt"
	"strings"

	"molard/internal/config"
	apperrors "molard/internal/errors"
	"molard/internal/orchestrator"
	"molard/pkg/logging"
)

// ServiceController starts, stops and reports on the local services.
type ServiceController interface {
	StartServices(ctx context.Context) error
	StopServices(ctx context.Context) error
	Status(ctx context.Context, mode config.Mode, serverIP string) orchestrator.Status
}

// SignInFlow runs the browser sign-in.
type SignInFlow interface {
	SignIn(ctx context.Context, authURL string) (string, error)
}

// Commands is the operation surface the GUI and the CLI call into.
type Commands struct {
	store    *config.Store
	services ServiceController
	auth     SignInFlow

	localIP func() (string, error)
}

// NewCommands creates the command surface over a store and the services.
func NewCommands(store *config.Store, services ServiceController, auth SignInFlow) *Commands {
	return &Commands{
		store:    store,
		services: services,
		auth:     auth,
		localIP:  LocalIP,
	}
}

// GetMode returns the persisted mode, client when unset.
func (c *Commands) GetMode() config.Mode {
	return c.store.Mode()
}

// SetMode validates and persists the mode.
func (c *Commands) SetMode(mode string) error {
	m, err := config.ParseMode(strings.TrimSpace(mode))
	if err != nil {
		return apperrors.BadInput(err.Error())
	}
	c.store.SetMode(m)
	if err := c.store.Save(); err != nil {
		return err
	}
	logging.Info("Commands", "Mode set to %s", m)
	return nil
}

// GetServerIP returns the remote server address, if one was stored.
func (c *Commands) GetServerIP() (string, bool) {
	return c.store.ServerIP()
}

// SetServerIP persists the remote server address.
func (c *Commands) SetServerIP(ip string) error {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return apperrors.BadInput("server address must not be empty")
	}
	c.store.SetServerIP(ip)
	if err := c.store.Save(); err != nil {
		return err
	}
	logging.Info("Commands", "Server address set to %s", ip)
	return nil
}

// StartServices brings up the database and the backend.
func (c *Commands) StartServices(ctx context.Context) error {
	if err := c.services.StartServices(ctx); err != nil {
		logging.Error("Commands", err, "Failed to start services")
		return err
	}
	return nil
}

// StopServices tears down whatever StartServices brought up.
func (c *Commands) StopServices(ctx context.Context) error {
	return c.services.StopServices(ctx)
}

// Status reports on the services for the persisted mode and server address.
func (c *Commands) Status(ctx context.Context) orchestrator.Status {
	serverIP, _ := c.store.ServerIP()
	return c.services.Status(ctx, c.store.Mode(), serverIP)
}

// LocalIP returns this machine's LAN address, for client machines to point at.
func (c *Commands) LocalIP() (string, error) {
	return c.localIP()
}

// IsFirstRun reports whether setup has not been completed yet.
func (c *Commands) IsFirstRun() bool {
	return !c.store.FirstRunComplete()
}

// RecordSetup persists the chosen mode and marks setup done without starting anything.
func (c *Commands) RecordSetup(mode string, serverIP string) (config.Mode, error) {
	m, err := config.ParseMode(strings.TrimSpace(mode))
	if err != nil {
		return "", apperrors.BadInput(err.Error())
	}

	c.store.SetMode(m)
	c.store.SetFirstRunComplete(true)
	if ip := strings.TrimSpace(serverIP); ip != "" {
		c.store.SetServerIP(ip)
	}
	if err := c.store.Save(); err != nil {
		return "", err
	}
	logging.Info("Commands", "Setup complete in %s mode", m)
	return m, nil
}

// CompleteSetup records setup and, in server mode, starts the local services.
// A start failure is returned but the setup stays recorded. The services live
// as long as this process; long-lived callers only.
func (c *Commands) CompleteSetup(ctx context.Context, mode string, serverIP string) error {
	m, err := c.RecordSetup(mode, serverIP)
	if err != nil {
		return err
	}
	if m != config.ModeServer {
		return nil
	}
	if err := c.StartServices(ctx); err != nil {
		return fmt.Errorf("setup saved but services failed to start: %w", err)
	}
	return nil
}

// SignIn opens authURL in the browser and returns the captured redirect fragment.
func (c *Commands) SignIn(ctx context.Context, authURL string) (string, error) {
	return c.auth.SignIn(ctx, authURL)
}
