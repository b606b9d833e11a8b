package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"molard/internal/metrics"
	"molard/internal/tui"
	"molard/pkg/logging"
)

// RunServe starts the local services and blocks until SIGINT/SIGTERM or ctx
// is done, then stops them. A non-empty metricsAddr also exposes /metrics.
func (a *Application) RunServe(ctx context.Context, metricsAddr string) error {
	if metricsAddr != "" {
		stop, err := serveMetrics(metricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	logging.Info("CLI", "Starting local services...")
	if err := a.commands.StartServices(ctx); err != nil {
		// Tear down whatever did come up before reporting.
		_ = a.commands.StopServices(context.Background())
		return err
	}

	logging.Info("CLI", "Services started. Press Ctrl+C to stop all services and exit.")

	// Wait for interrupt signal to gracefully shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logging.Info("CLI", "--- Shutting down services ---")
	return a.commands.StopServices(context.Background())
}

func serveMetrics(addr string) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics", err, "Metrics listener stopped")
		}
	}()
	logging.Info("Metrics", "Serving metrics on http://%s/metrics", ln.Addr())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// RunStop stops the local services whether or not this process started them,
// backend first. Services from an earlier serve are found through the backend
// pid file and the database data directory.
func (a *Application) RunStop(ctx context.Context) error {
	logging.Info("CLI", "Stopping local services...")

	backendStopped := a.services.Backend.StopOrphan(ctx)

	if a.services.Database.Probe(ctx) {
		a.services.Database.Stop(ctx)
	} else {
		logging.Info("CLI", "Database is not running")
	}

	if !backendStopped {
		return fmt.Errorf("backend on port %d is still running", a.services.Settings.Backend.Port)
	}
	return nil
}

// RunSignIn runs the browser sign-in, with the spinner view on out unless noTUI is set.
func (a *Application) RunSignIn(ctx context.Context, out io.Writer, authURL string, noTUI bool) (string, error) {
	if noTUI {
		logging.Info("CLI", "Opening the browser for sign-in, waiting up to %s", a.services.Settings.Auth.Timeout)
		return a.commands.SignIn(ctx, authURL)
	}
	return tui.RunSignIn(ctx, out, authURL, a.services.Settings.Auth.Timeout, a.config.Debug, a.commands.SignIn)
}
