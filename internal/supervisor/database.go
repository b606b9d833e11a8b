package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"molard/internal/config"
	apperrors "molard/internal/errors"
	"molard/internal/metrics"
	"molard/pkg/logging"
)

const databaseSubsystem = "Database"

// Database drives the bundled PostgreSQL engine through its control binaries.
type Database struct {
	settings config.Settings
	runner   Runner
	guard    PortGuard
	compat   CompatibilityProbe

	mu       sync.Mutex
	external bool // a compatible instance we did not start owns the port
}

// NewDatabase returns a Database for settings. Paths in settings must already be resolved.
func NewDatabase(settings config.Settings, runner Runner, guard PortGuard) *Database {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Database{
		settings: settings,
		runner:   runner,
		guard:    guard,
		compat:   PingPostgres,
	}
}

// Initialized reports whether the data directory exists.
func (d *Database) Initialized() bool {
	info, err := os.Stat(d.settings.DataDir)
	return err == nil && info.IsDir()
}

// External reports whether the last Start accepted an instance it did not launch.
func (d *Database) External() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.external
}

// Start brings the engine up, initializing the data directory on first use.
func (d *Database) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.start(ctx)
	metrics.ServiceStartsTotal.WithLabelValues("database", metrics.Outcome(err == nil, "ok", apperrors.GetCode(err))).Inc()
	return err
}

func (d *Database) start(ctx context.Context) error {
	db := d.settings.Database
	d.external = false

	if !d.guard.IsPortFree(db.Port) {
		logging.Warn(databaseSubsystem, "Port %d is in use, attempting to free it", db.Port)
		if !d.guard.FreePort(ctx, db.Port) {
			if err := d.compat(ctx, db); err != nil {
				logging.Warn(databaseSubsystem, "Instance on port %d failed the compatibility probe: %v", db.Port, err)
				return apperrors.PortConflict("database", db.Port)
			}
			logging.Info(databaseSubsystem, "Using compatible database already listening on port %d", db.Port)
			d.external = true
			return nil
		}
	}

	initdb := d.binPath("initdb")
	pgCtl := d.binPath("pg_ctl")
	for _, bin := range []string{initdb, pgCtl} {
		if !isFile(bin) {
			return apperrors.ResourceNotFound("database binary", bin)
		}
	}

	if !d.Initialized() {
		if err := d.initialize(ctx, initdb); err != nil {
			return err
		}
	}

	logging.Info(databaseSubsystem, "Starting database on port %d", db.Port)
	res, err := d.runner.Run(ctx, Command{
		Path: pgCtl,
		Args: []string{
			"start",
			"-D", d.settings.DataDir,
			"-l", db.LogFile,
			"-w",
			"-t", strconv.Itoa(waitSeconds(db.StartTimeout)),
			"-o", fmt.Sprintf("-p %d", db.Port),
		},
		Env:     d.libraryEnv(),
		Timeout: db.StartTimeout + 5*time.Second,
	})
	if err != nil {
		stderr := strings.TrimSpace(res.Stderr)
		if res.ExitCode <= 0 {
			return apperrors.StartFailed("database", stderr, err)
		}
		if perr := d.compat(ctx, db); perr != nil {
			logging.Error(databaseSubsystem, err, "pg_ctl start exited with code %d: %s", res.ExitCode, stderr)
			return apperrors.StartFailed("database", stderr, err)
		}
		logging.Warn(databaseSubsystem, "pg_ctl start exited with code %d but the database answers, continuing", res.ExitCode)
	}

	metrics.SetRunning("database", true)
	d.ensureDatabase(ctx)
	logging.Info(databaseSubsystem, "Database is running")
	return nil
}

// waitSeconds converts the start timeout for pg_ctl -t, which takes whole seconds.
func waitSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

func (d *Database) initialize(ctx context.Context, initdb string) error {
	logging.Info(databaseSubsystem, "Initializing data directory %s", d.settings.DataDir)
	if err := os.MkdirAll(d.settings.DataDir, 0o700); err != nil {
		return apperrors.InitFailed("", fmt.Errorf("create data directory: %w", err))
	}

	res, err := d.runner.Run(ctx, Command{
		Path:    initdb,
		Args:    []string{"-D", d.settings.DataDir, "-U", d.settings.Database.User, "-E", "UTF8"},
		Env:     d.libraryEnv(),
		Timeout: 2 * time.Minute,
	})
	if err != nil {
		// Leave no half-initialized directory behind, or the next start would skip initdb.
		if rmErr := os.RemoveAll(d.settings.DataDir); rmErr != nil {
			logging.Warn(databaseSubsystem, "Failed to remove data directory after initdb failure: %v", rmErr)
		}
		return apperrors.InitFailed(strings.TrimSpace(res.Stderr), err)
	}
	return nil
}

// ensureDatabase creates the application database. Failures are logged only.
func (d *Database) ensureDatabase(ctx context.Context) {
	createdb := d.binPath("createdb")
	if !isFile(createdb) {
		logging.Debug(databaseSubsystem, "createdb not bundled, skipping database creation")
		return
	}
	db := d.settings.Database
	res, err := d.runner.Run(ctx, Command{
		Path:    createdb,
		Args:    []string{"-h", "127.0.0.1", "-p", strconv.Itoa(db.Port), "-U", db.User, db.Name},
		Env:     append(d.libraryEnv(), "PGPASSWORD="+db.Password),
		Timeout: 30 * time.Second,
	})
	switch {
	case err == nil:
		logging.Info(databaseSubsystem, "Created database %s", db.Name)
	case strings.Contains(res.Stderr, "already exists"):
		logging.Debug(databaseSubsystem, "Database %s already exists", db.Name)
	default:
		logging.Warn(databaseSubsystem, "createdb %s failed: %v: %s", db.Name, err, strings.TrimSpace(res.Stderr))
	}
}

// Stop shuts the engine down in fast mode. Errors are logged and swallowed.
func (d *Database) Stop(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.external {
		logging.Info(databaseSubsystem, "Leaving external database on port %d running", d.settings.Database.Port)
		d.external = false
		return
	}

	pgCtl := d.binPath("pg_ctl")
	if !isFile(pgCtl) {
		logging.Warn(databaseSubsystem, "Cannot stop database, %s not found", pgCtl)
		return
	}

	logging.Info(databaseSubsystem, "Stopping database")
	res, err := d.runner.Run(ctx, Command{
		Path:    pgCtl,
		Args:    []string{"stop", "-D", d.settings.DataDir, "-m", "fast"},
		Env:     d.libraryEnv(),
		Timeout: 30 * time.Second,
	})
	if err != nil {
		logging.Warn(databaseSubsystem, "pg_ctl stop failed: %v: %s", err, strings.TrimSpace(res.Stderr))
	}
	metrics.SetRunning("database", false)
}

// Probe reports whether the engine is up. An accepted external instance is
// probed with the compatibility query instead of pg_ctl.
func (d *Database) Probe(ctx context.Context) bool {
	d.mu.Lock()
	external := d.external
	d.mu.Unlock()

	var running bool
	if external {
		running = d.compat(ctx, d.settings.Database) == nil
	} else {
		running = d.pgCtlStatus(ctx)
	}
	metrics.ProbesTotal.WithLabelValues("database", metrics.Outcome(running, "healthy", "unhealthy")).Inc()
	metrics.SetRunning("database", running)
	return running
}

func (d *Database) pgCtlStatus(ctx context.Context) bool {
	pgCtl := d.binPath("pg_ctl")
	if !isFile(pgCtl) || !d.Initialized() {
		return false
	}
	_, err := d.runner.Run(ctx, Command{
		Path:    pgCtl,
		Args:    []string{"status", "-D", d.settings.DataDir},
		Env:     d.libraryEnv(),
		Timeout: 5 * time.Second,
	})
	return err == nil
}

func (d *Database) binPath(name string) string {
	return filepath.Join(d.settings.ResourceDir, "postgres", "bin", name+executableSuffix)
}

// libraryEnv points the dynamic loader at the bundled engine libraries.
func (d *Database) libraryEnv() []string {
	libDir := filepath.Join(d.settings.ResourceDir, "postgres", "lib")
	key := libraryPathVar()
	value := libDir
	if existing := os.Getenv(key); existing != "" {
		value = libDir + string(os.PathListSeparator) + existing
	}
	return []string{key + "=" + value}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
