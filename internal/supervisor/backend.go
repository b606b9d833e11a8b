package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"molard/internal/config"
	apperrors "molard/internal/errors"
	"molard/internal/metrics"
	"molard/pkg/logging"
)

const backendSubsystem = "Backend"

// Backend supervises the API backend child process.
type Backend struct {
	settings config.Settings
	guard    PortGuard
	client   *http.Client

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{} // closed once the child has been reaped
}

// NewBackend returns a Backend for settings. Paths in settings must already be resolved.
func NewBackend(settings config.Settings, guard PortGuard) *Backend {
	return &Backend{
		settings: settings,
		guard:    guard,
		client:   &http.Client{Timeout: settings.Backend.HealthTimeout},
	}
}

// BinaryPath is where the backend executable is expected.
func (b *Backend) BinaryPath() string {
	return filepath.Join(b.settings.ResourceDir, b.settings.Backend.Binary+executableSuffix)
}

// Start spawns the backend. It returns as soon as the process exists; use
// Probe to learn when it is serving.
func (b *Backend) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.start(ctx)
	metrics.ServiceStartsTotal.WithLabelValues("backend", metrics.Outcome(err == nil, "ok", apperrors.GetCode(err))).Inc()
	return err
}

func (b *Backend) start(ctx context.Context) error {
	if b.runningLocked() {
		logging.Info(backendSubsystem, "Backend already running (pid %d)", b.cmd.Process.Pid)
		return nil
	}

	bin := b.BinaryPath()
	if !isFile(bin) {
		return apperrors.ResourceNotFound("backend binary", bin)
	}

	port := b.settings.Backend.Port
	if !b.guard.IsPortFree(port) {
		logging.Warn(backendSubsystem, "Port %d is in use, attempting to free it", port)
		if !b.guard.FreePort(ctx, port) {
			return apperrors.PortConflict("backend", port)
		}
	}

	cmd := exec.Command(bin)
	cmd.Dir = b.settings.ResourceDir
	cmd.Env = append(os.Environ(), b.environment()...)
	setProcessGroup(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return apperrors.SpawnFailed(bin, fmt.Errorf("stdout pipe: %w", err))
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		stdoutPipe.Close()
		return apperrors.SpawnFailed(bin, fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		stdoutPipe.Close()
		stderrPipe.Close()
		return apperrors.SpawnFailed(bin, err)
	}

	pid := cmd.Process.Pid
	done := make(chan struct{})
	b.cmd = cmd
	b.done = done
	logging.Info(backendSubsystem, "Started backend %s (pid %d) for port %d", bin, pid, port)
	metrics.SetRunning("backend", true)
	pidFile := b.settings.Backend.PIDFile
	if err := writePIDFile(pidFile, pid); err != nil {
		logging.Warn(backendSubsystem, "Failed to record backend pid in %s: %v", pidFile, err)
	}

	var drained sync.WaitGroup
	drained.Add(2)
	go drainLines(stdoutPipe, pid, "stdout", &drained)
	go drainLines(stderrPipe, pid, "stderr", &drained)

	go func() {
		// Wait closes the pipes, so the readers must finish first.
		drained.Wait()
		if err := cmd.Wait(); err != nil {
			logging.Warn(backendSubsystem, "Backend (pid %d) exited: %v", pid, err)
		} else {
			logging.Info(backendSubsystem, "Backend (pid %d) exited", pid)
		}
		metrics.SetRunning("backend", false)
		if err := removePIDFile(pidFile, pid); err != nil {
			logging.Debug(backendSubsystem, "Failed to remove pid file %s: %v", pidFile, err)
		}
		close(done)
	}()

	return nil
}

func (b *Backend) environment() []string {
	db := b.settings.Database
	return []string{
		"USE_LOCAL_DB=true",
		"LOCAL_DB_HOST=127.0.0.1",
		"LOCAL_DB_PORT=" + strconv.Itoa(db.Port),
		"LOCAL_DB_NAME=" + db.Name,
		"LOCAL_DB_USER=" + db.User,
		"LOCAL_DB_PASSWORD=" + db.Password,
	}
}

func drainLines(r io.Reader, pid int, stream string, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		logging.Info(backendSubsystem, "[%d %s] %s", pid, stream, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logging.Debug(backendSubsystem, "Stopped reading %s of pid %d: %v", stream, pid, err)
	}
	// Keep the pipe empty so the child never blocks on a write.
	_, _ = io.Copy(io.Discard, r)
}

// Stop terminates the backend process group: SIGTERM, then SIGKILL once the
// grace period runs out or ctx is done. Safe to call when never started.
func (b *Backend) Stop(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cmd == nil {
		return
	}
	pid := b.cmd.Process.Pid
	done := b.done
	b.cmd = nil
	b.done = nil

	select {
	case <-done:
		logging.Debug(backendSubsystem, "Backend (pid %d) already exited", pid)
		return
	default:
	}

	logging.Info(backendSubsystem, "Stopping backend (pid %d)", pid)
	if err := terminateGroup(pid); err != nil {
		logging.Warn(backendSubsystem, "SIGTERM to backend (pid %d) failed: %v", pid, err)
	}

	grace := time.NewTimer(b.settings.Backend.StopGrace)
	defer grace.Stop()
	select {
	case <-done:
		return
	case <-grace.C:
		logging.Warn(backendSubsystem, "Backend (pid %d) still running after %s, killing it", pid, b.settings.Backend.StopGrace)
	case <-ctx.Done():
		logging.Warn(backendSubsystem, "Stop cancelled, killing backend (pid %d)", pid)
	}

	if err := killGroup(pid); err != nil {
		logging.Warn(backendSubsystem, "SIGKILL to backend (pid %d) failed: %v", pid, err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		logging.Error(backendSubsystem, nil, "Backend (pid %d) did not exit after SIGKILL", pid)
	}
}

// StopOrphan stops a backend this process did not start, such as one left by
// an earlier invocation. The pid file is tried first, then whatever holds the
// backend port. It reports whether the backend is gone afterwards.
func (b *Backend) StopOrphan(ctx context.Context) bool {
	if b.Running() {
		b.Stop(ctx)
		return true
	}

	pidFile := b.settings.Backend.PIDFile
	if pid, ok := readPIDFile(pidFile); ok {
		if processAlive(pid) {
			stopped := b.stopPID(ctx, pid)
			if stopped {
				_ = removePIDFile(pidFile, pid)
			}
			return stopped
		}
		logging.Debug(backendSubsystem, "Removing stale pid file %s (pid %d)", pidFile, pid)
		_ = removePIDFile(pidFile, pid)
	}

	port := b.settings.Backend.Port
	if b.guard.IsPortFree(port) {
		logging.Info(backendSubsystem, "Backend is not running")
		return true
	}
	logging.Info(backendSubsystem, "No backend pid recorded, freeing port %d", port)
	return b.guard.FreePort(ctx, port)
}

// stopPID applies the Stop escalation to a process group we hold no handle for.
func (b *Backend) stopPID(ctx context.Context, pid int) bool {
	logging.Info(backendSubsystem, "Stopping backend (pid %d)", pid)
	if err := terminateGroup(pid); err != nil {
		logging.Warn(backendSubsystem, "SIGTERM to backend (pid %d) failed: %v", pid, err)
	}
	if waitExit(ctx, pid, b.settings.Backend.StopGrace) {
		return true
	}

	logging.Warn(backendSubsystem, "Backend (pid %d) still running, killing it", pid)
	if err := killGroup(pid); err != nil {
		logging.Warn(backendSubsystem, "SIGKILL to backend (pid %d) failed: %v", pid, err)
	}
	if waitExit(context.Background(), pid, 2*time.Second) {
		return true
	}
	logging.Error(backendSubsystem, nil, "Backend (pid %d) did not exit after SIGKILL", pid)
	return false
}

// waitExit polls until pid is gone, timeout passes or ctx is done.
func waitExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if !processAlive(pid) {
			return true
		}
		select {
		case <-tick.C:
		case <-deadline.C:
			return !processAlive(pid)
		case <-ctx.Done():
			return !processAlive(pid)
		}
	}
}

// Probe checks {apiBaseURL}/health within the configured health timeout.
func (b *Backend) Probe(ctx context.Context, apiBaseURL string) bool {
	return ProbeHealth(ctx, b.client, apiBaseURL)
}

// Running reports whether a child started by this Backend is still alive.
func (b *Backend) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runningLocked()
}

// PID returns the child pid, or 0 when no child is running.
func (b *Backend) PID() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.runningLocked() {
		return 0
	}
	return b.cmd.Process.Pid
}

func (b *Backend) runningLocked() bool {
	if b.cmd == nil || b.done == nil {
		return false
	}
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}
