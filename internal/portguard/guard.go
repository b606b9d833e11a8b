// Package portguard decides whether a local TCP port can be used and, when it
// cannot, tries to free it by terminating the processes holding it.
//
// Freeing is best effort. Platforms without a way to map a port to its owner
// get a Killer that reports ErrUnsupported, and the guard turns that into a
// plain "not freed" answer instead of an error.
package portguard

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"molard/internal/metrics"
	"molard/pkg/logging"
)

// ErrUnsupported is returned by killers on platforms that cannot map a port to its owners.
var ErrUnsupported = errors.New("finding the owner of a port is not supported on this platform")

// Killer locates and terminates the processes listening on a port.
type Killer interface {
	PIDsOnPort(ctx context.Context, port int) ([]int, error)
	Kill(pid int) error
}

// PortBinding is a snapshot of who holds a port during a start attempt.
type PortBinding struct {
	Port      int
	OwnerPIDs []int
}

func (b PortBinding) String() string {
	if len(b.OwnerPIDs) == 0 {
		return strconv.Itoa(b.Port) + " (owner unknown)"
	}
	pids := make([]string, len(b.OwnerPIDs))
	for i, pid := range b.OwnerPIDs {
		pids[i] = strconv.Itoa(pid)
	}
	return strconv.Itoa(b.Port) + " (pid " + strings.Join(pids, ", ") + ")"
}

// IsPortFree reports whether port can be bound locally, on loopback and on the
// wildcard address. The probe listeners are closed before returning.
func IsPortFree(port int) bool {
	for _, host := range []string{"127.0.0.1", ""} {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			return false
		}
		ln.Close()
	}
	return true
}

// Guard frees ports on behalf of the supervisor.
type Guard struct {
	killer  Killer
	settle  time.Duration
	retries int
}

// New returns a Guard using killer. A nil killer behaves like an unsupported platform.
func New(killer Killer) *Guard {
	if killer == nil {
		killer = unsupportedKiller{}
	}
	return &Guard{
		killer:  killer,
		settle:  200 * time.Millisecond,
		retries: 10,
	}
}

// NewDefault returns a Guard using the platform killer.
func NewDefault() *Guard {
	return New(DefaultKiller())
}

// IsPortFree is the method form of the package-level check.
func (g *Guard) IsPortFree(port int) bool {
	return IsPortFree(port)
}

// Inspect returns who currently holds port. Lookup failures leave OwnerPIDs empty.
func (g *Guard) Inspect(ctx context.Context, port int) PortBinding {
	pids, err := g.killer.PIDsOnPort(ctx, port)
	if err != nil {
		logging.Debug("PortGuard", "Could not look up owner of port %d: %v", port, err)
	}
	return PortBinding{Port: port, OwnerPIDs: pids}
}

// FreePort makes port free if it can. It returns true when the port is free
// afterwards. Processes are killed forcefully; this process is never a target.
func (g *Guard) FreePort(ctx context.Context, port int) bool {
	if IsPortFree(port) {
		return true
	}

	binding := g.Inspect(ctx, port)
	if len(binding.OwnerPIDs) == 0 {
		logging.Warn("PortGuard", "Port %s is busy and its owner could not be determined", binding)
		return false
	}

	self := os.Getpid()
	killed := 0
	for _, pid := range binding.OwnerPIDs {
		if pid == self {
			logging.Warn("PortGuard", "Port %d is held by this process, not killing it", port)
			continue
		}
		if err := g.killer.Kill(pid); err != nil {
			logging.Warn("PortGuard", "Failed to kill pid %d holding port %d: %v", pid, port, err)
			continue
		}
		killed++
		logging.Info("PortGuard", "Killed pid %d holding port %d", pid, port)
	}
	if killed == 0 {
		metrics.PortsFreedTotal.WithLabelValues("failed").Inc()
		return false
	}

	for i := 0; i < g.retries; i++ {
		if IsPortFree(port) {
			metrics.PortsFreedTotal.WithLabelValues("freed").Inc()
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(g.settle):
		}
	}
	return IsPortFree(port)
}

type unsupportedKiller struct{}

func (unsupportedKiller) PIDsOnPort(context.Context, int) ([]int, error) {
	return nil, ErrUnsupported
}

func (unsupportedKiller) Kill(int) error {
	return ErrUnsupported
}

// parsePIDs reads one pid per line as printed by `lsof -t`.
func parsePIDs(out string) []int {
	var pids []int
	seen := make(map[int]bool)
	for _, line := range strings.Split(out, "\n") {
		pid, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || pid <= 0 || seen[pid] {
			continue
		}
		seen[pid] = true
		pids = append(pids, pid)
	}
	return pids
}
