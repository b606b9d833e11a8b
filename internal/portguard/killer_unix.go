//go:build unix

package portguard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

const lsofTimeout = 5 * time.Second

// LsofKiller finds listeners with lsof and terminates them with SIGKILL.
type LsofKiller struct{}

// DefaultKiller returns the killer for this platform.
func DefaultKiller() Killer {
	return LsofKiller{}
}

// PIDsOnPort lists the processes listening on port.
func (LsofKiller) PIDsOnPort(ctx context.Context, port int) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, lsofTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "lsof", "-nP", "-t", "-iTCP:"+strconv.Itoa(port), "-sTCP:LISTEN")
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: lsof not installed", ErrUnsupported)
		}
		// lsof exits 1 when nothing matches
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(out) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("lsof for port %d: %w", port, err)
	}
	return parsePIDs(string(out)), nil
}

// Kill sends SIGKILL to pid.
func (LsofKiller) Kill(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}
