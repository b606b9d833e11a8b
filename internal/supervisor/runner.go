package supervisor

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command is a one-shot invocation of a sidecar binary.
type Command struct {
	Path    string        // Absolute path of the binary
	Args    []string      // Arguments, without the binary
	Env     []string      // KEY=VALUE pairs appended to the inherited environment
	Timeout time.Duration // Zero means no timeout beyond ctx
}

func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Result is what a finished command left behind.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes one-shot commands and captures their output.
// A command that ran and exited non-zero returns an error together with a
// Result whose ExitCode is positive. ExitCode is -1 when the process never
// started or was killed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes cmd, capturing stdout and stderr into the Result.
func (ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	res := Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res, runErr
}
