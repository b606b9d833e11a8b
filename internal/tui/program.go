package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"molard/internal/tui/design"
	"molard/pkg/logging"
)

// SignInFlow is the blocking sign-in the view waits on.
type SignInFlow func(ctx context.Context, authURL string) (string, error)

// RunSignIn shows the sign-in view on out while flow runs and returns its result.
func RunSignIn(ctx context.Context, out io.Writer, authURL string, timeout time.Duration, debug bool, flow SignInFlow) (string, error) {
	design.Initialize(true)

	level := logging.LevelInfo
	if debug {
		level = logging.LevelDebug
	}
	logChan := logging.InitForTUI(level)
	defer logging.CloseTUIChannel()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewSignInModel(authURL, timeout, func() (string, error) {
		return flow(ctx, authURL)
	}, cancel, logChan).WithDebug(debug)

	final, err := tea.NewProgram(m, tea.WithOutput(out)).Run()
	if err != nil {
		logging.Error("TUI", err, "Sign-in view failed")
		return "", fmt.Errorf("sign-in view: %w", err)
	}
	return final.(SignInModel).Result()
}
