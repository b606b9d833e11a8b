package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"molard/internal/tui/design"
	"molard/pkg/logging"
)

const maxLogLines = 8

type signInResultMsg struct {
	fragment string
	err      error
}

// NewLogEntryMsg carries one log entry from the logging channel.
type NewLogEntryMsg struct {
	Entry logging.LogEntry
}

// SignInModel shows a spinner until the sign-in flow returns.
type SignInModel struct {
	spinner spinner.Model
	authURL string
	started time.Time
	timeout time.Duration
	width   int
	debug   bool

	run     func() (string, error)
	cancel  func()
	logChan <-chan logging.LogEntry
	logs    []string

	cancelling bool
	done       bool
	fragment   string
	err        error
}

// NewSignInModel builds the model. run performs the flow and must return once
// cancel has been called.
func NewSignInModel(authURL string, timeout time.Duration, run func() (string, error), cancel func(), logChan <-chan logging.LogEntry) SignInModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = design.SpinnerStyle
	return SignInModel{
		spinner: s,
		authURL: authURL,
		started: time.Now(),
		timeout: timeout,
		width:   80,
		run:     run,
		cancel:  cancel,
		logChan: logChan,
	}
}

// WithDebug shows debug-level log lines as well.
func (m SignInModel) WithDebug(debug bool) SignInModel {
	m.debug = debug
	return m
}

func (m SignInModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runFlow(), listenForLogs(m.logChan))
}

func (m SignInModel) runFlow() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		fragment, err := run()
		return signInResultMsg{fragment: fragment, err: err}
	}
}

func listenForLogs(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return NewLogEntryMsg{Entry: entry}
	}
}

func (m SignInModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.done {
				return m, tea.Quit
			}
			if !m.cancelling && m.cancel != nil {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NewLogEntryMsg:
		if msg.Entry.Level >= logging.LevelInfo || m.debug {
			m.logs = append(m.logs, formatLogEntry(msg.Entry))
			if len(m.logs) > maxLogLines {
				m.logs = m.logs[len(m.logs)-maxLogLines:]
			}
		}
		return m, listenForLogs(m.logChan)

	case signInResultMsg:
		m.done = true
		m.fragment = msg.fragment
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func formatLogEntry(e logging.LogEntry) string {
	line := fmt.Sprintf("%s [%s] [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Subsystem, e.Message)
	if e.Err != nil {
		line = fmt.Sprintf("%s -- Error: %v", line, e.Err)
	}
	return line
}

func styleLogLine(e string) string {
	switch {
	case strings.Contains(e, "[ERROR]"):
		return design.LogErrorStyle.Render(e)
	case strings.Contains(e, "[WARN]"):
		return design.LogWarnStyle.Render(e)
	case strings.Contains(e, "[DEBUG]"):
		return design.LogDebugStyle.Render(e)
	default:
		return design.LogInfoStyle.Render(e)
	}
}

func (m SignInModel) View() string {
	var b strings.Builder
	b.WriteString(design.TitleStyle.Render("Sign in"))
	b.WriteString("\n")

	switch {
	case m.done && m.err == nil:
		b.WriteString(design.TextSuccessStyle.Render("✓ Signed in"))
	case m.done:
		b.WriteString(design.TextErrorStyle.Render("✗ " + m.err.Error()))
	case m.cancelling:
		b.WriteString(m.spinner.View() + " " + design.TextWarningStyle.Render("Cancelling..."))
	default:
		elapsed := time.Since(m.started).Truncate(time.Second)
		b.WriteString(m.spinner.View() + " Waiting for the browser to finish sign-in ")
		b.WriteString(design.DimStyle.Render(fmt.Sprintf("(%s / %s)", elapsed, m.timeout)))
		b.WriteString("\n")
		b.WriteString(design.DimStyle.Render(Truncate(m.authURL, m.width-4)))
		b.WriteString("\n")
		b.WriteString(design.DimStyle.Render("Press q to cancel"))
	}

	if len(m.logs) > 0 {
		lines := make([]string, len(m.logs))
		for i, l := range m.logs {
			lines[i] = styleLogLine(Truncate(l, m.width-6))
		}
		b.WriteString("\n")
		b.WriteString(design.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	b.WriteString("\n")
	return b.String()
}

// Result returns the outcome once the flow has finished.
func (m SignInModel) Result() (string, error) {
	if !m.done {
		return "", fmt.Errorf("sign-in did not finish")
	}
	return m.fragment, m.err
}
