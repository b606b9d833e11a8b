package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"molard/internal/config"
	"molard/internal/orchestrator"
	"molard/internal/tui/design"
)

const labelWidth = 12

// Truncate shortens s to width display cells, ending with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

var (
	rowIndent = strings.Repeat(" ", design.SpaceSM)
	labelGap  = strings.Repeat(" ", design.SpaceXS)
)

func statusRow(label, value string) string {
	return rowIndent + design.TextSecondaryStyle.Render(runewidth.FillRight(label, labelWidth)) + labelGap + value
}

func runningValue(running bool) string {
	if running {
		return design.GetStateStyle("running").Render("● running")
	}
	return design.GetStateStyle("stopped").Render("○ stopped")
}

// RenderStatus formats a status report as an aligned table.
func RenderStatus(st orchestrator.Status) string {
	serverIP := st.ServerIP
	if serverIP == "" {
		serverIP = design.DimStyle.Render("(not set)")
	}

	database := runningValue(st.DatabaseRunning)
	if st.Mode == config.ModeClient {
		database = design.DimStyle.Render("n/a (client mode)")
	}

	all := design.TextErrorStyle.Render("no")
	if st.AllServicesRunning {
		all = design.TextSuccessStyle.Render("yes")
	}

	rows := []string{
		design.TitleStyle.Render("molard status"),
		statusRow("Mode", design.TextStyle.Render(string(st.Mode))),
		statusRow("Server IP", serverIP),
		statusRow("API URL", design.TextStyle.Render(st.APIURL)),
		statusRow("Database", database),
		statusRow("Backend", runningValue(st.BackendRunning)),
		statusRow("Lifecycle", design.GetStateStyle(string(st.Lifecycle)).Render(string(st.Lifecycle))),
		statusRow("All running", all),
	}
	return strings.Join(rows, "\n") + "\n"
}
