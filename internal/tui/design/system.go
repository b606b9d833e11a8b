package design

import (
	"github.com/charmbracelet/lipgloss"
)

// Spacing units, one cell each.
const (
	SpaceXS = 1
	SpaceSM = 2
)

// Semantic colors with light/dark variants.
var (
	ColorPrimary = lipgloss.AdaptiveColor{
		Light: "#0F766E",
		Dark:  "#2DD4BF",
	}
	ColorSuccess = lipgloss.AdaptiveColor{
		Light: "#059669",
		Dark:  "#10B981",
	}
	ColorError = lipgloss.AdaptiveColor{
		Light: "#DC2626",
		Dark:  "#EF4444",
	}
	ColorWarning = lipgloss.AdaptiveColor{
		Light: "#D97706",
		Dark:  "#F59E0B",
	}
	ColorBorder = lipgloss.AdaptiveColor{
		Light: "#E5E7EB",
		Dark:  "#404040",
	}
	ColorText = lipgloss.AdaptiveColor{
		Light: "#111827",
		Dark:  "#F9FAFB",
	}
	ColorTextSecondary = lipgloss.AdaptiveColor{
		Light: "#6B7280",
		Dark:  "#9CA3AF",
	}
	ColorTextMuted = lipgloss.AdaptiveColor{
		Light: "#9CA3AF",
		Dark:  "#6B7280",
	}
)

var (
	TextStyle          = lipgloss.NewStyle().Foreground(ColorText)
	TextSecondaryStyle = lipgloss.NewStyle().Foreground(ColorTextSecondary)
	TextSuccessStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	TextErrorStyle     = lipgloss.NewStyle().Foreground(ColorError)
	TextWarningStyle   = lipgloss.NewStyle().Foreground(ColorWarning)
	DimStyle           = lipgloss.NewStyle().Foreground(ColorTextMuted)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(SpaceXS)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, SpaceSM)

	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
)

// Log level styles
var (
	LogInfoStyle  = lipgloss.NewStyle().Foreground(ColorText)
	LogWarnStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	LogErrorStyle = lipgloss.NewStyle().Foreground(ColorError)
	LogDebugStyle = lipgloss.NewStyle().Foreground(ColorTextMuted).Italic(true)
)

// GetStateStyle maps a service or lifecycle state to its text style.
func GetStateStyle(state string) lipgloss.Style {
	switch state {
	case "running", "Running", "healthy":
		return TextSuccessStyle
	case "failed", "error", "unhealthy", "PartiallyStarted":
		return TextErrorStyle
	case "Starting", "Stopping":
		return TextWarningStyle
	case "stopped", "Stopped":
		return TextSecondaryStyle
	default:
		return TextStyle
	}
}

// Initialize sets up the design system
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}
