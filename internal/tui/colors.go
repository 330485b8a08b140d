package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/zen/internal/metrics"
	"github.com/balkashynov/zen/internal/models"
)

// Color constants for the zen theme
const (
	// Base
	ColorCardBackground = "#1A1626" // Night lavender
	ColorBorder         = "#3B3551" // Muted violet-grey

	// Text
	ColorPrimaryText   = "#ECEAF4"
	ColorSecondaryText = "#B4AEC8"
	ColorDisabledText  = "#6E6880"
	ColorHelpText      = "240"

	// Accent
	ColorAccent     = "#9b87f5" // Meditation purple
	ColorAccentSoft = "#D6BCFA"

	// State
	ColorError   = "#EF4444"
	ColorSuccess = "#22C55E"
	ColorWarning = "#F59E0B"
)

// statusColor matches the chart bucket colors so lists and chart agree
func statusColor(s models.SessionStatus) lipgloss.Color {
	switch s {
	case models.StatusCompleted:
		return lipgloss.Color(metrics.ColorCompleted)
	case models.StatusInProgress:
		return lipgloss.Color(metrics.ColorInProgress)
	default:
		return lipgloss.Color(metrics.ColorPending)
	}
}

func priorityColor(p models.Priority) lipgloss.Color {
	switch p {
	case models.PriorityHigh:
		return lipgloss.Color(ColorError)
	case models.PriorityMedium:
		return lipgloss.Color(ColorWarning)
	default:
		return lipgloss.Color(ColorSecondaryText)
	}
}

var (
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Italic(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorAccent)).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 2)
)
