package render

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for summary output.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)

	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(errorColor)

	MutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

// OutcomeStyle returns a style based on the outcome string.
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "success":
		return SuccessStyle
	case "warned":
		return WarningStyle
	case "failed":
		return ErrorStyle
	default:
		return MutedStyle
	}
}
