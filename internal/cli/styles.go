package cli

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#2DA44E") // green
	warningColor = lipgloss.Color("#D29922") // orange
	errorColor   = lipgloss.Color("#CF222E") // red
	dimColor     = lipgloss.Color("#6E7681") // gray
	linkColor    = lipgloss.Color("#58A6FF") // light blue
	sourceColor  = lipgloss.Color("#FFA657") // light orange

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(linkColor).
			Underline(true)

	sourceStyle = lipgloss.NewStyle().
			Foreground(sourceColor)

	dimStyle = lipgloss.NewStyle().
			Foreground(dimColor)
)
