package chat

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for the chat screen regions.
type theme struct {
	header    lipgloss.Style
	userTag   lipgloss.Style
	botTag    lipgloss.Style
	errorLine lipgloss.Style
	status    lipgloss.Style
	hint      lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")),
		userTag: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),
		botTag: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("44")),
		errorLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}
