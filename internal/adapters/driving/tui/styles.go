package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the chat view.
type Styles struct {
	Title    lipgloss.Style
	Question lipgloss.Style
	Answer   lipgloss.Style
	Source   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default chat styling.
func DefaultStyles() *Styles {
	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		Question: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Answer:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Source:   lipgloss.NewStyle().Faint(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:     lipgloss.NewStyle().Faint(true),
	}
}
