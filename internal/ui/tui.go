// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the keyer UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run builds the TUI program. The caller runs it with p.Run().
func Run(config Config) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(config), tea.WithAltScreen())
	return p, nil
}
