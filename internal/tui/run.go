package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// RunRemote starts the virtual remote and returns the final settings.
func RunRemote(s whynter.Settings, tx whynter.Transmitter) (whynter.Settings, error) {
	model := NewRemoteModel(s, tx)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return s, err
	}
	if rm, ok := final.(RemoteModel); ok {
		return rm.Settings(), nil
	}
	return s, nil
}
