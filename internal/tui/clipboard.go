package tui

import (
	"errors"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// clipboardCopyMsg is sent after a clipboard copy operation.
type clipboardCopyMsg struct {
	success bool
	content string
	err     error
}

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// copyToClipboard copies text to the system clipboard.
// Returns a tea.Cmd that will send a clipboardCopyMsg when complete.
func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if clipboard.Unsupported {
			return clipboardCopyMsg{success: false, content: text}
		}
		if err := writeClipboard(text); err != nil {
			return clipboardCopyMsg{success: false, content: text, err: err}
		}
		return clipboardCopyMsg{success: true, content: text}
	}
}

// CopyText writes text to the clipboard outside of a running program.
func CopyText(text string) error {
	msg := copyToClipboard(text)().(clipboardCopyMsg)
	if msg.err != nil {
		return msg.err
	}
	if !msg.success {
		return errClipboardUnavailable
	}
	return nil
}

var errClipboardUnavailable = errors.New("clipboard unavailable (install xclip, xsel or wl-clipboard)")
