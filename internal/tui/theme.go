package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the remote.
// Tokyo Night tones.
type Theme struct {
	BgDark      lipgloss.Color
	TextPrimary lipgloss.Color
	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color

	Border        lipgloss.Color
	BorderFocused lipgloss.Color

	Accent  lipgloss.Color // blue
	Success lipgloss.Color // green
	Warning lipgloss.Color // amber
	Error   lipgloss.Color // red/pink
	Info    lipgloss.Color // cyan
	Purple  lipgloss.Color
}

// DefaultTheme is the dark theme used by the remote.
var DefaultTheme = Theme{
	BgDark:      lipgloss.Color("#1a1b26"),
	TextPrimary: lipgloss.Color("#c0caf5"),
	TextDim:     lipgloss.Color("#565f89"),
	TextMuted:   lipgloss.Color("#414868"),

	Border:        lipgloss.Color("#414868"),
	BorderFocused: lipgloss.Color("#7aa2f7"),

	Accent:  lipgloss.Color("#7aa2f7"),
	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7dcfff"),
	Purple:  lipgloss.Color("#bb9af7"),
}

// Styles provides pre-configured lipgloss styles for the remote.
type Styles struct {
	Base  lipgloss.Style
	Dim   lipgloss.Style
	Bold  lipgloss.Style
	Title lipgloss.Style

	// Display
	Setpoint lipgloss.Style
	PowerOn  lipgloss.Style
	PowerOff lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Byte     lipgloss.Style

	// Status
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Pulse strip
	MarkCell  lipgloss.Style
	SpaceCell lipgloss.Style

	Panel      lipgloss.Style
	KeyBinding lipgloss.Style
	KeyHint    lipgloss.Style
	Footer     lipgloss.Style
}

// NewStyles creates a Styles instance from a Theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Base: lipgloss.NewStyle().Foreground(t.TextPrimary),
		Dim:  lipgloss.NewStyle().Foreground(t.TextDim),
		Bold: lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true),
		Title: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true).
			Padding(0, 1),

		Setpoint: lipgloss.NewStyle().
			Foreground(t.Info).
			Bold(true),
		PowerOn:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		PowerOff: lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(t.TextDim).
			Width(10),
		Value: lipgloss.NewStyle().Foreground(t.TextPrimary),
		Byte: lipgloss.NewStyle().
			Foreground(t.Purple).
			Bold(true),

		Success: lipgloss.NewStyle().Foreground(t.Success),
		Warning: lipgloss.NewStyle().Foreground(t.Warning),
		Error:   lipgloss.NewStyle().Foreground(t.Error),

		MarkCell:  lipgloss.NewStyle().Foreground(t.Accent),
		SpaceCell: lipgloss.NewStyle().Foreground(t.TextMuted),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),
		KeyBinding: lipgloss.NewStyle().
			Foreground(t.Accent).
			Bold(true),
		KeyHint: lipgloss.NewStyle().
			Foreground(t.TextDim),
		Footer: lipgloss.NewStyle().
			Foreground(t.TextDim),
	}
}

// DefaultStyles returns styles using the default theme.
var DefaultStyles = NewStyles(DefaultTheme)
