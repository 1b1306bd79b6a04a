package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/whynter"
)

// RemoteModel is a virtual Whynter remote. Every change recompiles the
// packet and, when a transmitter is set, sends it.
type RemoteModel struct {
	settings whynter.Settings
	packet   whynter.Packet
	train    whynter.Train
	tx       whynter.Transmitter
	sent     int

	status    string
	statusErr bool
	showHelp  bool
	width     int
	quitting  bool
}

// NewRemoteModel starts the remote at the given settings. tx may be nil.
func NewRemoteModel(s whynter.Settings, tx whynter.Transmitter) RemoteModel {
	s.TargetCelsius = whynter.ClampCelsius(s.TargetCelsius)
	m := RemoteModel{settings: s, tx: tx}
	m.recompile()
	return m
}

// Settings returns the current remote state.
func (m RemoteModel) Settings() whynter.Settings { return m.settings }

// Packet returns the packet for the current state.
func (m RemoteModel) Packet() whynter.Packet { return m.packet }

// Sent is the number of frames handed to the transmitter.
func (m RemoteModel) Sent() int { return m.sent }

func (m *RemoteModel) recompile() {
	m.packet = whynter.Compile(m.settings)
	m.train = whynter.Encode(m.packet)
}

// press applies a change and transmits the new state.
func (m *RemoteModel) press(label string) {
	m.recompile()
	if m.tx == nil {
		m.status = label
		m.statusErr = false
		return
	}
	if _, err := whynter.Send(m.tx, m.settings); err != nil {
		m.status = fmt.Sprintf("%s: %v", label, err)
		m.statusErr = true
		return
	}
	m.sent++
	m.status = fmt.Sprintf("%s (sent 0x%s)", label, m.packet.Hex())
	m.statusErr = false
}

func (m RemoteModel) Init() tea.Cmd {
	return nil
}

func (m RemoteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case clipboardCopyMsg:
		switch {
		case msg.success:
			m.status = fmt.Sprintf("Copied %d pulses to clipboard", len(m.train.Pulses))
			m.statusErr = false
		case msg.err != nil:
			m.status = fmt.Sprintf("Copy failed: %v", msg.err)
			m.statusErr = true
		default:
			m.status = errClipboardUnavailable.Error()
			m.statusErr = true
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m RemoteModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k", "+", "right", "l":
		m.settings.TargetCelsius = whynter.ClampCelsius(m.settings.TargetCelsius + whynter.TargetStepCelsius)
		m.press(fmt.Sprintf("Setpoint %.1f°C", m.settings.TargetCelsius))
	case "down", "j", "-", "left", "h":
		m.settings.TargetCelsius = whynter.ClampCelsius(m.settings.TargetCelsius - whynter.TargetStepCelsius)
		m.press(fmt.Sprintf("Setpoint %.1f°C", m.settings.TargetCelsius))
	case "m":
		m.settings.Mode = m.settings.Mode.Next()
		m.press("Mode " + m.settings.Mode.String())
	case "f":
		m.settings.FanSpeed = m.settings.FanSpeed.Next()
		m.press("Fan " + m.settings.FanSpeed.String())
	case "p":
		m.settings.Power = !m.settings.Power
		m.press("Power " + onOff(m.settings.Power))
	case "s", "enter":
		m.press("Resend")
	case "c":
		return m, copyToClipboard(capture.RawString(m.train.Pulses))
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m RemoteModel) View() string {
	if m.quitting {
		return ""
	}
	s := DefaultStyles

	var b strings.Builder
	b.WriteString(s.Title.Render("Whynter Remote"))
	b.WriteString("\n\n")

	power := s.PowerOff.Render("OFF")
	if m.settings.Power {
		power = s.PowerOn.Render("ON")
	}
	fahrenheit := int(m.packet[3])
	rows := [][2]string{
		{"Power", power},
		{"Mode", s.Value.Render(m.settings.Mode.String())},
		{"Fan", s.Value.Render(m.settings.FanSpeed.String())},
		{"Setpoint", s.Setpoint.Render(fmt.Sprintf("%.1f°C", m.settings.TargetCelsius)) +
			s.Dim.Render(fmt.Sprintf("  (%d°F)", fahrenheit))},
	}
	for _, r := range rows {
		b.WriteString(s.Label.Render(r[0]))
		b.WriteString(r[1])
		b.WriteString("\n")
	}
	b.WriteString("\n")

	bytes := make([]string, 0, whynter.PacketLength)
	for _, v := range m.packet {
		bytes = append(bytes, s.Byte.Render(fmt.Sprintf("%02X", v)))
	}
	b.WriteString(s.Label.Render("Packet"))
	b.WriteString(strings.Join(bytes, " "))
	b.WriteString("\n")
	b.WriteString(s.Label.Render("Train"))
	b.WriteString(s.Value.Render(fmt.Sprintf("%d pulses @ %d Hz, %.1f ms",
		len(m.train.Pulses), m.train.CarrierHz, float64(m.train.Duration().Microseconds())/1000)))
	b.WriteString("\n")
	b.WriteString(s.Label.Render(""))
	b.WriteString(m.pulseStrip())
	b.WriteString("\n")
	if m.tx != nil {
		b.WriteString(s.Label.Render("Sent"))
		b.WriteString(s.Value.Render(fmt.Sprintf("%d", m.sent)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(s.Error.Render(m.status))
		} else {
			b.WriteString(s.Success.Render(m.status))
		}
		b.WriteString("\n")
	}

	body := s.Panel.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footer())
}

// pulseStrip draws one cell per data bit: a tall bar for a one (short
// space), a low bar for a zero (long space).
func (m RemoteModel) pulseStrip() string {
	s := DefaultStyles
	var groups []string
	for _, v := range m.packet {
		var cells strings.Builder
		for bit := 0; bit < whynter.BitsPerByte; bit++ {
			if v>>bit&1 == 1 {
				cells.WriteString(s.MarkCell.Render("▇"))
			} else {
				cells.WriteString(s.SpaceCell.Render("▁"))
			}
		}
		groups = append(groups, cells.String())
	}
	return strings.Join(groups, " ")
}

func (m RemoteModel) footer() string {
	s := DefaultStyles
	keys := [][2]string{
		{"↑/↓", "setpoint"},
		{"m", "mode"},
		{"f", "fan"},
		{"p", "power"},
		{"c", "copy"},
		{"q", "quit"},
	}
	if m.showHelp {
		keys = append(keys, [][2]string{
			{"s/enter", "resend"},
			{"+/-", "setpoint"},
			{"?", "hide help"},
		}...)
	} else {
		keys = append(keys, [2]string{"?", "help"})
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, s.KeyBinding.Render(k[0])+" "+s.KeyHint.Render(k[1]))
	}
	return s.Footer.Render(" " + strings.Join(parts, "  "))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
