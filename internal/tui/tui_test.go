package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/whynter"
)

func press(t *testing.T, m RemoteModel, key string) (RemoteModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(RemoteModel), cmd
}

func defaultSettings() whynter.Settings {
	return whynter.Settings{Power: true, Mode: whynter.ModeCool, FanSpeed: whynter.FanLow, TargetCelsius: 24}
}

func TestRemoteInitialPacket(t *testing.T) {
	m := NewRemoteModel(defaultSettings(), nil)
	want := whynter.Packet{0x48, 0x12, 0xA8, 75}
	if m.Packet() != want {
		t.Fatalf("packet = %s, want %s", m.Packet(), want)
	}
}

func TestRemoteKeys(t *testing.T) {
	tests := []struct {
		key   string
		check func(s whynter.Settings) bool
	}{
		{"up", func(s whynter.Settings) bool { return s.TargetCelsius == 25 }},
		{"+", func(s whynter.Settings) bool { return s.TargetCelsius == 25 }},
		{"down", func(s whynter.Settings) bool { return s.TargetCelsius == 23 }},
		{"m", func(s whynter.Settings) bool { return s.Mode == whynter.ModeDry }},
		{"f", func(s whynter.Settings) bool { return s.FanSpeed == whynter.FanMedium }},
		{"p", func(s whynter.Settings) bool { return !s.Power }},
	}

	for _, tt := range tests {
		t.Run("key_"+tt.key, func(t *testing.T) {
			m, _ := press(t, NewRemoteModel(defaultSettings(), nil), tt.key)
			if !tt.check(m.Settings()) {
				t.Errorf("key %q: unexpected settings %+v", tt.key, m.Settings())
			}
			if m.Packet() != whynter.Compile(m.Settings()) {
				t.Errorf("key %q: packet not recompiled", tt.key)
			}
		})
	}
}

func TestRemoteSetpointClamps(t *testing.T) {
	m := NewRemoteModel(defaultSettings(), nil)
	for i := 0; i < 10; i++ {
		m, _ = press(t, m, "up")
	}
	if m.Settings().TargetCelsius != whynter.MaxTargetCelsius {
		t.Errorf("setpoint = %v, want max", m.Settings().TargetCelsius)
	}
	if m.Packet()[3] != whynter.MaxTargetFahrenheit {
		t.Errorf("setpoint byte = %d", m.Packet()[3])
	}

	for i := 0; i < 20; i++ {
		m, _ = press(t, m, "down")
	}
	if m.Settings().TargetCelsius != whynter.MinTargetCelsius {
		t.Errorf("setpoint = %v, want min", m.Settings().TargetCelsius)
	}
	if m.Packet()[3] != whynter.MinTargetFahrenheit {
		t.Errorf("setpoint byte = %d", m.Packet()[3])
	}
}

func TestRemoteModeCycles(t *testing.T) {
	m := NewRemoteModel(defaultSettings(), nil)
	for _, want := range []whynter.Mode{whynter.ModeDry, whynter.ModeFanOnly, whynter.ModeCool} {
		m, _ = press(t, m, "m")
		if m.Settings().Mode != want {
			t.Fatalf("mode = %s, want %s", m.Settings().Mode, want)
		}
	}
}

func TestRemoteTransmits(t *testing.T) {
	var out bytes.Buffer
	w := capture.NewWriter(&out, capture.FormatRaw)
	m := NewRemoteModel(defaultSettings(), w)

	m, _ = press(t, m, "f")
	m, _ = press(t, m, "enter")

	if m.Sent() != 2 || w.Count() != 2 {
		t.Fatalf("sent = %d, writer count = %d", m.Sent(), w.Count())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 raw lines, got %d", len(lines))
	}
	pulses, err := capture.ParseRaw(lines[0])
	if err != nil {
		t.Fatalf("parse raw: %v", err)
	}
	pkt, err := whynter.Decode(whynter.Train{CarrierHz: whynter.CarrierFrequency, Pulses: pulses})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pkt != (whynter.Packet{0x48, 0x14, 0xA8, 75}) {
		t.Errorf("transmitted %s", pkt)
	}
	if !strings.Contains(m.View(), "Sent") {
		t.Errorf("view should show sent count")
	}
}

type failingTransmitter struct{}

func (failingTransmitter) Transmit(int, []whynter.Pulse) error { return errors.New("led busy") }

func TestRemoteTransmitError(t *testing.T) {
	m, _ := press(t, NewRemoteModel(defaultSettings(), failingTransmitter{}), "p")
	if !m.statusErr || !strings.Contains(m.status, "led busy") {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
	if m.Sent() != 0 {
		t.Errorf("sent = %d", m.Sent())
	}
}

func TestRemoteQuit(t *testing.T) {
	m, cmd := press(t, NewRemoteModel(defaultSettings(), nil), "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
	if m.View() != "" {
		t.Errorf("view should be empty after quit")
	}
}

func TestRemoteCopy(t *testing.T) {
	m, cmd := press(t, NewRemoteModel(defaultSettings(), nil), "c")
	if cmd == nil {
		t.Fatal("expected clipboard command")
	}

	next, _ := m.Update(clipboardCopyMsg{success: true})
	m = next.(RemoteModel)
	if m.statusErr || !strings.Contains(m.status, "Copied 68 pulses") {
		t.Errorf("status = %q", m.status)
	}

	next, _ = m.Update(clipboardCopyMsg{err: errors.New("no display")})
	m = next.(RemoteModel)
	if !m.statusErr || !strings.Contains(m.status, "no display") {
		t.Errorf("status = %q", m.status)
	}
}

func TestCopyToClipboardContent(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("clipboard not available")
	}
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		got = s
		return nil
	}
	defer func() { writeClipboard = orig }()

	train := whynter.Encode(whynter.Packet{0x48, 0x12, 0xA8, 75})
	if err := CopyText(capture.RawString(train.Pulses)); err != nil {
		t.Fatalf("CopyText: %v", err)
	}
	if !strings.HasPrefix(got, "8500, -4400, 550") {
		t.Errorf("clipboard = %q", got)
	}
}

func TestRemoteView(t *testing.T) {
	m := NewRemoteModel(defaultSettings(), nil)
	view := m.View()
	for _, want := range []string{"Whynter Remote", "ON", "cool", "low", "24.0°C", "75°F", "48", "A8", "68 pulses @ 38000 Hz"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestComposeValues(t *testing.T) {
	v := NewComposeValues(defaultSettings())
	if v.Mode != "cool" || v.Fan != "low" || v.Target != "24" || !v.Power {
		t.Fatalf("unexpected seed: %+v", v)
	}

	v.Mode = "fan_only"
	v.Fan = "high"
	v.Target = " 35 "
	s, err := v.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if whynter.Compile(s) != (whynter.Packet{0x48, 0x88, 0xA8, 86}) {
		t.Errorf("packet = %s", whynter.Compile(s))
	}

	v.Target = "warm"
	if _, err := v.Settings(); err == nil {
		t.Error("expected error for non-numeric target")
	}
	v.Target = "20"
	v.Mode = "heat"
	if _, err := v.Settings(); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestBuildComposeForm(t *testing.T) {
	if BuildComposeForm(NewComposeValues(defaultSettings())) == nil {
		t.Fatal("expected form")
	}
}
