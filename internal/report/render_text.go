package report

import (
	"fmt"
	"io"
)

// WriteFrame prints a frame report as aligned text.
func WriteFrame(w io.Writer, r FrameReport) {
	if r.Source != "" {
		fmt.Fprintf(w, "Source:   %s\n", r.Source)
	}
	if r.DecodeError != "" {
		fmt.Fprintf(w, "Pulses:   %d\n", r.PulseCount)
		fmt.Fprintf(w, "Error:    %s\n", r.DecodeError)
		return
	}
	if s := r.Settings; s != nil {
		power := "off"
		if s.Power {
			power = "on"
		}
		fmt.Fprintf(w, "Settings: power=%s mode=%s fan=%s target=%.2f°C\n", power, s.Mode, s.FanSpeed, s.TargetCelsius)
	}
	fmt.Fprintf(w, "Packet:   %s\n", spacedHex(r.Bytes))
	if f := r.Fields; f != nil {
		fmt.Fprintf(w, "  header   0x%02X\n", f.Header)
		fmt.Fprintf(w, "  mode     0x%02X\n", f.ModeBits)
		fmt.Fprintf(w, "  fan      0x%02X\n", f.FanBits)
		fmt.Fprintf(w, "  power    0x%02X\n", f.Power)
		fmt.Fprintf(w, "  setpoint %d°F\n", f.Setpoint)
	}
	if !r.KnownState {
		fmt.Fprintf(w, "Warning:  %s\n", r.ValidationError)
	}
	if r.PulseCount > 0 {
		fmt.Fprintf(w, "Train:    %d pulses @ %d Hz, %.1f ms\n", r.PulseCount, r.CarrierHz, float64(r.DurationUs)/1000)
	}
}

func spacedHex(b []int) string {
	out := ""
	for i, v := range b {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%02X", v)
	}
	return out
}
