package report

import (
	"time"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/metrics"
	"github.com/tonylturner/whynterir/internal/whynter"
)

// now is replaced in tests.
var now = time.Now

func generatedAt() string {
	return now().UTC().Format(time.RFC3339)
}

// SettingsReport echoes the settings a frame was compiled from.
type SettingsReport struct {
	Power         bool    `json:"power"`
	Mode          string  `json:"mode"`
	FanSpeed      string  `json:"fan_speed"`
	TargetCelsius float64 `json:"target_celsius"`
}

// FrameReport describes one compiled, encoded or decoded frame.
type FrameReport struct {
	GeneratedAt     string          `json:"generated_at"`
	Version         string          `json:"whynterir_version"`
	Source          string          `json:"source,omitempty"`
	Settings        *SettingsReport `json:"settings,omitempty"`
	PacketHex       string          `json:"packet_hex,omitempty"`
	Bytes           []int           `json:"bytes,omitempty"`
	Fields          *whynter.Fields `json:"fields,omitempty"`
	KnownState      bool            `json:"known_state"`
	ValidationError string          `json:"validation_error,omitempty"`
	CarrierHz       int             `json:"carrier_hz,omitempty"`
	PulseCount      int             `json:"pulse_count,omitempty"`
	DurationUs      int64           `json:"duration_us,omitempty"`
	Pulses          []int           `json:"pulses,omitempty"`
	DecodeError     string          `json:"decode_error,omitempty"`
}

// TimingReport is the JSON form of a capture timing analysis.
type TimingReport struct {
	GeneratedAt        string                `json:"generated_at"`
	Version            string                `json:"whynterir_version"`
	Sources            []string              `json:"sources"`
	Tolerance          float64               `json:"tolerance"`
	SuggestedTolerance float64               `json:"suggested_tolerance"`
	Pulses             int                   `json:"pulses"`
	OutOfWindow        int                   `json:"out_of_window"`
	Roles              map[string]RoleReport `json:"roles"`
}

// RoleReport holds deviation stats for one pulse role, in microseconds.
type RoleReport struct {
	Count        int     `json:"count"`
	OutOfWindow  int     `json:"out_of_window"`
	MinDeviation float64 `json:"min_deviation_us"`
	MaxDeviation float64 `json:"max_deviation_us"`
	AvgDeviation float64 `json:"avg_deviation_us"`
	P50Abs       float64 `json:"p50_abs_us"`
	P90Abs       float64 `json:"p90_abs_us"`
	P99Abs       float64 `json:"p99_abs_us"`
}

// NewFrameReport fills packet fields. Settings and train are optional.
func NewFrameReport(version, source string, s *whynter.Settings, pkt whynter.Packet, train *whynter.Train) FrameReport {
	fields := pkt.Fields()
	r := FrameReport{
		GeneratedAt: generatedAt(),
		Version:     version,
		Source:      source,
		PacketHex:   pkt.Hex(),
		Bytes:       []int{int(pkt[0]), int(pkt[1]), int(pkt[2]), int(pkt[3])},
		Fields:      &fields,
		KnownState:  true,
	}
	if err := pkt.Validate(); err != nil {
		r.KnownState = false
		r.ValidationError = err.Error()
	}
	if s != nil {
		r.Settings = &SettingsReport{
			Power:         s.Power,
			Mode:          s.Mode.String(),
			FanSpeed:      s.FanSpeed.String(),
			TargetCelsius: s.TargetCelsius,
		}
	}
	if train != nil {
		r.CarrierHz = train.CarrierHz
		r.PulseCount = len(train.Pulses)
		r.DurationUs = train.Duration().Microseconds()
		r.Pulses = capture.ToSigned(train.Pulses)
	}
	return r
}

// NewDecodeFailure reports a capture that could not be decoded.
func NewDecodeFailure(version, source string, train whynter.Train, err error) FrameReport {
	return FrameReport{
		GeneratedAt: generatedAt(),
		Version:     version,
		Source:      source,
		CarrierHz:   train.CarrierHz,
		PulseCount:  len(train.Pulses),
		DecodeError: err.Error(),
	}
}

// NewTimingReport converts an analysis summary.
func NewTimingReport(version string, sources []string, summary *metrics.Summary, samples []metrics.Sample) TimingReport {
	r := TimingReport{
		GeneratedAt:        generatedAt(),
		Version:            version,
		Sources:            sources,
		Tolerance:          summary.Tolerance,
		SuggestedTolerance: metrics.SuggestTolerance(samples),
		Pulses:             summary.Pulses,
		OutOfWindow:        summary.OutOfWindow,
		Roles:              make(map[string]RoleReport, len(summary.ByRole)),
	}
	for role, st := range summary.ByRole {
		r.Roles[string(role)] = RoleReport{
			Count:        st.Count,
			OutOfWindow:  st.OutOfWindow,
			MinDeviation: st.MinDeviation,
			MaxDeviation: st.MaxDeviation,
			AvgDeviation: st.AvgDeviation,
			P50Abs:       st.P50Abs,
			P90Abs:       st.P90Abs,
			P99Abs:       st.P99Abs,
		}
	}
	return r
}
