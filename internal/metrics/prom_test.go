package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tonylturner/whynterir/internal/whynter"
)

func TestDecodeReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&whynter.DecodeError{Err: whynter.ErrMalformedLength, Index: -1, Bit: -1}, "length"},
		{&whynter.DecodeError{Err: whynter.ErrInvalidLeadIn}, "lead_in"},
		{fmt.Errorf("decode cap.txt: %w", &whynter.DecodeError{Err: whynter.ErrAmbiguousBit}), "bit"},
		{whynter.ErrInvalidTrailer, "trailer"},
		{errors.New("read failed"), "other"},
	}
	for _, tt := range tests {
		if got := DecodeReason(tt.err); got != tt.want {
			t.Errorf("DecodeReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestCollectorTextfile(t *testing.T) {
	c := NewCollector()
	c.ObserveFrame("encode")
	c.ObserveFrame("encode")
	c.ObserveFrame("decode")
	c.ObserveDecodeError(&whynter.DecodeError{Err: whynter.ErrAmbiguousBit})
	c.ObserveTransmitError("redis")

	train := jittered(whynter.Packet{0x48, 0x12, 0xA8, 75}, 200*time.Microsecond)
	c.ObserveSamples(Classify(train, 0.25))

	path := filepath.Join(t.TempDir(), "whynterir.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		`whynterir_frames_total{op="encode"} 2`,
		`whynterir_frames_total{op="decode"} 1`,
		`whynterir_decode_errors_total{reason="bit"} 1`,
		`whynterir_transmit_errors_total{target="redis"} 1`,
		// 200us over a 550us bit mark is outside 25%
		`whynterir_pulses_out_of_window_total{role="bit_mark"} 32`,
		`whynterir_pulse_deviation_microseconds_count{role="bit_mark"} 32`,
		`whynterir_pulse_deviation_microseconds_bucket{role="lead_space",le="10"} 1`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()
	a.ObserveFrame("send")

	families, err := b.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() == "whynterir_frames_total" && len(f.GetMetric()) != 0 {
			t.Errorf("second collector saw frames from the first")
		}
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	c := NewCollector()
	if err := c.WriteTextfile("/nonexistent/dir/whynterir.prom"); err == nil {
		t.Error("expected error for missing directory")
	}
}
