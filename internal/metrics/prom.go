package metrics

// Prometheus counters for codec activity, exported as a node_exporter textfile

import (
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// Collector holds the codec metrics on a private registry so tests and
// repeated CLI invocations never collide with the default registerer.
type Collector struct {
	registry *prometheus.Registry

	frames         *prometheus.CounterVec
	decodeErrors   *prometheus.CounterVec
	transmitErrors *prometheus.CounterVec
	outOfWindow    *prometheus.CounterVec
	deviation      *prometheus.HistogramVec
}

// NewCollector creates and registers the whynterir metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whynterir_frames_total",
				Help: "Frames handled, by operation",
			},
			[]string{"op"},
		),
		decodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whynterir_decode_errors_total",
				Help: "Captures that failed to decode, by reason",
			},
			[]string{"reason"},
		),
		transmitErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whynterir_transmit_errors_total",
				Help: "Frames the transmitter rejected, by target",
			},
			[]string{"target"},
		),
		outOfWindow: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whynterir_pulses_out_of_window_total",
				Help: "Analyzed pulses outside the decoder tolerance, by role",
			},
			[]string{"role"},
		),
		deviation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whynterir_pulse_deviation_microseconds",
				Help:    "Absolute deviation of analyzed pulses from nominal",
				Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600},
			},
			[]string{"role"},
		),
	}
	c.registry.MustRegister(c.frames, c.decodeErrors, c.transmitErrors, c.outOfWindow, c.deviation)
	return c
}

// Registry exposes the registry, e.g. for promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveFrame counts a compiled, encoded, sent or decoded frame.
func (c *Collector) ObserveFrame(op string) {
	c.frames.WithLabelValues(op).Inc()
}

// ObserveDecodeError counts a failed decode under its sentinel reason.
func (c *Collector) ObserveDecodeError(err error) {
	c.decodeErrors.WithLabelValues(DecodeReason(err)).Inc()
}

// ObserveTransmitError counts a transmit failure for a target.
func (c *Collector) ObserveTransmitError(target string) {
	c.transmitErrors.WithLabelValues(target).Inc()
}

// ObserveSamples feeds classified pulses into the deviation histogram.
func (c *Collector) ObserveSamples(samples []Sample) {
	for _, sm := range samples {
		role := string(sm.Role)
		if !sm.InTolerance {
			c.outOfWindow.WithLabelValues(role).Inc()
		}
		if sm.Role == RoleUnknown {
			continue
		}
		c.deviation.WithLabelValues(role).Observe(math.Abs(float64(sm.DeviationUs)))
	}
}

// WriteTextfile writes every metric in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// DecodeReason maps a decode error to a short label value.
func DecodeReason(err error) string {
	switch {
	case errors.Is(err, whynter.ErrMalformedLength):
		return "length"
	case errors.Is(err, whynter.ErrInvalidLeadIn):
		return "lead_in"
	case errors.Is(err, whynter.ErrAmbiguousBit):
		return "bit"
	case errors.Is(err, whynter.ErrInvalidTrailer):
		return "trailer"
	default:
		return "other"
	}
}
