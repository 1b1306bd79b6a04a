package capture

import (
	"fmt"
	"io"
	"sync"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// Writer is a whynter.Transmitter that records every train to an io.Writer
// instead of driving an LED. Safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	count  int
}

// NewWriter returns a sink writing trains in format to w.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format}
}

// Transmit renders one train. YAML documents are separated by "---".
func (sw *Writer) Transmit(carrierHz int, pulses []whynter.Pulse) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	train := whynter.Train{CarrierHz: carrierHz, Pulses: pulses}
	var pkt *whynter.Packet
	if decoded, err := whynter.Decode(train); err == nil {
		pkt = &decoded
	}
	data, err := Render(train, sw.format, pkt)
	if err != nil {
		return err
	}
	if sw.format == FormatYAML && sw.count > 0 {
		if _, err := io.WriteString(sw.w, "---\n"); err != nil {
			return fmt.Errorf("write capture: %w", err)
		}
	}
	if _, err := sw.w.Write(data); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	sw.count++
	return nil
}

// Count is the number of trains written.
func (sw *Writer) Count() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.count
}
