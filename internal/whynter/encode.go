package whynter

import (
	"fmt"
	"time"
)

// Kind distinguishes carrier-on from carrier-off pulses.
type Kind int

const (
	Mark Kind = iota
	Space
)

func (k Kind) String() string {
	if k == Mark {
		return "mark"
	}
	return "space"
}

// Pulse is a single mark or space.
type Pulse struct {
	Kind     Kind
	Duration time.Duration
}

func (p Pulse) String() string {
	return fmt.Sprintf("%s(%dus)", p.Kind, p.Duration.Microseconds())
}

// Train is a carrier frequency plus the ordered pulses to emit on it.
type Train struct {
	CarrierHz int
	Pulses    []Pulse
}

// Duration is the total air time of the train.
func (t Train) Duration() time.Duration {
	var total time.Duration
	for _, p := range t.Pulses {
		total += p.Duration
	}
	return total
}

// Transmitter accepts a modulated pulse list and sends it.
type Transmitter interface {
	Transmit(carrierHz int, pulses []Pulse) error
}

// Encode serializes a packet into its 68-pulse train.
func Encode(pkt Packet) Train {
	pulses := make([]Pulse, 0, TrainLength)

	pulses = append(pulses, Pulse{Mark, LeadMark}, Pulse{Space, LeadSpace})

	for _, b := range pkt {
		// bits go out LSB -> MSB for each byte
		for i := 0; i < BitsPerByte; i++ {
			pulses = append(pulses, Pulse{Mark, BitMark})
			if b&(byte(1)<<i) == 0 {
				pulses = append(pulses, Pulse{Space, ZeroSpace})
			} else {
				pulses = append(pulses, Pulse{Space, OneSpace})
			}
		}
	}

	pulses = append(pulses, Pulse{Mark, TrailMark}, Pulse{Space, StopSpace})

	return Train{CarrierHz: CarrierFrequency, Pulses: pulses}
}

// Send compiles and encodes settings and hands the train to tx.
func Send(tx Transmitter, s Settings) (Packet, error) {
	pkt := Compile(s)
	train := Encode(pkt)
	if err := tx.Transmit(train.CarrierHz, train.Pulses); err != nil {
		return pkt, fmt.Errorf("transmit %s: %w", pkt, err)
	}
	return pkt, nil
}
