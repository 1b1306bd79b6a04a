package whynter

import (
	"errors"
	"fmt"
	"time"
)

// Decode failures. Every error returned by Decode wraps exactly one of these.
var (
	ErrMalformedLength = errors.New("whynter: malformed pulse train length")
	ErrInvalidLeadIn   = errors.New("whynter: invalid lead-in")
	ErrAmbiguousBit    = errors.New("whynter: ambiguous bit")
	ErrInvalidTrailer  = errors.New("whynter: invalid trailer")
)

// DecodeError locates a decode failure within the train.
type DecodeError struct {
	Err   error
	Index int   // pulse index, -1 for length errors
	Bit   int   // bit-cell number 0..31, -1 outside the data section
	Got   Pulse // offending pulse
	Want  []Pulse
	Count int // train length, set for ErrMalformedLength
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrMalformedLength) {
		return fmt.Sprintf("%v: got %d pulses, want %d", e.Err, e.Count, TrainLength)
	}
	msg := fmt.Sprintf("%v at pulse %d", e.Err, e.Index)
	if e.Bit >= 0 {
		msg += fmt.Sprintf(" (byte %d bit %d)", e.Bit/BitsPerByte, e.Bit%BitsPerByte)
	}
	msg += fmt.Sprintf(": got %s", e.Got)
	if len(e.Want) > 0 {
		msg += ", want"
		for i, w := range e.Want {
			if i > 0 {
				msg += " or"
			}
			msg += " " + w.String()
		}
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder parses captured trains. Tolerance is the accepted deviation as a
// fraction of each nominal duration; zero means DefaultTolerance. Capture
// hardware jitter varies, so callers tune it per receiver.
type Decoder struct {
	Tolerance float64
}

// Decode parses a train with DefaultTolerance.
func Decode(train Train) (Packet, error) {
	return Decoder{}.Decode(train)
}

// Decode parses a captured train back into a packet. It only checks timing
// and structure; bytes that are not known protocol values are returned as-is.
func (d Decoder) Decode(train Train) (Packet, error) {
	var pkt Packet
	pulses := train.Pulses
	if len(pulses) != TrainLength {
		return pkt, &DecodeError{Err: ErrMalformedLength, Index: -1, Bit: -1, Count: len(pulses)}
	}

	if err := d.expect(pulses, 0, Pulse{Mark, LeadMark}, ErrInvalidLeadIn); err != nil {
		return pkt, err
	}
	if err := d.expect(pulses, 1, Pulse{Space, LeadSpace}, ErrInvalidLeadIn); err != nil {
		return pkt, err
	}

	for bit := 0; bit < PacketLength*BitsPerByte; bit++ {
		idx := 2 + bit*2
		mark, space := pulses[idx], pulses[idx+1]
		if mark.Kind != Mark || !d.within(mark.Duration, BitMark) {
			return pkt, &DecodeError{Err: ErrAmbiguousBit, Index: idx, Bit: bit, Got: mark, Want: []Pulse{{Mark, BitMark}}}
		}
		one, ok := d.classify(space)
		if !ok {
			return pkt, &DecodeError{
				Err:   ErrAmbiguousBit,
				Index: idx + 1,
				Bit:   bit,
				Got:   space,
				Want:  []Pulse{{Space, ZeroSpace}, {Space, OneSpace}},
			}
		}
		if one {
			pkt[bit/BitsPerByte] |= byte(1) << (bit % BitsPerByte)
		}
	}

	if err := d.expect(pulses, TrainLength-2, Pulse{Mark, TrailMark}, ErrInvalidTrailer); err != nil {
		return pkt, err
	}
	if err := d.expect(pulses, TrainLength-1, Pulse{Space, StopSpace}, ErrInvalidTrailer); err != nil {
		return pkt, err
	}
	return pkt, nil
}

func (d Decoder) expect(pulses []Pulse, idx int, want Pulse, kind error) error {
	got := pulses[idx]
	if got.Kind != want.Kind || !d.within(got.Duration, want.Duration) {
		return &DecodeError{Err: kind, Index: idx, Bit: -1, Got: got, Want: []Pulse{want}}
	}
	return nil
}

// classify reports whether a bit space is a one. When both windows accept
// the duration the closer nominal wins.
func (d Decoder) classify(p Pulse) (one bool, ok bool) {
	if p.Kind != Space {
		return false, false
	}
	zero := d.within(p.Duration, ZeroSpace)
	one = d.within(p.Duration, OneSpace)
	switch {
	case zero && one:
		return absDuration(p.Duration-OneSpace) < absDuration(p.Duration-ZeroSpace), true
	case zero:
		return false, true
	case one:
		return true, true
	default:
		return false, false
	}
}

func (d Decoder) within(got, nominal time.Duration) bool {
	return absDuration(got-nominal) <= d.window(nominal)
}

func (d Decoder) window(nominal time.Duration) time.Duration {
	return time.Duration(float64(nominal) * d.tolerance())
}

func (d Decoder) tolerance() float64 {
	if d.Tolerance <= 0 {
		return DefaultTolerance
	}
	return d.Tolerance
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
