package whynter

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// Packet is the 4-byte Whynter state frame.
type Packet [PacketLength]byte

// Compile packs settings into a packet. It never fails: an unknown mode or
// fan speed falls back to cool or low, and the setpoint is clamped.
//
// Mode and fan bits are sent even when power is off, matching the original
// remote which always reports what it would run if switched on.
func Compile(s Settings) Packet {
	var pkt Packet
	pkt[0] = Header
	pkt[1] = modeBit(s.Mode) | fanBit(s.FanSpeed)
	if s.Power {
		pkt[2] = PowerOn
	} else {
		pkt[2] = PowerOff
	}
	pkt[3] = setpointByte(s.TargetCelsius)
	return pkt
}

func modeBit(m Mode) byte {
	switch m {
	case ModeCool:
		return ModeBitCool
	case ModeDry:
		return ModeBitDry
	case ModeFanOnly:
		return ModeBitFan
	default:
		return ModeBitCool
	}
}

func fanBit(f FanSpeed) byte {
	switch f {
	case FanLow:
		return FanBitLow
	case FanMedium:
		return FanBitMedium
	case FanHigh:
		return FanBitHigh
	default:
		return FanBitLow
	}
}

// setpointByte clamps first and rounds second, so 16.67 °C gives 62 °F and
// 30 °C gives 86 °F.
func setpointByte(celsius float64) byte {
	if math.IsNaN(celsius) {
		celsius = DefaultTargetCelsius
	}
	c := ClampCelsius(celsius)
	return byte(math.Round(c*1.8 + 32.0))
}

// ClampCelsius limits a setpoint to the supported range.
func ClampCelsius(c float64) float64 {
	if c < MinTargetCelsius {
		return MinTargetCelsius
	}
	if c > MaxTargetCelsius {
		return MaxTargetCelsius
	}
	return c
}

// Bytes returns the packet as a slice.
func (p Packet) Bytes() []byte {
	return p[:]
}

// Hex returns the packet as uppercase hex without separators.
func (p Packet) Hex() string {
	return strings.ToUpper(hex.EncodeToString(p[:]))
}

func (p Packet) String() string {
	return fmt.Sprintf("%02X %02X %02X %02X", p[0], p[1], p[2], p[3])
}

// ParsePacketHex parses "4818A84B", "48 18 A8 4B" or "0x4818A84B".
func ParsePacketHex(s string) (Packet, error) {
	var pkt Packet
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "0x"), "0X")
	cleaned = strings.NewReplacer(" ", "", ":", "", ",", "").Replace(cleaned)
	if len(cleaned) != PacketLength*2 {
		return pkt, fmt.Errorf("packet hex must be %d bytes, got %q", PacketLength, s)
	}
	if _, err := hex.Decode(pkt[:], []byte(cleaned)); err != nil {
		return pkt, fmt.Errorf("packet hex: %w", err)
	}
	return pkt, nil
}

// Fields splits byte 1 into its mode and fan nibbles.
type Fields struct {
	Header   byte `json:"header"`
	ModeBits byte `json:"mode_bits"`
	FanBits  byte `json:"fan_bits"`
	Power    byte `json:"power"`
	Setpoint byte `json:"setpoint_f"`
}

// Fields returns the raw field values without interpreting them.
func (p Packet) Fields() Fields {
	return Fields{
		Header:   p[0],
		ModeBits: p[1] & 0xF0,
		FanBits:  p[1] & 0x0F,
		Power:    p[2],
		Setpoint: p[3],
	}
}

// Validate reports the first byte that is not one of the enumerated
// protocol values. A valid packet is structurally well-formed; it is not
// mapped back to Settings.
func (p Packet) Validate() error {
	f := p.Fields()
	if f.Header != Header {
		return fmt.Errorf("byte 0: header 0x%02X, want 0x%02X", f.Header, Header)
	}
	switch f.ModeBits {
	case ModeBitCool, ModeBitDry, ModeBitFan:
	default:
		return fmt.Errorf("byte 1: mode bits 0x%02X are not a single known mode", f.ModeBits)
	}
	switch f.FanBits {
	case FanBitLow, FanBitMedium, FanBitHigh:
	default:
		return fmt.Errorf("byte 1: fan bits 0x%02X are not a single known speed", f.FanBits)
	}
	switch f.Power {
	case PowerOn, PowerOff:
	default:
		return fmt.Errorf("byte 2: power 0x%02X, want 0x%02X or 0x%02X", f.Power, PowerOn, PowerOff)
	}
	if f.Setpoint < MinTargetFahrenheit || f.Setpoint > MaxTargetFahrenheit {
		return fmt.Errorf("byte 3: setpoint %d°F outside %d..%d", f.Setpoint, MinTargetFahrenheit, MaxTargetFahrenheit)
	}
	return nil
}
