package whynter

// Whynter portable air conditioner IR protocol constants.
//
// Packet: [Header] [Mode|Fan] [Power] [Setpoint °F], sent byte 0 first,
// each byte least significant bit first.

import "time"

const (
	// Whynter remotes modulate marks at 38 kHz
	CarrierFrequency = 38_000

	LeadMark  = time.Microsecond * 8500 // 8.5 ms
	LeadSpace = time.Microsecond * 4400 // 4.4 ms
	BitMark   = time.Microsecond * 550  // 550 us
	TrailMark = BitMark                 // closes the last bit-cell
	StopSpace = LeadSpace               // 4.4 ms

	// A zero bit is the LONG space and a one bit is the SHORT space.
	// This is the reverse of NEC and must not be swapped.
	ZeroSpace = time.Microsecond * 1550 // 1.55 ms
	OneSpace  = time.Microsecond * 550  // 550 us
)

// Packet layout.
const (
	PacketLength = 4
	BitsPerByte  = 8

	// lead-in pair + one mark/space pair per bit + trailing mark + stop space
	TrainLength = 2 + PacketLength*BitsPerByte*2 + 2
)

// Byte 0
const Header byte = 0x48

// Byte 1, bits 1..3
const (
	FanBitLow    byte = 0x02
	FanBitMedium byte = 0x04
	FanBitHigh   byte = 0x08
)

// Byte 1, bits 4..7
const (
	ModeBitCool byte = 0x10
	ModeBitDry  byte = 0x40
	ModeBitFan  byte = 0x80
)

// Byte 2
const (
	PowerOn  byte = 0xA8
	PowerOff byte = 0x32
)

// Setpoint range in Celsius. The bounds are 62 °F and 86 °F.
const (
	MinTargetCelsius     = 16.67
	MaxTargetCelsius     = 30.0
	DefaultTargetCelsius = 24.0
	TargetStepCelsius    = 1.0

	MinTargetFahrenheit byte = 62
	MaxTargetFahrenheit byte = 86
)

// DefaultTolerance is the fraction of a nominal duration a captured pulse may
// deviate by and still be accepted by Decode.
const DefaultTolerance = 0.25
