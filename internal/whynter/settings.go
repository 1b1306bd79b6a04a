package whynter

import (
	"fmt"
	"strings"
)

// Mode is the HVAC mode the unit runs in when powered.
type Mode int

const (
	ModeCool Mode = iota
	ModeDry
	ModeFanOnly
)

// FanSpeed is the blower speed.
type FanSpeed int

const (
	FanLow FanSpeed = iota
	FanMedium
	FanHigh
)

// Settings is the state to transmit. The zero value is powered off, cool,
// low fan, with a setpoint that clamps to the minimum.
type Settings struct {
	Power         bool
	Mode          Mode
	FanSpeed      FanSpeed
	TargetCelsius float64
}

func (m Mode) String() string {
	switch m {
	case ModeCool:
		return "cool"
	case ModeDry:
		return "dry"
	case ModeFanOnly:
		return "fan_only"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts cool, dry, fan_only (also fan-only, fan).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cool":
		return ModeCool, nil
	case "dry":
		return ModeDry, nil
	case "fan_only", "fan-only", "fan":
		return ModeFanOnly, nil
	default:
		return ModeCool, fmt.Errorf("unknown mode %q (expected cool, dry, fan_only)", s)
	}
}

// Next cycles cool → dry → fan_only → cool.
func (m Mode) Next() Mode {
	switch m {
	case ModeCool:
		return ModeDry
	case ModeDry:
		return ModeFanOnly
	default:
		return ModeCool
	}
}

func (f FanSpeed) String() string {
	switch f {
	case FanLow:
		return "low"
	case FanMedium:
		return "medium"
	case FanHigh:
		return "high"
	default:
		return fmt.Sprintf("fan(%d)", int(f))
	}
}

// ParseFanSpeed accepts low, medium, high (also min, med, max).
func ParseFanSpeed(s string) (FanSpeed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "min":
		return FanLow, nil
	case "medium", "med":
		return FanMedium, nil
	case "high", "max":
		return FanHigh, nil
	default:
		return FanLow, fmt.Errorf("unknown fan speed %q (expected low, medium, high)", s)
	}
}

// Next cycles low → medium → high → low.
func (f FanSpeed) Next() FanSpeed {
	switch f {
	case FanLow:
		return FanMedium
	case FanMedium:
		return FanHigh
	default:
		return FanLow
	}
}

// DeviceTraits describes what the unit supports.
type DeviceTraits struct {
	MinTargetCelsius float64
	MaxTargetCelsius float64
	StepCelsius      float64
	Modes            []Mode
	FanSpeeds        []FanSpeed
	SupportsHeat     bool
	SupportsSwing    bool
}

// Traits returns the capabilities of the Whynter unit.
func Traits() DeviceTraits {
	return DeviceTraits{
		MinTargetCelsius: MinTargetCelsius,
		MaxTargetCelsius: MaxTargetCelsius,
		StepCelsius:      TargetStepCelsius,
		Modes:            []Mode{ModeCool, ModeDry, ModeFanOnly},
		FanSpeeds:        []FanSpeed{FanLow, FanMedium, FanHigh},
	}
}
