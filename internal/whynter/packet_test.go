package whynter

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestParsePacketHex(t *testing.T) {
	c := qt.New(t)

	want := Packet{0x48, 0x18, 0xA8, 0x4B}
	for _, in := range []string{"4818A84B", "48 18 a8 4b", "0x4818A84B", "48:18:A8:4B"} {
		got, err := ParsePacketHex(in)
		c.Assert(err, qt.IsNil, qt.Commentf("input %q", in))
		c.Assert(got, qt.Equals, want)
	}

	for _, in := range []string{"", "4818A8", "4818A84B00", "zz18A84B"} {
		_, err := ParsePacketHex(in)
		c.Assert(err, qt.IsNotNil, qt.Commentf("input %q", in))
	}
}

func TestPacketFormatting(t *testing.T) {
	c := qt.New(t)

	pkt := Packet{0x48, 0x18, 0xA8, 75}
	c.Assert(pkt.String(), qt.Equals, "48 18 A8 4B")
	c.Assert(pkt.Hex(), qt.Equals, "4818A84B")
	c.Assert(pkt.Fields(), qt.Equals, Fields{Header: 0x48, ModeBits: 0x10, FanBits: 0x08, Power: 0xA8, Setpoint: 75})
}

func TestPacketValidate(t *testing.T) {
	c := qt.New(t)

	c.Assert(Packet{0x48, 0x18, 0xA8, 75}.Validate(), qt.IsNil)

	tests := map[string]Packet{
		"header":        {0x49, 0x18, 0xA8, 75},
		"two modes":     {0x48, 0x58, 0xA8, 75},
		"no fan":        {0x48, 0x10, 0xA8, 75},
		"two fans":      {0x48, 0x16, 0xA8, 75},
		"power":         {0x48, 0x18, 0x00, 75},
		"setpoint low":  {0x48, 0x18, 0xA8, 61},
		"setpoint high": {0x48, 0x18, 0xA8, 87},
	}
	for name, pkt := range tests {
		c.Run(name, func(c *qt.C) {
			c.Assert(pkt.Validate(), qt.IsNotNil)
		})
	}
}

func TestParseEnums(t *testing.T) {
	c := qt.New(t)

	for in, want := range map[string]Mode{"cool": ModeCool, "DRY": ModeDry, "fan_only": ModeFanOnly, "fan": ModeFanOnly} {
		got, err := ParseMode(in)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
	_, err := ParseMode("heat")
	c.Assert(err, qt.ErrorMatches, `unknown mode "heat".*`)

	for in, want := range map[string]FanSpeed{"low": FanLow, "Med": FanMedium, "high": FanHigh} {
		got, err := ParseFanSpeed(in)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
	_, err = ParseFanSpeed("auto")
	c.Assert(err, qt.IsNotNil)

	for _, m := range Traits().Modes {
		back, err := ParseMode(m.String())
		c.Assert(err, qt.IsNil)
		c.Assert(back, qt.Equals, m)
	}
	c.Assert(ModeFanOnly.Next(), qt.Equals, ModeCool)
	c.Assert(FanHigh.Next(), qt.Equals, FanLow)
}
