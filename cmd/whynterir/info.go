package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/whynter"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show protocol timing and device capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			out := cmd.OutOrStdout()
			traits := whynter.Traits()

			fmt.Fprintf(out, "Protocol\n")
			fmt.Fprintf(out, "  carrier       %d Hz\n", whynter.CarrierFrequency)
			fmt.Fprintf(out, "  lead-in       mark %dus, space %dus\n", whynter.LeadMark.Microseconds(), whynter.LeadSpace.Microseconds())
			fmt.Fprintf(out, "  bit mark      %dus\n", whynter.BitMark.Microseconds())
			fmt.Fprintf(out, "  zero space    %dus\n", whynter.ZeroSpace.Microseconds())
			fmt.Fprintf(out, "  one space     %dus\n", whynter.OneSpace.Microseconds())
			fmt.Fprintf(out, "  trailer       mark %dus, space %dus\n", whynter.TrailMark.Microseconds(), whynter.StopSpace.Microseconds())
			fmt.Fprintf(out, "  packet        %d bytes, LSB first\n", whynter.PacketLength)
			fmt.Fprintf(out, "  train         %d pulses\n", whynter.TrainLength)
			fmt.Fprintf(out, "  tolerance     ±%.0f%% (default)\n", whynter.DefaultTolerance*100)

			modes := make([]string, len(traits.Modes))
			for i, m := range traits.Modes {
				modes[i] = m.String()
			}
			fans := make([]string, len(traits.FanSpeeds))
			for i, f := range traits.FanSpeeds {
				fans[i] = f.String()
			}
			fmt.Fprintf(out, "\nDevice\n")
			fmt.Fprintf(out, "  setpoint      %.2f to %.1f °C, step %.0f (%d to %d °F)\n",
				traits.MinTargetCelsius, traits.MaxTargetCelsius, traits.StepCelsius,
				whynter.MinTargetFahrenheit, whynter.MaxTargetFahrenheit)
			fmt.Fprintf(out, "  modes         %s\n", strings.Join(modes, ", "))
			fmt.Fprintf(out, "  fan speeds    %s\n", strings.Join(fans, ", "))
			fmt.Fprintf(out, "  heat          %s\n", yesNo(traits.SupportsHeat))
			fmt.Fprintf(out, "  swing         %s\n", yesNo(traits.SupportsSwing))
			return nil
		},
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
