package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tonylturner/whynterir/internal/whynter"
)

// ComposeValues holds the answers bound to the compose form.
type ComposeValues struct {
	Power  bool
	Mode   string
	Fan    string
	Target string
}

// NewComposeValues seeds the form from existing settings.
func NewComposeValues(s whynter.Settings) *ComposeValues {
	return &ComposeValues{
		Power:  s.Power,
		Mode:   s.Mode.String(),
		Fan:    s.FanSpeed.String(),
		Target: strconv.FormatFloat(whynter.ClampCelsius(s.TargetCelsius), 'f', -1, 64),
	}
}

// Settings converts the answers. Target is in °C and clamps to the device range.
func (v *ComposeValues) Settings() (whynter.Settings, error) {
	mode, err := whynter.ParseMode(v.Mode)
	if err != nil {
		return whynter.Settings{}, err
	}
	fan, err := whynter.ParseFanSpeed(v.Fan)
	if err != nil {
		return whynter.Settings{}, err
	}
	target, err := parseCelsius(v.Target)
	if err != nil {
		return whynter.Settings{}, err
	}
	return whynter.Settings{
		Power:         v.Power,
		Mode:          mode,
		FanSpeed:      fan,
		TargetCelsius: target,
	}, nil
}

func parseCelsius(s string) (float64, error) {
	t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target temperature %q", s)
	}
	return t, nil
}

// BuildComposeForm returns a huh form bound to v.
func BuildComposeForm(v *ComposeValues) *huh.Form {
	traits := whynter.Traits()

	modeOptions := make([]huh.Option[string], 0, len(traits.Modes))
	for _, m := range traits.Modes {
		modeOptions = append(modeOptions, huh.NewOption(m.String(), m.String()))
	}
	fanOptions := make([]huh.Option[string], 0, len(traits.FanSpeeds))
	for _, f := range traits.FanSpeeds {
		fanOptions = append(fanOptions, huh.NewOption(f.String(), f.String()))
	}

	powerGroup := huh.NewGroup(
		huh.NewConfirm().
			Title("Power").
			Description("Turn the unit on or off.").
			Key("power").
			Affirmative("On").
			Negative("Off").
			Value(&v.Power),
	)

	stateGroup := huh.NewGroup(
		huh.NewSelect[string]().
			Title("Mode").
			Key("mode").
			Options(modeOptions...).
			Value(&v.Mode),
		huh.NewSelect[string]().
			Title("Fan speed").
			Key("fan").
			Options(fanOptions...).
			Value(&v.Fan),
		huh.NewInput().
			Title("Target (°C)").
			Description(fmt.Sprintf("%.2f to %.1f, values outside are clamped.",
				traits.MinTargetCelsius, traits.MaxTargetCelsius)).
			Key("target").
			Validate(func(s string) error {
				_, err := parseCelsius(s)
				return err
			}).
			Value(&v.Target),
	)

	return huh.NewForm(powerGroup, stateGroup)
}

// RunCompose runs the compose form on the terminal.
func RunCompose(defaults whynter.Settings) (whynter.Settings, error) {
	v := NewComposeValues(defaults)
	if err := BuildComposeForm(v).Run(); err != nil {
		return whynter.Settings{}, err
	}
	return v.Settings()
}
