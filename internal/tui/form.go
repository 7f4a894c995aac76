package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/floatbubble/internal/config"
)

// formValues are the strings huh binds to; they are converted on submit.
type formValues struct {
	StartX        string
	StartY        string
	Width         string
	Height        string
	Color         string
	SnapOnRelease bool
	SnapHotkey    string
	ToggleHotkey  string
	Monitor       string
	LogLevel      string
}

func valuesFromConfig(cfg *config.Config) formValues {
	return formValues{
		StartX:        strconv.Itoa(cfg.StartingPoint.X),
		StartY:        strconv.Itoa(cfg.StartingPoint.Y),
		Width:         strconv.Itoa(cfg.Bubble.Width),
		Height:        strconv.Itoa(cfg.Bubble.Height),
		Color:         cfg.Bubble.Color,
		SnapOnRelease: cfg.SnapOnRelease,
		SnapHotkey:    cfg.SnapHotkey,
		ToggleHotkey:  cfg.ToggleHotkey,
		Monitor:       cfg.Monitor,
		LogLevel:      cfg.LogLevel,
	}
}

// apply returns a copy of base with the form values applied and validated.
func (v formValues) apply(base *config.Config) (*config.Config, error) {
	cfg := *base

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"starting_point.x", v.StartX, &cfg.StartingPoint.X},
		{"starting_point.y", v.StartY, &cfg.StartingPoint.Y},
		{"bubble.width", v.Width, &cfg.Bubble.Width},
		{"bubble.height", v.Height, &cfg.Bubble.Height},
	}
	for _, f := range ints {
		n, err := strconv.Atoi(strings.TrimSpace(f.raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.name, f.raw)
		}
		*f.dst = n
	}

	cfg.Bubble.Color = strings.TrimSpace(v.Color)
	cfg.SnapOnRelease = v.SnapOnRelease
	cfg.SnapHotkey = strings.TrimSpace(v.SnapHotkey)
	cfg.ToggleHotkey = strings.TrimSpace(v.ToggleHotkey)
	cfg.Monitor = strings.TrimSpace(v.Monitor)
	if cfg.Monitor == "" {
		cfg.Monitor = config.ActiveMonitor
	}
	if v.LogLevel != "" {
		cfg.LogLevel = v.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive whole number")
	}
	return nil
}

func validateColor(s string) error {
	_, err := config.ParseColor(strings.TrimSpace(s))
	return err
}

// RunConfigForm asks for the common settings, starting from base, and returns
// the resulting configuration. huh.ErrUserAborted is returned when the user
// cancels.
func RunConfigForm(base *config.Config) (*config.Config, error) {
	if base == nil {
		base = config.DefaultConfig()
	}
	v := valuesFromConfig(base)

	levels := []huh.Option[string]{
		huh.NewOption("debug", "debug"),
		huh.NewOption("info", "info"),
		huh.NewOption("warning", "warning"),
		huh.NewOption("error", "error"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("starting_point.x").
				Title("Starting X").
				Description("Left edge of the bubble in screen pixels").
				Validate(validateInt).
				Value(&v.StartX),
			huh.NewInput().
				Key("starting_point.y").
				Title("Starting Y").
				Description("Top edge of the bubble in screen pixels").
				Validate(validateInt).
				Value(&v.StartY),
			huh.NewInput().
				Key("bubble.width").
				Title("Bubble Width").
				Validate(validatePositiveInt).
				Value(&v.Width),
			huh.NewInput().
				Key("bubble.height").
				Title("Bubble Height").
				Validate(validatePositiveInt).
				Value(&v.Height),
			huh.NewInput().
				Key("bubble.color").
				Title("Bubble Color").
				Description("Hex color such as #3498db").
				Validate(validateColor).
				Value(&v.Color),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Key("snap_on_release").
				Title("Snap to the nearest edge when a drag ends?").
				Value(&v.SnapOnRelease),
			huh.NewInput().
				Key("snap_hotkey").
				Title("Snap Hotkey").
				Description("X11 keybinding, empty to disable").
				Value(&v.SnapHotkey),
			huh.NewInput().
				Key("toggle_hotkey").
				Title("Toggle Hotkey").
				Description("X11 keybinding, empty to disable").
				Value(&v.ToggleHotkey),
			huh.NewInput().
				Key("monitor").
				Title("Monitor").
				Description(`RandR output name, or "active"`).
				Value(&v.Monitor),
			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(levels...).
				Value(&v.LogLevel),
		),
	).WithShowHelp(true).WithShowErrors(true)

	if err := form.Run(); err != nil {
		return nil, err
	}
	return v.apply(base)
}
