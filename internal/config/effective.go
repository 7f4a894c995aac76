package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if p := raw.StartingPoint; p != nil {
		cfg.StartingPoint.X = derefInt(p.X, cfg.StartingPoint.X)
		cfg.StartingPoint.Y = derefInt(p.Y, cfg.StartingPoint.Y)
	}
	if b := raw.Bubble; b != nil {
		cfg.Bubble.Width = derefInt(b.Width, cfg.Bubble.Width)
		cfg.Bubble.Height = derefInt(b.Height, cfg.Bubble.Height)
		if b.Color != nil {
			cfg.Bubble.Color = strings.TrimSpace(*b.Color)
		}
		cfg.Bubble.Alpha = derefFloat(b.Alpha, cfg.Bubble.Alpha)
	}
	if s := raw.Spring; s != nil {
		cfg.Spring.Stiffness = derefFloat(s.Stiffness, cfg.Spring.Stiffness)
		cfg.Spring.DampingRatio = derefFloat(s.DampingRatio, cfg.Spring.DampingRatio)
		cfg.Spring.FPS = derefInt(s.FPS, cfg.Spring.FPS)
		cfg.Spring.ValueThreshold = derefFloat(s.ValueThreshold, cfg.Spring.ValueThreshold)
		cfg.Spring.VelocityThreshold = derefFloat(s.VelocityThreshold, cfg.Spring.VelocityThreshold)
		cfg.Spring.MaxDurationMs = derefInt(s.MaxDurationMs, cfg.Spring.MaxDurationMs)
	}
	cfg.TouchSlop = derefInt(raw.TouchSlop, cfg.TouchSlop)
	if raw.SnapOnRelease != nil {
		cfg.SnapOnRelease = *raw.SnapOnRelease
	}
	if raw.SnapHotkey != nil {
		cfg.SnapHotkey = strings.TrimSpace(*raw.SnapHotkey)
	}
	if raw.ToggleHotkey != nil {
		cfg.ToggleHotkey = strings.TrimSpace(*raw.ToggleHotkey)
	}
	if raw.Monitor != nil {
		cfg.Monitor = strings.TrimSpace(*raw.Monitor)
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
