package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawPoint struct {
	X *int `yaml:"x"`
	Y *int `yaml:"y"`
}

type RawBubble struct {
	Width  *int     `yaml:"width"`
	Height *int     `yaml:"height"`
	Color  *string  `yaml:"color"`
	Alpha  *float64 `yaml:"alpha"`
}

type RawSpring struct {
	Stiffness         *float64 `yaml:"stiffness"`
	DampingRatio      *float64 `yaml:"damping_ratio"`
	FPS               *int     `yaml:"fps"`
	ValueThreshold    *float64 `yaml:"value_threshold"`
	VelocityThreshold *float64 `yaml:"velocity_threshold"`
	MaxDurationMs     *int     `yaml:"max_duration_ms"`
}

// RawConfig mirrors the YAML file. Nil fields were not set and leave the
// value underneath untouched when files are merged.
type RawConfig struct {
	Include       IncludeList `yaml:"include"`
	LogLevel      *string     `yaml:"log_level"`
	StartingPoint *RawPoint   `yaml:"starting_point"`
	Bubble        *RawBubble  `yaml:"bubble"`
	Spring        *RawSpring  `yaml:"spring"`
	TouchSlop     *int        `yaml:"touch_slop"`
	SnapOnRelease *bool       `yaml:"snap_on_release"`
	SnapHotkey    *string     `yaml:"snap_hotkey"`
	ToggleHotkey  *string     `yaml:"toggle_hotkey"`
	Monitor       *string     `yaml:"monitor"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.StartingPoint != nil {
		out.StartingPoint = mergeRawPoint(out.StartingPoint, overlay.StartingPoint)
	}
	if overlay.Bubble != nil {
		out.Bubble = mergeRawBubble(out.Bubble, overlay.Bubble)
	}
	if overlay.Spring != nil {
		out.Spring = mergeRawSpring(out.Spring, overlay.Spring)
	}
	if overlay.TouchSlop != nil {
		out.TouchSlop = overlay.TouchSlop
	}
	if overlay.SnapOnRelease != nil {
		out.SnapOnRelease = overlay.SnapOnRelease
	}
	if overlay.SnapHotkey != nil {
		out.SnapHotkey = overlay.SnapHotkey
	}
	if overlay.ToggleHotkey != nil {
		out.ToggleHotkey = overlay.ToggleHotkey
	}
	if overlay.Monitor != nil {
		out.Monitor = overlay.Monitor
	}

	return out
}

func mergeRawPoint(base, overlay *RawPoint) *RawPoint {
	out := RawPoint{}
	if base != nil {
		out = *base
	}
	if overlay.X != nil {
		out.X = overlay.X
	}
	if overlay.Y != nil {
		out.Y = overlay.Y
	}
	return &out
}

func mergeRawBubble(base, overlay *RawBubble) *RawBubble {
	out := RawBubble{}
	if base != nil {
		out = *base
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	if overlay.Color != nil {
		out.Color = overlay.Color
	}
	if overlay.Alpha != nil {
		out.Alpha = overlay.Alpha
	}
	return &out
}

func mergeRawSpring(base, overlay *RawSpring) *RawSpring {
	out := RawSpring{}
	if base != nil {
		out = *base
	}
	if overlay.Stiffness != nil {
		out.Stiffness = overlay.Stiffness
	}
	if overlay.DampingRatio != nil {
		out.DampingRatio = overlay.DampingRatio
	}
	if overlay.FPS != nil {
		out.FPS = overlay.FPS
	}
	if overlay.ValueThreshold != nil {
		out.ValueThreshold = overlay.ValueThreshold
	}
	if overlay.VelocityThreshold != nil {
		out.VelocityThreshold = overlay.VelocityThreshold
	}
	if overlay.MaxDurationMs != nil {
		out.MaxDurationMs = overlay.MaxDurationMs
	}
	return &out
}
