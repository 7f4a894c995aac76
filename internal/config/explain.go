package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths:
//
//	log_level
//	starting_point, starting_point.x, starting_point.y
//	bubble, bubble.width, bubble.height, bubble.color, bubble.alpha
//	spring, spring.stiffness, spring.damping_ratio, spring.fps,
//	spring.value_threshold, spring.velocity_threshold, spring.max_duration_ms
//	touch_slop
//	snap_on_release
//	snap_hotkey
//	toggle_hotkey
//	monitor
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	field := ""
	if len(parts) == 2 {
		field = parts[1]
	}

	switch parts[0] {
	case "starting_point":
		switch field {
		case "":
			return cfg.StartingPoint, nil
		case "x":
			return cfg.StartingPoint.X, nil
		case "y":
			return cfg.StartingPoint.Y, nil
		}
	case "bubble":
		switch field {
		case "":
			return cfg.Bubble, nil
		case "width":
			return cfg.Bubble.Width, nil
		case "height":
			return cfg.Bubble.Height, nil
		case "color":
			return cfg.Bubble.Color, nil
		case "alpha":
			return cfg.Bubble.Alpha, nil
		}
	case "spring":
		switch field {
		case "":
			return cfg.Spring, nil
		case "stiffness":
			return cfg.Spring.Stiffness, nil
		case "damping_ratio":
			return cfg.Spring.DampingRatio, nil
		case "fps":
			return cfg.Spring.FPS, nil
		case "value_threshold":
			return cfg.Spring.ValueThreshold, nil
		case "velocity_threshold":
			return cfg.Spring.VelocityThreshold, nil
		case "max_duration_ms":
			return cfg.Spring.MaxDurationMs, nil
		}
	default:
		if field != "" {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[0] {
		case "log_level":
			return cfg.LogLevel, nil
		case "touch_slop":
			return cfg.TouchSlop, nil
		case "snap_on_release":
			return cfg.SnapOnRelease, nil
		case "snap_hotkey":
			return cfg.SnapHotkey, nil
		case "toggle_hotkey":
			return cfg.ToggleHotkey, nil
		case "monitor":
			return cfg.Monitor, nil
		}
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
