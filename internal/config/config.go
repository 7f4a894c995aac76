package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/1broseidon/floatbubble/internal/spring"
	"gopkg.in/yaml.v3"
)

// ActiveMonitor places the bubble on whichever monitor holds the pointer.
const ActiveMonitor = "active"

// MaxBubbleSide bounds bubble.width and bubble.height in pixels.
const MaxBubbleSide = 4096

// Point is a screen-space position (top-left origin).
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// BubbleConfig describes how the bubble looks.
type BubbleConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	Color  string  `yaml:"color"`
	Alpha  float64 `yaml:"alpha"`
}

// SpringConfig tunes the edge snap animation.
type SpringConfig struct {
	Stiffness         float64 `yaml:"stiffness"`
	DampingRatio      float64 `yaml:"damping_ratio"`
	FPS               int     `yaml:"fps"`
	ValueThreshold    float64 `yaml:"value_threshold"`
	VelocityThreshold float64 `yaml:"velocity_threshold"`
	MaxDurationMs     int     `yaml:"max_duration_ms"`
}

// Config represents the effective floatbubble configuration.
type Config struct {
	LogLevel      string       `yaml:"log_level"`
	StartingPoint Point        `yaml:"starting_point"`
	Bubble        BubbleConfig `yaml:"bubble"`
	Spring        SpringConfig `yaml:"spring"`
	TouchSlop     int          `yaml:"touch_slop"`
	SnapOnRelease bool         `yaml:"snap_on_release"`
	SnapHotkey    string       `yaml:"snap_hotkey"`
	ToggleHotkey  string       `yaml:"toggle_hotkey"`
	Monitor       string       `yaml:"monitor"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	s := spring.DefaultConfig()
	return &Config{
		LogLevel:      "info",
		StartingPoint: Point{X: 0, Y: 200},
		Bubble: BubbleConfig{
			Width:  64,
			Height: 64,
			Color:  "#3498db",
			Alpha:  0.9,
		},
		Spring: SpringConfig{
			Stiffness:         s.Stiffness,
			DampingRatio:      s.DampingRatio,
			FPS:               s.FPS,
			ValueThreshold:    s.ValueThreshold,
			VelocityThreshold: s.VelocityThreshold,
			MaxDurationMs:     int(s.MaxDuration / time.Millisecond),
		},
		TouchSlop:     8,
		SnapOnRelease: true,
		SnapHotkey:    "Mod4-Mod1-b",
		ToggleHotkey:  "Mod4-Mod1-h",
		Monitor:       ActiveMonitor,
	}
}

// DefaultConfigPath returns ~/.config/floatbubble/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "floatbubble", "config.yaml"), nil
}

// SpringParams converts the spring section to animator parameters.
func (c *Config) SpringParams() spring.Config {
	return spring.Config{
		Stiffness:         c.Spring.Stiffness,
		DampingRatio:      c.Spring.DampingRatio,
		FPS:               c.Spring.FPS,
		ValueThreshold:    c.Spring.ValueThreshold,
		VelocityThreshold: c.Spring.VelocityThreshold,
		MaxDuration:       time.Duration(c.Spring.MaxDurationMs) * time.Millisecond,
	}
}

// BubbleSize returns the configured bubble size.
func (c *Config) BubbleSize() geom.Size {
	return geom.Size{WidthPx: c.Bubble.Width, HeightPx: c.Bubble.Height}
}

// StartingScreenPoint returns the configured starting point.
func (c *Config) StartingScreenPoint() geom.ScreenPoint {
	return geom.ScreenPoint{X: c.StartingPoint.X, Y: c.StartingPoint.Y}
}

// BubbleColor returns the bubble color as 0xRRGGBB.
func (c *Config) BubbleColor() uint32 {
	color, err := ParseColor(c.Bubble.Color)
	if err != nil {
		return 0
	}
	return color
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseColor parses "#rrggbb" (the leading # is optional).
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must be #rrggbb", s)
	}
	return uint32(v), nil
}

// Validate checks the configuration for values the daemon cannot use.
func (c *Config) Validate() error {
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.StartingPoint.X < 0 || c.StartingPoint.Y < 0 {
		return &ValidationError{Path: "starting_point", Err: fmt.Errorf("starting_point coordinates must be >= 0")}
	}
	if c.Bubble.Width <= 0 || c.Bubble.Width > MaxBubbleSide {
		return &ValidationError{Path: "bubble.width", Err: fmt.Errorf("width must be in 1..%d", MaxBubbleSide)}
	}
	if c.Bubble.Height <= 0 || c.Bubble.Height > MaxBubbleSide {
		return &ValidationError{Path: "bubble.height", Err: fmt.Errorf("height must be in 1..%d", MaxBubbleSide)}
	}
	if _, err := ParseColor(c.Bubble.Color); err != nil {
		return &ValidationError{Path: "bubble.color", Err: err}
	}
	if c.Bubble.Alpha <= 0 || c.Bubble.Alpha > 1 {
		return &ValidationError{Path: "bubble.alpha", Err: fmt.Errorf("alpha must be in (0, 1]")}
	}
	if err := c.SpringParams().Validate(); err != nil {
		return &ValidationError{Path: "spring." + springErrorPath(c.Spring), Err: err}
	}
	if c.TouchSlop < 0 {
		return &ValidationError{Path: "touch_slop", Err: fmt.Errorf("touch_slop must be >= 0")}
	}
	if strings.TrimSpace(c.Monitor) == "" {
		return &ValidationError{Path: "monitor", Err: fmt.Errorf("monitor must be %q or a monitor name", ActiveMonitor)}
	}
	return nil
}

func springErrorPath(s SpringConfig) string {
	switch {
	case !(s.Stiffness > 0) || math.IsInf(s.Stiffness, 0):
		return "stiffness"
	case !(s.DampingRatio > 0) || math.IsInf(s.DampingRatio, 0):
		return "damping_ratio"
	case s.FPS <= 0 || s.FPS > 1000:
		return "fps"
	case !(s.ValueThreshold > 0):
		return "value_threshold"
	case !(s.VelocityThreshold > 0):
		return "velocity_threshold"
	default:
		return "max_duration_ms"
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save validates the configuration and writes it to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
