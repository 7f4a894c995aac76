// Package spring implements a single-axis damped spring that is advanced one
// animation frame at a time.
package spring

import (
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	// StiffnessLow matches a slow, soft spring.
	StiffnessLow = 200.0
	// StiffnessMedium is the default stiffness.
	StiffnessMedium = 1500.0
	// StiffnessHigh is a fast, snappy spring.
	StiffnessHigh = 10000.0

	// DampingCritical converges without overshoot.
	DampingCritical = 1.0
	// DampingLowBouncy overshoots noticeably before settling.
	DampingLowBouncy = 0.75

	DefaultFPS = 60

	// DefaultValueThreshold is the distance (px) under which the value is
	// considered to have reached its target.
	DefaultValueThreshold = 0.75
	// DefaultVelocityThreshold is the speed (px/s) under which the spring is at rest.
	DefaultVelocityThreshold = DefaultValueThreshold * 62.5

	DefaultMaxDuration = 3 * time.Second
)

// Config parameterises a spring.
type Config struct {
	Stiffness         float64
	DampingRatio      float64
	FPS               int
	ValueThreshold    float64
	VelocityThreshold float64
	// MaxDuration bounds a session; the spring is forced onto its target once
	// this much simulated time has elapsed.
	MaxDuration time.Duration
}

// DefaultConfig returns a critically damped spring of medium stiffness.
func DefaultConfig() Config {
	return Config{
		Stiffness:         StiffnessMedium,
		DampingRatio:      DampingCritical,
		FPS:               DefaultFPS,
		ValueThreshold:    DefaultValueThreshold,
		VelocityThreshold: DefaultVelocityThreshold,
		MaxDuration:       DefaultMaxDuration,
	}
}

// Validate checks that the spring can converge.
func (c Config) Validate() error {
	if !(c.Stiffness > 0) || math.IsInf(c.Stiffness, 0) {
		return fmt.Errorf("stiffness must be > 0, got %v", c.Stiffness)
	}
	if !(c.DampingRatio > 0) || math.IsInf(c.DampingRatio, 0) {
		return fmt.Errorf("damping ratio must be > 0, got %v", c.DampingRatio)
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("fps must be between 1 and 1000, got %d", c.FPS)
	}
	if !(c.ValueThreshold > 0) {
		return fmt.Errorf("value threshold must be > 0, got %v", c.ValueThreshold)
	}
	if !(c.VelocityThreshold > 0) {
		return fmt.Errorf("velocity threshold must be > 0, got %v", c.VelocityThreshold)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("max duration must be > 0, got %s", c.MaxDuration)
	}
	return nil
}

// FrameInterval is the wall-clock time between two ticks.
func (c Config) FrameInterval() time.Duration {
	fps := c.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

func (c Config) maxFrames() int {
	n := int(c.MaxDuration.Seconds() * float64(c.FPS))
	if n < 1 {
		n = 1
	}
	return n
}

// Simulation is one run of the spring from a start value to a final position.
// It is not safe for concurrent use.
type Simulation struct {
	spring  harmonica.Spring
	cfg     Config
	pos     float64
	vel     float64
	target  float64
	frames  int
	settled bool
}

// NewSimulation prepares a spring at rest on start, pulled toward final.
// Invalid configs fall back to DefaultConfig.
func NewSimulation(cfg Config, start, final float64) *Simulation {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &Simulation{
		spring: harmonica.NewSpring(harmonica.FPS(cfg.FPS), math.Sqrt(cfg.Stiffness), cfg.DampingRatio),
		cfg:    cfg,
		pos:    start,
		target: final,
	}
}

// Step advances the spring by one frame. Once both the distance to the target
// and the velocity fall under their thresholds the value lands exactly on the
// target and settled is true. Calling Step after settling keeps returning the
// target.
func (s *Simulation) Step() (value float64, settled bool) {
	if s.settled {
		return s.target, true
	}

	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	s.frames++

	atRest := math.Abs(s.pos-s.target) < s.cfg.ValueThreshold &&
		math.Abs(s.vel) < s.cfg.VelocityThreshold
	if atRest || s.frames >= s.cfg.maxFrames() || math.IsNaN(s.pos) {
		s.pos = s.target
		s.vel = 0
		s.settled = true
	}
	return s.pos, s.settled
}

// Settled reports whether the simulation has reached its target.
func (s *Simulation) Settled() bool { return s.settled }

// Samples returns the finite sequence of values produced by a spring moving
// from start to final. The final element is always final. The sequence is
// lazy and single-use: once consumed, ranging over it again yields nothing.
func Samples(cfg Config, start, final float64) iter.Seq[float64] {
	sim := NewSimulation(cfg, start, final)
	return func(yield func(float64) bool) {
		for !sim.Settled() {
			v, _ := sim.Step()
			if !yield(v) {
				return
			}
		}
	}
}
