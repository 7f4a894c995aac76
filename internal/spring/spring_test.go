package spring

import (
	"math"
	"testing"
	"time"
)

func collect(cfg Config, start, final float64) []float64 {
	var out []float64
	for v := range Samples(cfg, start, final) {
		out = append(out, v)
	}
	return out
}

func TestSamplesConvergeMonotonicallyWhenCriticallyDamped(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct{ start, final float64 }{
		{start: 40, final: 490},
		{start: 700, final: 490},
		{start: -120, final: 0},
		{start: 0, final: 3000},
	}

	for _, tc := range cases {
		values := collect(cfg, tc.start, tc.final)
		if len(values) == 0 {
			t.Fatalf("%v->%v: expected samples", tc.start, tc.final)
		}
		if last := values[len(values)-1]; last != tc.final {
			t.Fatalf("%v->%v: expected last sample to land on target, got %v", tc.start, tc.final, last)
		}

		prevDist := math.Abs(tc.start - tc.final)
		for i, v := range values {
			dist := math.Abs(v - tc.final)
			if dist > prevDist+1e-9 {
				t.Fatalf("%v->%v: sample %d moved away from target (%v > %v)", tc.start, tc.final, i, dist, prevDist)
			}
			if (tc.final-tc.start)*(tc.final-v) < -1e-9 {
				t.Fatalf("%v->%v: sample %d overshot target: %v", tc.start, tc.final, i, v)
			}
			prevDist = dist
		}
	}
}

func TestSamplesAreFiniteForBouncySprings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DampingRatio = 0.2
	cfg.Stiffness = StiffnessLow
	cfg.MaxDuration = time.Second

	values := collect(cfg, 0, 500)
	if len(values) > cfg.FPS {
		t.Fatalf("expected at most %d frames, got %d", cfg.FPS, len(values))
	}
	if values[len(values)-1] != 500 {
		t.Fatalf("expected forced settle on target, got %v", values[len(values)-1])
	}
}

func TestSamplesAreSingleUse(t *testing.T) {
	seq := Samples(DefaultConfig(), 0, 100)
	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	if first == 0 {
		t.Fatalf("expected first pass to yield samples")
	}
	if second != 0 {
		t.Fatalf("expected consumed sequence to be empty, got %d samples", second)
	}
}

func TestSimulationAlreadyAtTargetSettlesImmediately(t *testing.T) {
	sim := NewSimulation(DefaultConfig(), 42, 42)
	v, settled := sim.Step()
	if !settled || v != 42 {
		t.Fatalf("expected immediate settle on 42, got v=%v settled=%v", v, settled)
	}
	if v, settled := sim.Step(); !settled || v != 42 {
		t.Fatalf("expected settled simulation to keep returning target")
	}
}

func TestInvalidConfigFallsBackToDefault(t *testing.T) {
	sim := NewSimulation(Config{}, 0, 10)
	if sim.cfg != DefaultConfig() {
		t.Fatalf("expected default config, got %+v", sim.cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Stiffness = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected zero stiffness to be rejected")
	}

	bad = DefaultConfig()
	bad.DampingRatio = math.NaN()
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected NaN damping to be rejected")
	}

	bad = DefaultConfig()
	bad.FPS = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected zero fps to be rejected")
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 50
	if got := cfg.FrameInterval(); got != 20*time.Millisecond {
		t.Fatalf("expected 20ms frame interval, got %s", got)
	}
}
