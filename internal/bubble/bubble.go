package bubble

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/1broseidon/floatbubble/internal/spring"
)

// Options configures a Bubble.
type Options struct {
	// StartingPoint is the top-left corner of the bubble in screen space.
	StartingPoint geom.ScreenPoint
	// Size overrides the surface's reported size when known.
	Size geom.Size
	// Spring configures the edge snap. The zero value uses spring.DefaultConfig.
	Spring spring.Config
	// TouchSlop is the tap tolerance in pixels. Negative uses DefaultTouchSlop.
	TouchSlop int
	// SnapOnRelease snaps to the nearest edge when a drag ends.
	SnapOnRelease bool
	// OnSnapFinished runs after every snap started by a release.
	OnSnapFinished func()
	Listener       Listener
	Logger         *slog.Logger
}

// Status is a snapshot of a bubble.
type Status struct {
	Position  geom.Position      `json:"position"`
	TopLeft   geom.ScreenPoint   `json:"top_left"`
	Size      geom.Size          `json:"size"`
	Metrics   geom.ScreenMetrics `json:"metrics"`
	Snap      string             `json:"snap"`
	Direction string             `json:"direction,omitempty"`
	Gesture   string             `json:"gesture"`
}

// Bubble wires the drag and snap controllers to one surface.
type Bubble struct {
	state   *State
	surface Surface
	logger  *slog.Logger

	drag    *DragController
	snap    *EdgeSnapController
	gesture *GestureTracker

	snapOnRelease  bool
	onSnapFinished func()
}

// New places the surface at opts.StartingPoint and returns a bubble ready for
// pointer events.
func New(surface Surface, metrics geom.MetricsSource, opts Options) (*Bubble, error) {
	if surface == nil {
		return nil, errors.New("bubble: surface is nil")
	}

	size := opts.Size
	if !size.Known() {
		size = surface.Size()
	}
	springCfg := opts.Spring
	if springCfg == (spring.Config{}) {
		springCfg = spring.DefaultConfig()
	}
	if err := springCfg.Validate(); err != nil {
		return nil, fmt.Errorf("bubble: invalid spring: %w", err)
	}

	logger := discardLogger(opts.Logger)
	state := &State{Size: size, Metrics: metrics}

	drag := NewDragController(state, surface, opts.Listener, logger)
	b := &Bubble{
		state:          state,
		surface:        surface,
		logger:         logger,
		drag:           drag,
		snap:           NewEdgeSnapController(state, surface, springCfg, logger),
		gesture:        NewGestureTracker(drag, opts.Listener, opts.TouchSlop),
		snapOnRelease:  opts.SnapOnRelease,
		onSnapFinished: opts.OnSnapFinished,
	}

	b.gesture.onDragStart = b.interruptSnap

	start := geom.ToWindow(opts.StartingPoint, state.ScreenMetrics(), size)
	if err := surface.MoveTo(start); err != nil {
		logger.Debug("initial placement skipped", "position", start, "error", err)
	}
	return b, nil
}

// Relayout re-reads the surface size, e.g. after the icon was rescaled.
func (b *Bubble) Relayout() {
	if size := b.surface.Size(); size.Known() {
		b.state.Size = size
	}
}

// SetSpring changes the spring used by later snaps.
func (b *Bubble) SetSpring(cfg spring.Config) {
	b.snap.SetSpring(cfg)
}

// SetSnapOnRelease toggles snapping at the end of a drag.
func (b *Bubble) SetSnapOnRelease(v bool) {
	b.snapOnRelease = v
}

// SetTouchSlop changes the tap tolerance for later gestures.
func (b *Bubble) SetTouchSlop(slop int) {
	b.gesture.SetSlop(slop)
}

// CancelGesture abandons a press or drag without snapping, e.g. when the
// bubble is hidden mid-drag.
func (b *Bubble) CancelGesture() {
	b.gesture.Reset()
}

// CancelSnap stops a running snap without calling its completion callback.
func (b *Bubble) CancelSnap() bool {
	return b.snap.Cancel()
}

// Down handles a pointer press. A snap in flight keeps running until the
// press turns into a drag, so a tap never leaves the bubble off its edge.
func (b *Bubble) Down(screenX, screenY float64) error {
	return b.gesture.Down(screenX, screenY)
}

// interruptSnap stops a running snap so the drag starts from where the
// bubble currently is. The snap's completion callback is not called.
func (b *Bubble) interruptSnap() {
	if b.snap.Cancel() {
		b.logger.Debug("snap interrupted by drag")
	}
}

// Move handles pointer motion.
func (b *Bubble) Move(screenX, screenY float64) error {
	_, err := b.gesture.Move(screenX, screenY)
	return err
}

// Up handles a pointer release and starts the edge snap when configured.
func (b *Bubble) Up() error {
	dragged, err := b.gesture.Up()
	if err != nil {
		return err
	}
	if dragged && b.snapOnRelease {
		b.snap.AnimateToEdge(b.onSnapFinished)
	}
	return nil
}

// SnapToEdge starts an edge snap. It reports false when one is already running.
func (b *Bubble) SnapToEdge(onFinished func()) bool {
	return b.snap.AnimateToEdge(onFinished)
}

// MoveTo places the bubble's top-left corner at p, keeping it inside the
// vertical safe area. Any snap in flight is cancelled.
func (b *Bubble) MoveTo(p geom.ScreenPoint) error {
	b.snap.Cancel()
	metrics := b.state.ScreenMetrics()
	pos := geom.ToWindow(p, metrics, b.state.Size)
	pos.Y = geom.ClampVertical(pos.Y, metrics, b.state.Size)
	if err := b.surface.MoveTo(pos); err != nil {
		return fmt.Errorf("move bubble to %v: %w", pos, err)
	}
	return nil
}

// Tick advances a running snap by one frame.
func (b *Bubble) Tick() bool {
	return b.snap.Tick()
}

// Animating reports whether Tick needs to be called.
func (b *Bubble) Animating() bool {
	return b.snap.State() == SnapSnapping
}

// Gesture returns the current gesture phase.
func (b *Bubble) Gesture() GesturePhase {
	return b.gesture.Phase()
}

// Status returns a snapshot for diagnostics.
func (b *Bubble) Status() Status {
	metrics := b.state.ScreenMetrics()
	pos := b.surface.Position()
	st := Status{
		Position: pos,
		TopLeft:  geom.ToScreen(pos, metrics, b.state.Size),
		Size:     b.state.Size,
		Metrics:  metrics,
		Snap:     b.snap.State().String(),
		Gesture:  b.gesture.Phase().String(),
	}
	if session, ok := b.snap.Session(); ok {
		st.Direction = session.Direction.String()
	}
	return st
}
