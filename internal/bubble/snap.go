package bubble

import (
	"log/slog"
	"math"

	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/1broseidon/floatbubble/internal/spring"
)

// SnapState is the state of an EdgeSnapController.
type SnapState int

const (
	// SnapIdle means no snap is in flight.
	SnapIdle SnapState = iota
	// SnapSnapping means a spring is carrying the bubble to an edge.
	SnapSnapping
)

// String returns the string representation of the state
func (s SnapState) String() string {
	switch s {
	case SnapIdle:
		return "idle"
	case SnapSnapping:
		return "snapping"
	default:
		return "unknown"
	}
}

// Direction is the edge a snap heads to.
type Direction int

const (
	DirectionLeft Direction = iota
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "unknown"
	}
}

// SnapSession describes one edge snap. Values are distances from the screen
// center to the bubble center; the sign is applied per Direction.
type SnapSession struct {
	Direction  Direction
	StartValue float64
	EndValue   float64
}

// WindowX maps a spring value to a window-manager x coordinate.
func (s SnapSession) WindowX(value float64) int {
	x := int(math.Round(value))
	if s.Direction == DirectionLeft {
		return -x
	}
	return x
}

// PlanSnap chooses the edge for a bubble at pos. A bubble whose center sits
// exactly on the screen center goes right.
func PlanSnap(pos geom.Position, m geom.ScreenMetrics, size geom.Size) SnapSession {
	halfScreenW := m.HalfWidth()
	halfIconW := size.HalfWidth()
	iconX := geom.IconLeft(pos, m, size)

	if iconX+halfIconW < halfScreenW {
		return SnapSession{
			Direction:  DirectionLeft,
			StartValue: float64(halfScreenW - iconX - halfIconW),
			EndValue:   float64(halfScreenW - halfIconW),
		}
	}
	return SnapSession{
		Direction:  DirectionRight,
		StartValue: float64(iconX - halfScreenW + halfIconW),
		EndValue:   float64(halfScreenW - halfIconW),
	}
}

// EdgeSnapController runs at most one edge snap at a time.
type EdgeSnapController struct {
	state    *State
	surface  Surface
	animator *spring.Animator
	logger   *slog.Logger

	snapState  SnapState
	session    SnapSession
	y          int
	onFinished func()
}

// NewEdgeSnapController creates an idle controller.
func NewEdgeSnapController(state *State, surface Surface, cfg spring.Config, logger *slog.Logger) *EdgeSnapController {
	return &EdgeSnapController{
		state:    state,
		surface:  surface,
		animator: spring.NewAnimator(cfg),
		logger:   discardLogger(logger),
	}
}

// State returns the controller state.
func (c *EdgeSnapController) State() SnapState { return c.snapState }

// Session returns the session in flight, if any.
func (c *EdgeSnapController) Session() (SnapSession, bool) {
	if c.snapState != SnapSnapping {
		return SnapSession{}, false
	}
	return c.session, true
}

// SetSpring changes the spring used by subsequent snaps.
func (c *EdgeSnapController) SetSpring(cfg spring.Config) {
	c.animator.SetConfig(cfg)
}

// AnimateToEdge starts a snap toward the nearest horizontal edge. While a snap
// is already in flight the call is ignored and false is returned. onFinished
// runs once when the spring settles.
func (c *EdgeSnapController) AnimateToEdge(onFinished func()) bool {
	if c.snapState == SnapSnapping {
		c.logger.Debug("snap request ignored, already snapping")
		return false
	}

	pos := c.surface.Position()
	metrics := c.state.ScreenMetrics()
	session := PlanSnap(pos, metrics, c.state.Size)

	c.snapState = SnapSnapping
	c.session = session
	c.y = pos.Y
	c.onFinished = onFinished

	c.logger.Debug("snap started",
		"direction", session.Direction,
		"start", session.StartValue,
		"end", session.EndValue,
		"metrics", metrics,
	)

	c.animator.Start(session.StartValue, session.EndValue, c.applyValue, c.finish)
	return true
}

// Tick advances the snap by one frame and reports whether it is still running.
func (c *EdgeSnapController) Tick() bool {
	if c.snapState != SnapSnapping {
		return false
	}
	c.animator.Tick()
	return c.snapState == SnapSnapping
}

// Cancel stops a snap in flight without calling its onFinished callback. It
// reports whether a snap was cancelled.
func (c *EdgeSnapController) Cancel() bool {
	if c.snapState != SnapSnapping {
		return false
	}
	c.animator.Cancel()
	c.reset()
	c.logger.Debug("snap cancelled")
	return true
}

func (c *EdgeSnapController) applyValue(value float64) {
	next := geom.Position{X: c.session.WindowX(value), Y: c.y}
	if err := c.surface.MoveTo(next); err != nil {
		c.logger.Debug("snap frame skipped", "position", next, "error", err)
	}
}

func (c *EdgeSnapController) finish() {
	onFinished := c.onFinished
	c.reset()
	c.logger.Debug("snap finished")
	if onFinished != nil {
		onFinished()
	}
}

func (c *EdgeSnapController) reset() {
	c.snapState = SnapIdle
	c.session = SnapSession{}
	c.onFinished = nil
}
