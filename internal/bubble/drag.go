package bubble

import (
	"log/slog"

	"github.com/1broseidon/floatbubble/internal/geom"
)

// TouchPoint is a raw pointer location in screen space.
type TouchPoint struct {
	X float64
	Y float64
}

// TouchState is the per-gesture bookkeeping of a DragController. It is reset
// on every down, updated on every move and only read on up.
type TouchState struct {
	PrevPosition         geom.Position
	TouchStart           TouchPoint
	LastComputedPosition geom.Position
}

// DragController turns pointer deltas into bubble positions. Callers must
// deliver events in down, move*, up order for each gesture.
type DragController struct {
	state    *State
	surface  Surface
	listener Listener
	logger   *slog.Logger
	touch    TouchState
}

// NewDragController creates a controller bound to surface.
func NewDragController(state *State, surface Surface, listener Listener, logger *slog.Logger) *DragController {
	if listener == nil {
		listener = NopListener{}
	}
	return &DragController{
		state:    state,
		surface:  surface,
		listener: listener,
		logger:   discardLogger(logger),
	}
}

// Touch returns a copy of the current touch state.
func (d *DragController) Touch() TouchState {
	return d.touch
}

// OnDown starts a gesture at the given screen point.
func (d *DragController) OnDown(screenX, screenY float64) {
	prev := d.surface.Position()
	d.touch = TouchState{
		PrevPosition:         prev,
		TouchStart:           TouchPoint{X: screenX, Y: screenY},
		LastComputedPosition: prev,
	}
	d.listener.OnDown(prev.X, prev.Y)
}

// OnMove follows the pointer. The vertical component is clamped to the safe
// area; the horizontal one is left free and corrected by the edge snap.
func (d *DragController) OnMove(screenX, screenY float64) {
	deltaX := screenX - d.touch.TouchStart.X
	deltaY := screenY - d.touch.TouchStart.Y

	next := d.touch.PrevPosition.Add(int(deltaX), int(deltaY))
	next.Y = geom.ClampVertical(next.Y, d.state.ScreenMetrics(), d.state.Size)

	d.touch.LastComputedPosition = next
	if err := d.surface.MoveTo(next); err != nil {
		d.logger.Debug("drag frame skipped", "position", next, "error", err)
	}
	d.listener.OnMove(next.X, next.Y)
}

// OnUp ends the gesture.
func (d *DragController) OnUp() {
	last := d.touch.LastComputedPosition
	d.listener.OnUp(last.X, last.Y)
}
