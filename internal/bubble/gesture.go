package bubble

import (
	"errors"
	"math"
)

// DefaultTouchSlop is the distance in pixels a press may travel and still count as a tap.
const DefaultTouchSlop = 8

// ErrOutOfOrder is returned when a pointer event does not fit the current gesture.
var ErrOutOfOrder = errors.New("pointer event out of order")

// GesturePhase is the phase of the single tracked pointer.
type GesturePhase int

const (
	// GestureIdle means no pointer is down.
	GestureIdle GesturePhase = iota
	// GesturePressed means the pointer is down but has not left the touch slop.
	GesturePressed
	// GestureDragging means the pointer is moving the bubble.
	GestureDragging
)

// String returns the string representation of the phase
func (p GesturePhase) String() string {
	switch p {
	case GestureIdle:
		return "idle"
	case GesturePressed:
		return "pressed"
	case GestureDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// GestureTracker separates taps from drags. A press that never leaves the
// touch slop reports OnClick on release and never reaches the drag controller.
// Once the slop is exceeded the drag controller sees the original press point
// followed by the moves and the release.
//
// Transitions:
//
//	Idle     --down--> Pressed
//	Pressed  --move beyond slop--> Dragging
//	Pressed  --up--> Idle (click)
//	Dragging --up--> Idle
type GestureTracker struct {
	phase    GesturePhase
	slop     float64
	down     TouchPoint
	drag     *DragController
	listener Listener

	// onDragStart runs when a press crosses the slop, before the drag
	// controller sees the press point.
	onDragStart func()
}

// NewGestureTracker creates an idle tracker. A negative slop uses DefaultTouchSlop.
func NewGestureTracker(drag *DragController, listener Listener, slop int) *GestureTracker {
	if listener == nil {
		listener = NopListener{}
	}
	if slop < 0 {
		slop = DefaultTouchSlop
	}
	return &GestureTracker{
		drag:     drag,
		listener: listener,
		slop:     float64(slop),
	}
}

// SetSlop changes the tap tolerance. A negative slop uses DefaultTouchSlop.
func (g *GestureTracker) SetSlop(slop int) {
	if slop < 0 {
		slop = DefaultTouchSlop
	}
	g.slop = float64(slop)
}

// Phase returns the current phase.
func (g *GestureTracker) Phase() GesturePhase { return g.phase }

// Down begins a gesture. A down while another gesture is active means the
// release was lost: the old gesture is abandoned, a new one begins and
// ErrOutOfOrder is returned.
func (g *GestureTracker) Down(screenX, screenY float64) error {
	var err error
	if g.phase != GestureIdle {
		err = ErrOutOfOrder
	}
	g.phase = GesturePressed
	g.down = TouchPoint{X: screenX, Y: screenY}
	return err
}

// Move follows the pointer. It reports whether the bubble was moved.
func (g *GestureTracker) Move(screenX, screenY float64) (bool, error) {
	switch g.phase {
	case GestureIdle:
		return false, ErrOutOfOrder
	case GesturePressed:
		if math.Hypot(screenX-g.down.X, screenY-g.down.Y) <= g.slop {
			return false, nil
		}
		g.phase = GestureDragging
		if g.onDragStart != nil {
			g.onDragStart()
		}
		g.drag.OnDown(g.down.X, g.down.Y)
	}
	g.drag.OnMove(screenX, screenY)
	return true, nil
}

// Up ends the gesture. It reports whether the gesture was a drag (as opposed
// to a tap).
func (g *GestureTracker) Up() (dragged bool, err error) {
	phase := g.phase
	g.phase = GestureIdle

	switch phase {
	case GesturePressed:
		g.listener.OnClick()
		return false, nil
	case GestureDragging:
		g.drag.OnUp()
		return true, nil
	default:
		return false, ErrOutOfOrder
	}
}

// Reset abandons the current gesture without callbacks.
func (g *GestureTracker) Reset() {
	g.phase = GestureIdle
}
