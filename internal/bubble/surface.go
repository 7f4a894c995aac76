// Package bubble moves a floating bubble by drag gestures and springs it to the
// nearest horizontal screen edge.
//
// Everything in this package runs on the host's single UI thread. Hosts feed
// pointer events through Bubble.Down/Move/Up and call Bubble.Tick once per
// animation frame while Bubble.Animating reports true.
package bubble

import (
	"errors"
	"log/slog"

	"github.com/1broseidon/floatbubble/internal/geom"
)

// ErrDetached is returned by surfaces that are no longer on screen.
var ErrDetached = errors.New("bubble surface is detached")

// Surface is the rendered bubble. MoveTo applies new window-manager
// coordinates and requests a redraw; it may fail when the surface is not
// attached, in which case the caller simply skips that frame.
type Surface interface {
	Position() geom.Position
	Size() geom.Size
	MoveTo(pos geom.Position) error
}

// Listener receives user-facing gesture callbacks. Coordinates are in
// window-manager space.
type Listener interface {
	OnDown(x, y int)
	OnMove(x, y int)
	OnUp(x, y int)
	OnClick()
}

// NopListener ignores every callback.
type NopListener struct{}

func (NopListener) OnDown(x, y int) {}
func (NopListener) OnMove(x, y int) {}
func (NopListener) OnUp(x, y int)   {}
func (NopListener) OnClick()        {}

// ListenerFuncs adapts optional functions to Listener.
type ListenerFuncs struct {
	Down  func(x, y int)
	Move  func(x, y int)
	Up    func(x, y int)
	Click func()
}

func (l ListenerFuncs) OnDown(x, y int) {
	if l.Down != nil {
		l.Down(x, y)
	}
}

func (l ListenerFuncs) OnMove(x, y int) {
	if l.Move != nil {
		l.Move(x, y)
	}
}

func (l ListenerFuncs) OnUp(x, y int) {
	if l.Up != nil {
		l.Up(x, y)
	}
}

func (l ListenerFuncs) OnClick() {
	if l.Click != nil {
		l.Click()
	}
}

// State is the per-bubble data shared by the drag and snap controllers.
type State struct {
	// Size is set once the bubble has been laid out; zero before that.
	Size    geom.Size
	Metrics geom.MetricsSource
}

// ScreenMetrics returns the current metrics, or zero metrics when no source is set.
func (s *State) ScreenMetrics() geom.ScreenMetrics {
	if s == nil || s.Metrics == nil {
		return geom.ScreenMetrics{}
	}
	return s.Metrics.Metrics()
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
