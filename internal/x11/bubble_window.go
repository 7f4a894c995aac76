package x11

import (
	"fmt"
	"math"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// PointerKind identifies what happened to the pointer over the bubble.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	default:
		return "unknown"
	}
}

// PointerEvent is a primary-button event in root window coordinates.
type PointerEvent struct {
	Kind  PointerKind
	RootX int
	RootY int
}

// BubbleWindowOptions configures the bubble window.
type BubbleWindowOptions struct {
	Size  geom.Size
	Color uint32
	// Opacity in [0,1]; honoured by compositing window managers only.
	Opacity float64
}

// WM_CLASS of the bubble window.
const (
	WindowInstance = "floatbubble"
	WindowClass    = "Floatbubble"
)

const bubbleEventMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskButton1Motion

// BubbleWindow is an override-redirect window that renders the bubble. It
// implements bubble.Surface: positions are in window-manager space relative to
// the monitor set with SetFrame.
type BubbleWindow struct {
	xu *xgbutil.XUtil
	id xproto.Window

	size    geom.Size
	color   uint32
	originX int
	originY int
	metrics geom.ScreenMetrics
	pos     geom.Position

	mapped    bool
	destroyed bool
}

var _ bubble.Surface = (*BubbleWindow)(nil)

// NewBubbleWindow creates the window unmapped at the root origin.
func NewBubbleWindow(conn *Connection, opts BubbleWindowOptions) (*BubbleWindow, error) {
	if !fitsWindow(opts.Size) {
		return nil, fmt.Errorf("bubble window size %dx%d is invalid", opts.Size.WidthPx, opts.Size.HeightPx)
	}

	xu := conn.XUtil
	screen := xu.Screen()

	wid, err := xproto.NewWindowId(xu.Conn())
	if err != nil {
		return nil, err
	}

	// Value list order follows the bit positions of the mask (low to high):
	// CwBackPixel, CwOverrideRedirect, CwEventMask.
	err = xproto.CreateWindowChecked(
		xu.Conn(),
		screen.RootDepth,
		wid,
		conn.Root,
		0, 0,
		uint16(opts.Size.WidthPx), uint16(opts.Size.HeightPx),
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{opts.Color, 1, bubbleEventMask},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("create bubble window: %w", err)
	}

	w := &BubbleWindow{
		xu:    xu,
		id:    wid,
		size:  opts.Size,
		color: opts.Color,
	}
	// Compositor rules (shadows, opacity) match on these.
	_ = icccm.WmClassSet(xu, wid, &icccm.WmClass{Instance: WindowInstance, Class: WindowClass})
	_ = icccm.WmNameSet(xu, wid, WindowInstance)
	_ = ewmh.WmNameSet(xu, wid, WindowInstance)

	if opts.Opacity > 0 && opts.Opacity < 1 {
		// Without a compositor the property is ignored and the bubble stays opaque.
		_ = w.setOpacity(opts.Opacity)
	}
	return w, nil
}

// ID returns the X window id.
func (w *BubbleWindow) ID() xproto.Window { return w.id }

// SetFrame sets the monitor the bubble lives on. originX/originY are the
// monitor's top-left corner in root coordinates.
func (w *BubbleWindow) SetFrame(originX, originY int, m geom.ScreenMetrics) {
	w.originX = originX
	w.originY = originY
	w.metrics = m
}

func (w *BubbleWindow) Position() geom.Position { return w.pos }

func (w *BubbleWindow) Size() geom.Size { return w.size }

// MoveTo places the bubble and keeps it above other windows.
func (w *BubbleWindow) MoveTo(pos geom.Position) error {
	if w.destroyed {
		return bubble.ErrDetached
	}

	p := geom.ToScreen(pos, w.metrics, w.size)
	x := w.originX + p.X
	y := w.originY + p.Y
	err := xproto.ConfigureWindowChecked(
		w.xu.Conn(),
		w.id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowStackMode,
		[]uint32{uint32(x), uint32(y), xproto.StackModeAbove},
	).Check()
	if err != nil {
		return fmt.Errorf("configure bubble window: %w", err)
	}
	w.pos = pos
	return nil
}

// Resize changes the window size. The caller relayouts the bubble afterwards.
func (w *BubbleWindow) Resize(size geom.Size) {
	if w.destroyed || !fitsWindow(size) {
		return
	}
	w.size = size
	xproto.ConfigureWindow(
		w.xu.Conn(),
		w.id,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(size.WidthPx), uint32(size.HeightPx)},
	)
}

// SetColor repaints the window background.
func (w *BubbleWindow) SetColor(color uint32) {
	if w.destroyed {
		return
	}
	w.color = color
	xproto.ChangeWindowAttributes(w.xu.Conn(), w.id, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(w.xu.Conn(), false, w.id, 0, 0, 0, 0)
}

// Show maps the window.
func (w *BubbleWindow) Show() {
	if w.destroyed || w.mapped {
		return
	}
	xproto.MapWindow(w.xu.Conn(), w.id)
	w.mapped = true
}

// Hide unmaps the window without destroying it.
func (w *BubbleWindow) Hide() {
	if w.destroyed || !w.mapped {
		return
	}
	xproto.UnmapWindow(w.xu.Conn(), w.id)
	w.mapped = false
}

// Visible reports whether the window is mapped.
func (w *BubbleWindow) Visible() bool { return w.mapped }

// OnPointer delivers primary-button events on the window to fn. Events are
// dispatched from the X event loop.
func (w *BubbleWindow) OnPointer(fn func(PointerEvent)) {
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if ev.Detail != xproto.ButtonIndex1 {
			return
		}
		fn(PointerEvent{Kind: PointerDown, RootX: int(ev.RootX), RootY: int(ev.RootY)})
	}).Connect(w.xu, w.id)

	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		fn(PointerEvent{Kind: PointerMove, RootX: int(ev.RootX), RootY: int(ev.RootY)})
	}).Connect(w.xu, w.id)

	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		if ev.Detail != xproto.ButtonIndex1 {
			return
		}
		fn(PointerEvent{Kind: PointerUp, RootX: int(ev.RootX), RootY: int(ev.RootY)})
	}).Connect(w.xu, w.id)
}

// Destroy detaches event handlers and destroys the window. Later moves fail
// with bubble.ErrDetached.
func (w *BubbleWindow) Destroy() {
	if w.destroyed {
		return
	}
	xevent.Detach(w.xu, w.id)
	xproto.DestroyWindow(w.xu.Conn(), w.id)
	w.destroyed = true
	w.mapped = false
}

func (w *BubbleWindow) setOpacity(opacity float64) error {
	value := uint(math.Round(opacity * math.MaxUint32))
	return xprop.ChangeProp32(w.xu, w.id, "_NET_WM_WINDOW_OPACITY", "CARDINAL", value)
}

// fitsWindow reports whether size is a valid X window size.
func fitsWindow(size geom.Size) bool {
	return size.Known() && size.WidthPx <= math.MaxUint16 && size.HeightPx <= math.MaxUint16
}
