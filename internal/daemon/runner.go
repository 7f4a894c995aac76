package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/config"
	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/1broseidon/floatbubble/internal/ipc"
	"github.com/1broseidon/floatbubble/internal/platform"
	"github.com/1broseidon/floatbubble/internal/x11"
)

// ErrStopped is returned by handler calls made after the loop exited.
var ErrStopped = errors.New("daemon loop stopped")

// Window is the on-screen bubble. *x11.BubbleWindow implements it.
type Window interface {
	bubble.Surface
	SetFrame(originX, originY int, m geom.ScreenMetrics)
	Resize(size geom.Size)
	SetColor(color uint32)
	Show()
	Hide()
	Visible() bool
}

// EventSource drives the X event loop. *x11.Connection implements it.
type EventSource interface {
	MainPing() (before, after, quit chan struct{})
}

// ConfigLoader returns a freshly loaded configuration.
type ConfigLoader func() (*config.Config, error)

// Options wires a Runner.
type Options struct {
	Config  *config.Config
	Backend platform.Backend
	Window  Window
	// Load is used by Reload. Nil means config.Load.
	Load   ConfigLoader
	Logger *slog.Logger
	// Level, when set, follows log_level on reload.
	Level *slog.LevelVar
	// OnReload runs on the loop after a reloaded config was applied.
	OnReload func(cfg *config.Config)
}

// Runner owns the bubble. Bubble and window state is touched only while the
// Run loop holds it: IPC calls are marshalled onto the loop, and X callbacks
// run while the loop is parked between the before and after pings.
type Runner struct {
	cfg     *config.Config
	backend platform.Backend
	window  Window
	bubble  *bubble.Bubble
	display platform.Display
	load    ConfigLoader
	logger  *slog.Logger
	level   *slog.LevelVar

	onReload func(cfg *config.Config)

	commands  chan func()
	stopped   chan struct{}
	closeOnce sync.Once
}

var _ ipc.Handler = (*Runner)(nil)

// NewRunner resolves the configured display, places the bubble at the
// starting point and shows it.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Window == nil {
		return nil, errors.New("daemon: window is nil")
	}
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is nil")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	load := opts.Load
	if load == nil {
		load = config.Load
	}

	r := &Runner{
		cfg:      cfg,
		backend:  opts.Backend,
		window:   opts.Window,
		load:     load,
		logger:   logger,
		level:    opts.Level,
		onReload: opts.OnReload,
		commands: make(chan func()),
		stopped:  make(chan struct{}),
	}
	if err := r.refreshDisplay(); err != nil {
		return nil, err
	}

	b, err := bubble.New(r.window, geom.MetricsFunc(r.metrics), bubble.Options{
		StartingPoint: cfg.StartingScreenPoint(),
		Size:          cfg.BubbleSize(),
		Spring:        cfg.SpringParams(),
		TouchSlop:     cfg.TouchSlop,
		SnapOnRelease: cfg.SnapOnRelease,
		OnSnapFinished: func() {
			r.logger.Debug("snap finished", "position", r.window.Position())
		},
		Listener: bubble.ListenerFuncs{
			Click: func() { r.logger.Info("bubble clicked") },
		},
		Logger: logger.With("component", "bubble"),
	})
	if err != nil {
		return nil, err
	}
	r.bubble = b
	r.window.Show()

	logger.Info("bubble placed", "display", r.display.Name, "position", r.window.Position())
	return r, nil
}

// Run serves X events, animation frames and handler calls until ctx is
// cancelled or the X loop quits. It must be called once.
func (r *Runner) Run(ctx context.Context, events EventSource) error {
	defer r.closeOnce.Do(func() { close(r.stopped) })

	before, after, quit := events.MainPing()

	interval := r.cfg.SpringParams().FrameInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("daemon loop started", "frame_interval", interval)

	for {
		// Frames are only consumed while a snap is running.
		var frames <-chan time.Time
		if r.bubble.Animating() {
			if iv := r.cfg.SpringParams().FrameInterval(); iv != interval {
				interval = iv
				ticker.Reset(interval)
			}
			frames = ticker.C
		}

		select {
		case <-ctx.Done():
			r.logger.Info("daemon loop stopped")
			return nil
		case <-quit:
			r.logger.Info("X event loop quit")
			return errors.New("X event loop quit")
		case <-before:
			<-after
		case <-frames:
			r.step()
		case fn := <-r.commands:
			r.safely(fn)
		}
	}
}

func (r *Runner) step() {
	r.safely(func() { r.bubble.Tick() })
}

func (r *Runner) safely(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("daemon loop panic recovered", "error", err)
		}
	}()
	fn()
}

// do runs fn on the loop and waits for it. It must not be called from X
// callbacks, which already hold the loop.
func (r *Runner) do(fn func()) error {
	done := make(chan struct{})
	select {
	case r.commands <- func() {
		defer close(done)
		fn()
	}:
	case <-r.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-r.stopped:
		return ErrStopped
	}
}

// HandlePointer feeds a pointer event on the bubble window into the gesture
// tracker. It must be called while holding the loop.
func (r *Runner) HandlePointer(ev x11.PointerEvent) {
	p := r.display.FromRoot(ev.RootX, ev.RootY)
	x, y := float64(p.X), float64(p.Y)

	var err error
	switch ev.Kind {
	case x11.PointerDown:
		err = r.bubble.Down(x, y)
	case x11.PointerMove:
		err = r.bubble.Move(x, y)
	case x11.PointerUp:
		err = r.bubble.Up()
	}
	if err != nil {
		r.logger.Debug("pointer event dropped", "kind", ev.Kind, "error", err)
	}
}

// SnapNow starts an edge snap. It must be called while holding the loop.
func (r *Runner) SnapNow() ipc.SnapData {
	if !r.window.Visible() {
		return ipc.SnapData{}
	}
	if err := r.refreshIfIdle(); err != nil {
		r.logger.Warn("display refresh failed", "error", err)
	}
	started := r.bubble.SnapToEdge(func() {
		r.logger.Debug("snap finished", "position", r.window.Position())
	})
	data := ipc.SnapData{Started: started}
	if started {
		data.Direction = r.bubble.Status().Direction
	}
	return data
}

// ToggleNow shows or hides the bubble. It must be called while holding the loop.
func (r *Runner) ToggleNow() ipc.ToggleData {
	if r.window.Visible() {
		r.bubble.CancelGesture()
		r.window.Hide()
	} else {
		r.window.Show()
	}
	visible := r.window.Visible()
	r.logger.Info("bubble toggled", "visible", visible)
	return ipc.ToggleData{Visible: visible}
}

func (r *Runner) moveNow(p geom.ScreenPoint) error {
	if err := r.refreshIfIdle(); err != nil {
		r.logger.Warn("display refresh failed", "error", err)
	}
	return r.bubble.MoveTo(p)
}

func (r *Runner) applyConfig(cfg *config.Config) error {
	if size := cfg.BubbleSize(); size != r.window.Size() {
		topLeft := geom.ToScreen(r.window.Position(), r.display.Metrics(), r.window.Size())
		r.window.Resize(size)
		r.bubble.Relayout()
		if err := r.bubble.MoveTo(topLeft); err != nil {
			return err
		}
	}
	r.window.SetColor(cfg.BubbleColor())
	r.bubble.SetSpring(cfg.SpringParams())
	r.bubble.SetSnapOnRelease(cfg.SnapOnRelease)
	r.bubble.SetTouchSlop(cfg.TouchSlop)
	if r.level != nil {
		r.level.Set(cfg.SlogLevel())
	}

	monitorChanged := cfg.Monitor != r.cfg.Monitor
	r.cfg = cfg
	if monitorChanged {
		// The old display's snap and drag make no sense on the new one.
		r.bubble.CancelSnap()
		r.bubble.CancelGesture()
		if err := r.refreshDisplay(); err != nil {
			return err
		}
		if err := r.bubble.MoveTo(cfg.StartingScreenPoint()); err != nil {
			return err
		}
	}
	if r.onReload != nil {
		r.onReload(cfg)
	}
	return nil
}

// refreshIfIdle re-resolves the display unless a gesture or snap is using the
// current one.
func (r *Runner) refreshIfIdle() error {
	if r.bubble.Animating() || r.bubble.Gesture() != bubble.GestureIdle {
		return nil
	}
	return r.refreshDisplay()
}

func (r *Runner) refreshDisplay() error {
	d, err := r.backend.DisplayByName(r.cfg.Monitor)
	if err != nil {
		return fmt.Errorf("resolve display %q: %w", r.cfg.Monitor, err)
	}
	if !d.Metrics().Valid() {
		r.logger.Warn("panels cover the whole display, ignoring them", "display", d.String(), "insets", d.Insets)
		d.Insets = platform.Insets{}
		if !d.Metrics().Valid() {
			return fmt.Errorf("display %s has no usable area", d)
		}
	}
	if d != r.display {
		r.logger.Debug("display changed", "display", d.String())
	}
	r.display = d
	r.window.SetFrame(d.Bounds.X, d.Bounds.Y, d.Metrics())
	return nil
}

func (r *Runner) metrics() geom.ScreenMetrics {
	return r.display.Metrics()
}

// Status implements ipc.Handler.
func (r *Runner) Status() (ipc.StatusData, error) {
	var data ipc.StatusData
	err := r.do(func() {
		data = ipc.StatusData{
			Bubble:  r.bubble.Status(),
			Visible: r.window.Visible(),
			Display: r.display.Name,
		}
	})
	return data, err
}

// Metrics implements ipc.Handler.
func (r *Runner) Metrics() (ipc.MetricsData, error) {
	var data ipc.MetricsData
	err := r.do(func() {
		m := r.display.Metrics()
		top, bottom := geom.SafeVerticalRange(m, r.window.Size())
		data = ipc.MetricsData{
			Display:     r.display.Name,
			OriginX:     r.display.Bounds.X,
			OriginY:     r.display.Bounds.Y,
			Metrics:     m,
			SafeTopY:    top,
			SafeBottomY: bottom,
		}
	})
	return data, err
}

// Snap implements ipc.Handler.
func (r *Runner) Snap() (ipc.SnapData, error) {
	var data ipc.SnapData
	err := r.do(func() { data = r.SnapNow() })
	return data, err
}

// Move implements ipc.Handler.
func (r *Runner) Move(p ipc.MovePayload) error {
	var moveErr error
	if err := r.do(func() {
		moveErr = r.moveNow(geom.ScreenPoint{X: p.X, Y: p.Y})
	}); err != nil {
		return err
	}
	return moveErr
}

// Toggle implements ipc.Handler.
func (r *Runner) Toggle() (ipc.ToggleData, error) {
	var data ipc.ToggleData
	err := r.do(func() { data = r.ToggleNow() })
	return data, err
}

// Reload implements ipc.Handler. The file is read off the loop; only the
// result is applied on it.
func (r *Runner) Reload() error {
	cfg, err := r.load()
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	var applyErr error
	if err := r.do(func() { applyErr = r.applyConfig(cfg) }); err != nil {
		return err
	}
	if applyErr != nil {
		return applyErr
	}
	r.logger.Info("config reloaded")
	return nil
}

// Config returns the configuration last applied. It must be called while
// holding the loop.
func (r *Runner) Config() *config.Config { return r.cfg }
