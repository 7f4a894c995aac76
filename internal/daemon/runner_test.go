package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/config"
	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/1broseidon/floatbubble/internal/ipc"
	"github.com/1broseidon/floatbubble/internal/platform"
	"github.com/1broseidon/floatbubble/internal/x11"
)

type fakeWindow struct {
	pos     geom.Position
	size    geom.Size
	color   uint32
	visible bool
	originX int
	originY int
	metrics geom.ScreenMetrics
}

func (w *fakeWindow) Position() geom.Position { return w.pos }
func (w *fakeWindow) Size() geom.Size         { return w.size }

func (w *fakeWindow) MoveTo(pos geom.Position) error {
	w.pos = pos
	return nil
}

func (w *fakeWindow) SetFrame(originX, originY int, m geom.ScreenMetrics) {
	w.originX, w.originY, w.metrics = originX, originY, m
}

func (w *fakeWindow) Resize(size geom.Size) { w.size = size }
func (w *fakeWindow) SetColor(c uint32)     { w.color = c }
func (w *fakeWindow) Show()                 { w.visible = true }
func (w *fakeWindow) Hide()                 { w.visible = false }
func (w *fakeWindow) Visible() bool         { return w.visible }

type fakeBackend struct {
	displays []platform.Display
}

func (b *fakeBackend) Displays() ([]platform.Display, error) { return b.displays, nil }

func (b *fakeBackend) ActiveDisplay() (platform.Display, error) {
	if len(b.displays) == 0 {
		return platform.Display{}, errors.New("no displays")
	}
	return b.displays[0], nil
}

func (b *fakeBackend) DisplayByName(name string) (platform.Display, error) {
	if name == "" || name == platform.ActiveDisplayName {
		return b.ActiveDisplay()
	}
	if d, ok := platform.FindDisplay(b.displays, name); ok {
		return d, nil
	}
	return platform.Display{}, errors.New("not found")
}

// idleEvents never delivers X events.
type idleEvents struct {
	quit chan struct{}
}

func (e *idleEvents) MainPing() (before, after, quit chan struct{}) {
	if e.quit == nil {
		e.quit = make(chan struct{})
	}
	return make(chan struct{}), make(chan struct{}), e.quit
}

var portrait = platform.Display{
	ID:     1,
	Name:   "DP-1",
	Bounds: platform.Rect{X: 1920, Y: 0, Width: 1080, Height: 2000},
	Insets: platform.Insets{Top: 60, Bottom: 100},
}

var landscape = platform.Display{
	ID:     0,
	Name:   "eDP-1",
	Bounds: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bubble.Width = 80
	cfg.Bubble.Height = 80
	cfg.Monitor = "DP-1"
	return cfg
}

func newTestRunner(t *testing.T, cfg *config.Config, load ConfigLoader) (*Runner, *fakeWindow) {
	t.Helper()
	win := &fakeWindow{size: cfg.BubbleSize()}
	r, err := NewRunner(Options{
		Config:  cfg,
		Backend: &fakeBackend{displays: []platform.Display{landscape, portrait}},
		Window:  win,
		Load:    load,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r, win
}

func startLoop(t *testing.T, r *Runner) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, &idleEvents{}) }()
	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("Run did not return after cancel")
		}
	}
}

func waitSnapIdle(t *testing.T, r *Runner) ipc.StatusData {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st, err := r.Status()
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if st.Bubble.Snap == "idle" {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("snap did not finish")
	return ipc.StatusData{}
}

func TestNewRunnerPlacesBubbleOnConfiguredDisplay(t *testing.T) {
	_, win := newTestRunner(t, testConfig(), nil)

	if !win.visible {
		t.Fatalf("expected bubble to be shown")
	}
	if win.originX != 1920 || win.metrics.SafeTopPx != 60 {
		t.Fatalf("unexpected frame origin=%d metrics=%v", win.originX, win.metrics)
	}
	// (0,200) top-left on 1080x2000 with an 80px bubble.
	if want := (geom.Position{X: -500, Y: -760}); win.pos != want {
		t.Fatalf("expected %v, got %v", want, win.pos)
	}
}

func TestNewRunnerFailsForUnknownDisplay(t *testing.T) {
	cfg := testConfig()
	cfg.Monitor = "HDMI-9"
	_, err := NewRunner(Options{
		Config:  cfg,
		Backend: &fakeBackend{displays: []platform.Display{landscape}},
		Window:  &fakeWindow{size: cfg.BubbleSize()},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err == nil {
		t.Fatalf("expected error for unknown display")
	}
}

func TestPointerDragReleaseSnapsToNearestEdge(t *testing.T) {
	r, win := newTestRunner(t, testConfig(), nil)

	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerDown, RootX: 1960, RootY: 240})
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerMove, RootX: 2620, RootY: 600})
	if want := (geom.Position{X: 160, Y: -400}); win.pos != want {
		t.Fatalf("expected drag to %v, got %v", want, win.pos)
	}
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerUp, RootX: 2620, RootY: 600})

	if !r.bubble.Animating() {
		t.Fatalf("expected snap after release")
	}
	for i := 0; i < 10000 && r.bubble.Tick(); i++ {
	}
	if want := (geom.Position{X: 500, Y: -400}); win.pos != want {
		t.Fatalf("expected snap to %v, got %v", want, win.pos)
	}
}

func TestPointerTapDoesNotMoveBubble(t *testing.T) {
	r, win := newTestRunner(t, testConfig(), nil)
	start := win.pos

	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerDown, RootX: 1960, RootY: 240})
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerMove, RootX: 1963, RootY: 242})
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerUp, RootX: 1963, RootY: 242})

	if win.pos != start || r.bubble.Animating() {
		t.Fatalf("tap moved the bubble: %v animating=%v", win.pos, r.bubble.Animating())
	}
}

func TestStrayMotionIsIgnored(t *testing.T) {
	r, win := newTestRunner(t, testConfig(), nil)
	start := win.pos

	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerMove, RootX: 2500, RootY: 900})
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerUp, RootX: 2500, RootY: 900})

	if win.pos != start {
		t.Fatalf("expected no movement, got %v", win.pos)
	}
}

func TestMoveThenSnapThroughHandler(t *testing.T) {
	r, _ := newTestRunner(t, testConfig(), nil)
	stop := startLoop(t, r)
	defer stop()

	if err := r.Move(ipc.MovePayload{X: 700, Y: 300}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	snap, err := r.Snap()
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if !snap.Started || snap.Direction != "right" {
		t.Fatalf("unexpected snap result %+v", snap)
	}

	st := waitSnapIdle(t, r)
	if want := (geom.Position{X: 500, Y: -660}); st.Bubble.Position != want {
		t.Fatalf("expected %v, got %v", want, st.Bubble.Position)
	}
	if st.Display != "DP-1" || !st.Visible {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestMoveClampsIntoSafeArea(t *testing.T) {
	r, _ := newTestRunner(t, testConfig(), nil)
	stop := startLoop(t, r)
	defer stop()

	if err := r.Move(ipc.MovePayload{X: 0, Y: 0}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Bubble.Position.Y != -900 {
		t.Fatalf("expected y clamped to -900, got %d", st.Bubble.Position.Y)
	}
}

func TestMetricsReportSafeRange(t *testing.T) {
	r, _ := newTestRunner(t, testConfig(), nil)
	stop := startLoop(t, r)
	defer stop()

	m, err := r.Metrics()
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if m.Display != "DP-1" || m.OriginX != 1920 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if m.SafeTopY != -900 || m.SafeBottomY != 860 {
		t.Fatalf("unexpected safe range %d..%d", m.SafeTopY, m.SafeBottomY)
	}
}

func TestToggleHidesAndSnapIsRefusedWhileHidden(t *testing.T) {
	r, _ := newTestRunner(t, testConfig(), nil)
	stop := startLoop(t, r)
	defer stop()

	tg, err := r.Toggle()
	if err != nil || tg.Visible {
		t.Fatalf("expected hidden, got %+v err=%v", tg, err)
	}
	snap, err := r.Snap()
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if snap.Started {
		t.Fatalf("expected snap to be refused while hidden")
	}
	tg, err = r.Toggle()
	if err != nil || !tg.Visible {
		t.Fatalf("expected visible, got %+v err=%v", tg, err)
	}
}

func TestReloadAppliesConfig(t *testing.T) {
	next := testConfig()
	next.Bubble.Width = 100
	next.Bubble.Height = 100
	next.Bubble.Color = "#ff0000"
	next.SnapOnRelease = false
	next.LogLevel = "debug"

	var level slog.LevelVar
	var reloaded *config.Config
	cfg := testConfig()
	win := &fakeWindow{size: cfg.BubbleSize()}
	r, err := NewRunner(Options{
		Config:  cfg,
		Backend: &fakeBackend{displays: []platform.Display{landscape, portrait}},
		Window:  win,
		Load:    func() (*config.Config, error) { return next, nil },
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Level:   &level,
		OnReload: func(c *config.Config) {
			reloaded = c
		},
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	stop := startLoop(t, r)

	if err := r.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	st, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	stop()

	if win.size != (geom.Size{WidthPx: 100, HeightPx: 100}) || st.Bubble.Size != win.size {
		t.Fatalf("expected resize to 100x100, window=%v status=%v", win.size, st.Bubble.Size)
	}
	if win.color != 0xff0000 {
		t.Fatalf("expected color 0xff0000, got %#x", win.color)
	}
	if reloaded != next {
		t.Fatalf("expected OnReload with the new config")
	}
	if level.Level() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", level.Level())
	}
	// Top-left kept at (0,200) after resize.
	if want := (geom.Position{X: -490, Y: -750}); win.pos != want {
		t.Fatalf("expected %v after resize, got %v", want, win.pos)
	}

	// Drags no longer snap.
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerDown, RootX: 1960, RootY: 240})
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerMove, RootX: 2300, RootY: 240})
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerUp, RootX: 2300, RootY: 240})
	if r.bubble.Animating() || r.bubble.Gesture() != bubble.GestureIdle {
		t.Fatalf("expected no snap after release")
	}
}

func TestReloadToAnotherMonitorDuringSnapAndDrag(t *testing.T) {
	r, win := newTestRunner(t, testConfig(), nil)

	if snap := r.SnapNow(); !snap.Started {
		t.Fatalf("expected snap to start")
	}
	r.HandlePointer(x11.PointerEvent{Kind: x11.PointerDown, RootX: 1960, RootY: 240})

	next := testConfig()
	next.Monitor = "eDP-1"
	if err := r.applyConfig(next); err != nil {
		t.Fatalf("applyConfig: %v", err)
	}

	if r.display.Name != "eDP-1" || win.originX != 0 || win.metrics != landscape.Metrics() {
		t.Fatalf("expected the bubble on eDP-1, got display %q origin %d", r.display.Name, win.originX)
	}
	if r.bubble.Animating() || r.bubble.Gesture() != bubble.GestureIdle {
		t.Fatalf("expected snap and gesture cancelled by the monitor change")
	}
	// Starting point (0,200) on 1920x1080 with an 80px bubble.
	if want := (geom.Position{X: -920, Y: -300}); win.pos != want {
		t.Fatalf("expected %v on the new display, got %v", want, win.pos)
	}
}

func TestPanelsCoveringTheDisplayAreIgnored(t *testing.T) {
	crowded := platform.Display{
		ID:     2,
		Name:   "DP-2",
		Bounds: platform.Rect{X: 3000, Y: 0, Width: 1080, Height: 2000},
		Insets: platform.Insets{Top: 1200, Bottom: 900},
	}
	empty := platform.Display{ID: 3, Name: "VIRTUAL-1"}

	cfg := testConfig()
	cfg.Monitor = "DP-2"
	backend := &fakeBackend{displays: []platform.Display{crowded, empty}}
	r, err := NewRunner(Options{
		Config:  cfg,
		Backend: backend,
		Window:  &fakeWindow{size: cfg.BubbleSize()},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if m := r.metrics(); m.SafeTopPx != 0 || m.SafeBottomPx != 0 || !m.Valid() {
		t.Fatalf("expected insets dropped, got %+v", m)
	}

	cfg = testConfig()
	cfg.Monitor = "VIRTUAL-1"
	_, err = NewRunner(Options{
		Config:  cfg,
		Backend: backend,
		Window:  &fakeWindow{size: cfg.BubbleSize()},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err == nil {
		t.Fatalf("expected an error for a display with no area")
	}
}

func TestReloadKeepsConfigOnLoadError(t *testing.T) {
	r, win := newTestRunner(t, testConfig(), func() (*config.Config, error) {
		return nil, errors.New("bad yaml")
	})
	stop := startLoop(t, r)
	defer stop()

	if err := r.Reload(); err == nil {
		t.Fatalf("expected reload error")
	}
	if _, err := r.Status(); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if win.size.WidthPx != 80 {
		t.Fatalf("expected size unchanged, got %v", win.size)
	}
}

func TestHandlerCallsFailAfterStop(t *testing.T) {
	r, _ := newTestRunner(t, testConfig(), nil)
	stop := startLoop(t, r)
	stop()

	if _, err := r.Status(); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestRunReturnsWhenEventLoopQuits(t *testing.T) {
	r, _ := newTestRunner(t, testConfig(), nil)
	events := &idleEvents{quit: make(chan struct{})}
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), events) }()

	close(events.quit)
	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected error when the X loop quits")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return")
	}
}
