package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/config"
	"github.com/1broseidon/floatbubble/internal/geom"
)

func newSizedPlayground(t *testing.T) *Playground {
	t.Helper()
	p := NewPlayground(DefaultPlaygroundOptions())
	p.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if p.bubble == nil {
		t.Fatalf("bubble not created: %v", p.lastErr)
	}
	return p
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func runFrames(t *testing.T, p *Playground) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		if !p.bubble.Animating() {
			return
		}
		p.Update(frameMsg{})
	}
	t.Fatalf("snap did not settle")
}

func TestPlaygroundPlacesBubbleBelowHeader(t *testing.T) {
	p := newSizedPlayground(t)

	if want := (geom.Position{X: -37, Y: -9}); p.surface.pos != want {
		t.Fatalf("expected %v, got %v", want, p.surface.pos)
	}
	if tl := p.topLeft(); tl != (geom.ScreenPoint{X: 0, Y: 2}) {
		t.Fatalf("expected top-left (0,2), got %v", tl)
	}
}

func TestPlaygroundDragReleaseSnaps(t *testing.T) {
	p := newSizedPlayground(t)

	p.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 1, 2))
	p.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 61, 10))
	if want := (geom.Position{X: 23, Y: -1}); p.surface.pos != want {
		t.Fatalf("expected drag to %v, got %v", want, p.surface.pos)
	}

	_, cmd := p.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, 61, 10))
	if cmd == nil || !p.bubble.Animating() {
		t.Fatalf("expected release to start a snap with a frame tick")
	}
	runFrames(t, p)

	if want := (geom.Position{X: 37, Y: -1}); p.surface.pos != want {
		t.Fatalf("expected snap to %v, got %v", want, p.surface.pos)
	}
	if p.snaps != 1 || p.taps != 0 {
		t.Fatalf("expected one snap and no taps, got snaps=%d taps=%d", p.snaps, p.taps)
	}
}

func TestPlaygroundDragStaysInsideBars(t *testing.T) {
	p := newSizedPlayground(t)

	p.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 1, 2))
	p.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 1, 40))
	if tl := p.topLeft(); tl.Y != 21 {
		t.Fatalf("expected bubble to stop above the help line at row 21, got %d", tl.Y)
	}
	p.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 1, -30))
	if tl := p.topLeft(); tl.Y != 1 {
		t.Fatalf("expected bubble to stop below the header at row 1, got %d", tl.Y)
	}
}

func TestPlaygroundTapCountsClick(t *testing.T) {
	p := newSizedPlayground(t)
	start := p.surface.pos

	p.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 2, 3))
	p.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, 2, 3))

	if p.taps != 1 || p.surface.pos != start || p.bubble.Animating() {
		t.Fatalf("expected a tap without movement, taps=%d pos=%v", p.taps, p.surface.pos)
	}
}

func TestPlaygroundIgnoresPressOutsideBubble(t *testing.T) {
	p := newSizedPlayground(t)
	moves := p.surface.moves

	p.Update(mouse(tea.MouseActionPress, tea.MouseButtonLeft, 50, 10))
	p.Update(mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 60, 12))
	p.Update(mouse(tea.MouseActionRelease, tea.MouseButtonNone, 60, 12))

	if p.bubble.Gesture() != bubble.GestureIdle || p.surface.moves != moves || p.taps != 0 {
		t.Fatalf("press outside the bubble should be ignored")
	}
}

func TestPlaygroundSnapKey(t *testing.T) {
	p := newSizedPlayground(t)
	p.bubble.MoveTo(geom.ScreenPoint{X: 20, Y: 5})

	_, cmd := p.Update(keyPress('s'))
	if cmd == nil || !p.bubble.Animating() {
		t.Fatalf("expected s to start a snap")
	}
	// A second request while snapping does not schedule another frame loop.
	if _, cmd := p.Update(keyPress('s')); cmd != nil {
		t.Fatalf("expected no extra tick while already snapping")
	}
	runFrames(t, p)

	if p.surface.pos.X != -37 {
		t.Fatalf("expected left edge -37, got %d", p.surface.pos.X)
	}
}

func TestPlaygroundResetAndResize(t *testing.T) {
	p := newSizedPlayground(t)
	p.bubble.MoveTo(geom.ScreenPoint{X: 30, Y: 8})

	p.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if tl := p.topLeft(); tl != (geom.ScreenPoint{X: 30, Y: 8}) {
		t.Fatalf("expected top-left kept across resize, got %v", tl)
	}

	p.Update(keyPress('r'))
	if tl := p.topLeft(); tl != (geom.ScreenPoint{X: 0, Y: 2}) {
		t.Fatalf("expected reset to (0,2), got %v", tl)
	}
}

func TestPlaygroundQuit(t *testing.T) {
	p := newSizedPlayground(t)

	_, cmd := p.Update(keyPress('q'))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestPlaygroundView(t *testing.T) {
	p := NewPlayground(DefaultPlaygroundOptions())
	if p.View() != "" {
		t.Fatalf("expected empty view before the first size message")
	}

	p.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := p.View()
	if got := strings.Count(view, "\n") + 1; got != 24 {
		t.Fatalf("expected 24 rows, got %d", got)
	}
	if !strings.Contains(view, "snap:idle") || !strings.Contains(view, "snap to edge") {
		t.Fatalf("expected status and help in view:\n%s", view)
	}
}

func TestFormValuesApply(t *testing.T) {
	base := config.DefaultConfig()
	v := valuesFromConfig(base)
	v.StartX = " 12 "
	v.Width = "48"
	v.Color = "#ff8800"
	v.Monitor = ""
	v.SnapOnRelease = false

	cfg, err := v.apply(base)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.StartingPoint.X != 12 || cfg.Bubble.Width != 48 || cfg.Bubble.Color != "#ff8800" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Monitor != config.ActiveMonitor || cfg.SnapOnRelease {
		t.Fatalf("expected active monitor and snap_on_release off, got %q %v", cfg.Monitor, cfg.SnapOnRelease)
	}
	if base.Bubble.Width != 64 {
		t.Fatalf("base config was modified")
	}
}

func TestFormValuesApplyRejectsBadInput(t *testing.T) {
	base := config.DefaultConfig()

	v := valuesFromConfig(base)
	v.Height = "tall"
	if _, err := v.apply(base); err == nil || !strings.Contains(err.Error(), "bubble.height") {
		t.Fatalf("expected bubble.height error, got %v", err)
	}

	v = valuesFromConfig(base)
	v.Color = "blue"
	if _, err := v.apply(base); err == nil {
		t.Fatalf("expected color validation error")
	}

	if err := validatePositiveInt("0"); err == nil {
		t.Fatalf("expected 0 to be rejected")
	}
}
