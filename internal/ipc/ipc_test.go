package ipc

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/geom"
)

type fakeHandler struct {
	mu       sync.Mutex
	moves    []MovePayload
	reloads  int
	visible  bool
	snapping bool
	failMove error
}

func (h *fakeHandler) Status() (StatusData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return StatusData{
		Bubble:  bubble.Status{Position: geom.Position{X: -490, Y: 12}, Snap: "idle", Gesture: "idle"},
		Visible: h.visible,
		Display: "eDP-1",
	}, nil
}

func (h *fakeHandler) Metrics() (MetricsData, error) {
	return MetricsData{
		Display:     "eDP-1",
		Metrics:     geom.ScreenMetrics{WidthPx: 1920, HeightPx: 1080, SafeTopPx: 32},
		SafeTopY:    -476,
		SafeBottomY: 508,
	}, nil
}

func (h *fakeHandler) Snap() (SnapData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snapping {
		return SnapData{Started: false}, nil
	}
	h.snapping = true
	return SnapData{Started: true, Direction: "right"}, nil
}

func (h *fakeHandler) Move(p MovePayload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failMove != nil {
		return h.failMove
	}
	h.moves = append(h.moves, p)
	return nil
}

func (h *fakeHandler) Toggle() (ToggleData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = !h.visible
	return ToggleData{Visible: h.visible}, nil
}

func (h *fakeHandler) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
	return nil
}

func startServer(t *testing.T, h Handler) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fb.sock")
	srv := NewServerAt(path, h)
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(path)
}

func TestClientServerRoundTrip(t *testing.T) {
	h := &fakeHandler{visible: true}
	c := startServer(t, h)

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || !status.Visible || status.Display != "eDP-1" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Bubble.Position != (geom.Position{X: -490, Y: 12}) {
		t.Fatalf("unexpected bubble position %+v", status.Bubble.Position)
	}

	metrics, err := c.GetMetrics()
	if err != nil {
		t.Fatalf("GetMetrics: %v", err)
	}
	if metrics.Metrics.WidthPx != 1920 || metrics.SafeTopY != -476 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}

	if err := c.Move(10, 20); err != nil {
		t.Fatalf("Move: %v", err)
	}
	h.mu.Lock()
	moves := append([]MovePayload(nil), h.moves...)
	h.mu.Unlock()
	if len(moves) != 1 || moves[0] != (MovePayload{X: 10, Y: 20}) {
		t.Fatalf("unexpected moves %+v", moves)
	}

	toggled, err := c.Toggle()
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if toggled.Visible {
		t.Fatalf("expected bubble hidden after toggle")
	}

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	h.mu.Lock()
	reloads := h.reloads
	h.mu.Unlock()
	if reloads != 1 {
		t.Fatalf("expected one reload, got %d", reloads)
	}
}

func TestSnapReportsRejectedRequest(t *testing.T) {
	c := startServer(t, &fakeHandler{})

	first, err := c.Snap()
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if !first.Started || first.Direction != "right" {
		t.Fatalf("unexpected first snap %+v", first)
	}

	second, err := c.Snap()
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if second.Started {
		t.Fatalf("expected second snap to be rejected")
	}
}

func TestHandlerErrorsBecomeDaemonErrors(t *testing.T) {
	c := startServer(t, &fakeHandler{failMove: errors.New("bubble surface is detached")})

	err := c.Move(1, 2)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "daemon error") || !strings.Contains(err.Error(), "detached") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := NewServerAt(filepath.Join(t.TempDir(), "x.sock"), &fakeHandler{})
	resp := s.handleCommand(&Request{Command: "DANCE"})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "DANCE") {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestMoveRejectsBadPayload(t *testing.T) {
	s := NewServerAt(filepath.Join(t.TempDir(), "x.sock"), &fakeHandler{})
	resp := s.handleCommand(&Request{Command: CommandMove, Payload: []byte(`{"x":"left"}`)})
	if resp.Status != "ERROR" {
		t.Fatalf("expected error response, got %+v", resp)
	}
}

func TestClientWithoutDaemon(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is the daemon running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
