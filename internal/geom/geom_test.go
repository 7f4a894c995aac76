package geom

import "testing"

func TestClampVerticalPinsAboveStatusBar(t *testing.T) {
	m := ScreenMetrics{WidthPx: 1080, HeightPx: 2000, SafeTopPx: 60, SafeBottomPx: 100}
	size := Size{WidthPx: 80, HeightPx: 80}

	top, bottom := SafeVerticalRange(m, size)
	if top != -900 {
		t.Fatalf("expected safe top -900, got %d", top)
	}
	// 1000 - 100 - 40
	if bottom != 860 {
		t.Fatalf("expected safe bottom 860, got %d", bottom)
	}

	if got := ClampVertical(-1200, m, size); got != -900 {
		t.Fatalf("expected y=-1200 to clamp to -900, got %d", got)
	}
	if got := ClampVertical(5000, m, size); got != 860 {
		t.Fatalf("expected y=5000 to clamp to 860, got %d", got)
	}
	if got := ClampVertical(12, m, size); got != 12 {
		t.Fatalf("expected in-range y to be unchanged, got %d", got)
	}
}

func TestClampVerticalKeepsBoundsInclusive(t *testing.T) {
	m := ScreenMetrics{WidthPx: 800, HeightPx: 600, SafeTopPx: 24, SafeBottomPx: 48}
	size := Size{WidthPx: 40, HeightPx: 40}
	top, bottom := SafeVerticalRange(m, size)

	if got := ClampVertical(top, m, size); got != top {
		t.Fatalf("top bound should be allowed, got %d want %d", got, top)
	}
	if got := ClampVertical(bottom, m, size); got != bottom {
		t.Fatalf("bottom bound should be allowed, got %d want %d", got, bottom)
	}
}

func TestToWindowRoundTrip(t *testing.T) {
	metrics := []ScreenMetrics{
		{WidthPx: 1080, HeightPx: 2000},
		{WidthPx: 1081, HeightPx: 1999, SafeTopPx: 30},
		{WidthPx: 3840, HeightPx: 2160, SafeTopPx: 32, SafeBottomPx: 48},
	}
	sizes := []Size{{WidthPx: 100, HeightPx: 100}, {WidthPx: 57, HeightPx: 33}, {}}
	points := []ScreenPoint{{X: 0, Y: 0}, {X: 17, Y: 900}, {X: 1079, Y: 1}}

	for _, m := range metrics {
		for _, size := range sizes {
			for _, p := range points {
				back := ToScreen(ToWindow(p, m, size), m, size)
				dx, dy := back.X-p.X, back.Y-p.Y
				if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
					t.Fatalf("round trip of %+v via %v size %+v returned %+v", p, m, size, back)
				}
			}
		}
	}
}

func TestToWindowCentersOrigin(t *testing.T) {
	m := ScreenMetrics{WidthPx: 1080, HeightPx: 2000}
	size := Size{WidthPx: 100, HeightPx: 100}

	got := ToWindow(ScreenPoint{X: 490, Y: 950}, m, size)
	if got != (Position{}) {
		t.Fatalf("expected centered bubble at origin, got %v", got)
	}
	if left := IconLeft(Position{X: -490}, m, size); left != 0 {
		t.Fatalf("expected bubble flush with left edge, got left=%d", left)
	}
}

func TestMetricsValid(t *testing.T) {
	if !(ScreenMetrics{WidthPx: 10, HeightPx: 10, SafeTopPx: 4, SafeBottomPx: 5}).Valid() {
		t.Fatalf("expected metrics to be valid")
	}
	if (ScreenMetrics{WidthPx: 10, HeightPx: 10, SafeTopPx: 5, SafeBottomPx: 5}).Valid() {
		t.Fatalf("expected safe area covering the whole height to be invalid")
	}
	if (ScreenMetrics{WidthPx: -1, HeightPx: 10}).Valid() {
		t.Fatalf("expected negative width to be invalid")
	}
}

func TestZeroMetricsAreTolerated(t *testing.T) {
	var m ScreenMetrics
	var size Size
	if m.HalfWidth() != 0 || size.HalfWidth() != 0 {
		t.Fatalf("expected zero halves for unknown metrics")
	}
	if got := ClampVertical(42, m, size); got != 0 {
		t.Fatalf("expected degenerate clamp to 0, got %d", got)
	}
}
