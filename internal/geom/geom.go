// Package geom holds the coordinate model shared by the bubble core and its hosts.
//
// Two spaces are used:
//   - screen space: origin at the top-left corner of the display, y grows downward.
//   - window-manager space: origin at the center of the display, x grows rightward,
//     y grows downward. Bubble positions are always expressed in this space and
//     refer to the center of the bubble.
package geom

import "fmt"

// ScreenMetrics describes the display the bubble lives on.
type ScreenMetrics struct {
	WidthPx      int `json:"width_px"`
	HeightPx     int `json:"height_px"`
	SafeTopPx    int `json:"safe_top_px"`    // status bar / top dock height
	SafeBottomPx int `json:"safe_bottom_px"` // navigation bar / bottom dock height
}

// Valid reports whether the metrics are usable for clamping.
func (m ScreenMetrics) Valid() bool {
	if m.WidthPx < 0 || m.HeightPx < 0 || m.SafeTopPx < 0 || m.SafeBottomPx < 0 {
		return false
	}
	return m.SafeTopPx+m.SafeBottomPx < m.HeightPx
}

// HalfWidth returns half the screen width, truncated.
func (m ScreenMetrics) HalfWidth() int {
	if m.WidthPx <= 0 {
		return 0
	}
	return m.WidthPx / 2
}

// HalfHeight returns half the screen height, truncated.
func (m ScreenMetrics) HalfHeight() int {
	if m.HeightPx <= 0 {
		return 0
	}
	return m.HeightPx / 2
}

func (m ScreenMetrics) String() string {
	return fmt.Sprintf("%dx%d (safe top=%d bottom=%d)", m.WidthPx, m.HeightPx, m.SafeTopPx, m.SafeBottomPx)
}

// MetricsSource provides the current screen metrics. Implementations must be
// side-effect free; callers query it again on every operation instead of caching.
type MetricsSource interface {
	Metrics() ScreenMetrics
}

// StaticMetrics is a MetricsSource that always returns the same value.
type StaticMetrics ScreenMetrics

// Metrics implements MetricsSource.
func (s StaticMetrics) Metrics() ScreenMetrics { return ScreenMetrics(s) }

// MetricsFunc adapts a function to MetricsSource.
type MetricsFunc func() ScreenMetrics

// Metrics implements MetricsSource.
func (f MetricsFunc) Metrics() ScreenMetrics { return f() }

// Size is the rendered size of the bubble. Both values are zero until the
// bubble has been laid out.
type Size struct {
	WidthPx  int `json:"width_px" yaml:"width"`
	HeightPx int `json:"height_px" yaml:"height"`
}

// Known reports whether the size has been initialized.
func (s Size) Known() bool {
	return s.WidthPx > 0 && s.HeightPx > 0
}

// HalfWidth returns half the bubble width, or 0 when the width is unknown.
func (s Size) HalfWidth() int {
	if s.WidthPx <= 0 {
		return 0
	}
	return s.WidthPx / 2
}

// HalfHeight returns half the bubble height, or 0 when the height is unknown.
func (s Size) HalfHeight() int {
	if s.HeightPx <= 0 {
		return 0
	}
	return s.HeightPx / 2
}

// Position is a bubble center in window-manager space.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ScreenPoint is the top-left corner of the bubble in screen space.
type ScreenPoint struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// ToWindow converts a top-left screen point into a window-manager position.
func ToWindow(p ScreenPoint, m ScreenMetrics, size Size) Position {
	return Position{
		X: p.X - m.HalfWidth() + size.HalfWidth(),
		Y: p.Y - m.HalfHeight() + size.HalfHeight(),
	}
}

// ToScreen is the inverse of ToWindow.
func ToScreen(pos Position, m ScreenMetrics, size Size) ScreenPoint {
	return ScreenPoint{
		X: pos.X + m.HalfWidth() - size.HalfWidth(),
		Y: pos.Y + m.HalfHeight() - size.HalfHeight(),
	}
}

// IconLeft returns the bubble's left edge in screen space (0..WidthPx).
func IconLeft(pos Position, m ScreenMetrics, size Size) int {
	return pos.X + m.HalfWidth() - size.HalfWidth()
}

// SafeVerticalRange returns the smallest and largest y a bubble center may take
// without overlapping the status bar or the navigation bar.
func SafeVerticalRange(m ScreenMetrics, size Size) (top, bottom int) {
	halfH := m.HalfHeight()
	iconHalfH := size.HalfHeight()
	top = -halfH + m.SafeTopPx + iconHalfH
	bottom = halfH - m.SafeBottomPx - iconHalfH
	return top, bottom
}

// ClampVertical pins y into the safe vertical range. The top bound is checked
// first.
func ClampVertical(y int, m ScreenMetrics, size Size) int {
	top, bottom := SafeVerticalRange(m, size)
	if y < top {
		return top
	} else if y > bottom {
		return bottom
	}
	return y
}
