package platform

import (
	"fmt"

	"github.com/1broseidon/floatbubble/internal/geom"
)

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Insets are the edges of a display reserved by panels and docks.
type Insets struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Display describes a physical display and the area its panels reserve.
type Display struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Bounds Rect   `json:"bounds"`
	Insets Insets `json:"insets"`
}

// Metrics returns the screen metrics the bubble core works with. Only the
// vertical insets matter; horizontal panels are left to the edge snap.
func (d Display) Metrics() geom.ScreenMetrics {
	return geom.ScreenMetrics{
		WidthPx:      d.Bounds.Width,
		HeightPx:     d.Bounds.Height,
		SafeTopPx:    d.Insets.Top,
		SafeBottomPx: d.Insets.Bottom,
	}
}

// FromRoot converts a root-window point to display-local screen space.
func (d Display) FromRoot(rootX, rootY int) geom.ScreenPoint {
	return geom.ScreenPoint{X: rootX - d.Bounds.X, Y: rootY - d.Bounds.Y}
}

func (d Display) String() string {
	return fmt.Sprintf("%s (%dx%d+%d+%d)", d.Name, d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y)
}

// FindDisplay returns the display with the given name. An empty name or
// "active" is not a name and never matches.
func FindDisplay(displays []Display, name string) (Display, bool) {
	if name == "" || name == ActiveDisplayName {
		return Display{}, false
	}
	for _, d := range displays {
		if d.Name == name {
			return d, true
		}
	}
	return Display{}, false
}

// ActiveDisplayName selects whichever display currently has focus.
const ActiveDisplayName = "active"

// Backend abstracts display queries across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	DisplayByName(name string) (Display, error)
}
