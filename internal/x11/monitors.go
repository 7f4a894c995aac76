package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Struts are the pixels docks and panels reserve on each edge of a monitor.
type Struts struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// IsZero reports whether nothing is reserved.
func (s Struts) IsZero() bool {
	return s == Struts{}
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// GetActiveMonitor returns the monitor under the pointer, falling back to the
// monitor holding the focused window and then to the first monitor.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	if mon := findMonitorForPointer(c, monitors); mon != nil {
		return mon, nil
	}
	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		if mon := findMonitorForWindow(c, monitors, activeWin); mon != nil {
			return mon, nil
		}
	}
	return &monitors[0], nil
}

// MonitorStruts returns the space docks reserve on the monitor. When no dock
// publishes struts the EWMH work area is used instead.
func (c *Connection) MonitorStruts(monitor Monitor) Struts {
	if struts, ok := dockStruts(c, monitor); ok {
		return struts
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return Struts{}
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(currentDesktop) < len(workArea) {
		desktopIndex = int(currentDesktop)
	}
	wa := workArea[desktopIndex]
	return workAreaStruts(monitor, int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))
}

// workAreaStruts derives struts from the intersection of the monitor and the
// work area. A work area that misses the monitor reserves nothing.
func workAreaStruts(monitor Monitor, waX, waY, waW, waH int) Struts {
	isect := intersectionSize(
		monitor.X, monitor.Y, monitor.X+monitor.Width, monitor.Y+monitor.Height,
		waX, waY, waX+waW, waY+waH,
	)
	if isect.w == 0 || isect.h == 0 {
		return Struts{}
	}

	x1 := max(monitor.X, waX)
	y1 := max(monitor.Y, waY)
	return Struts{
		Left:   x1 - monitor.X,
		Top:    y1 - monitor.Y,
		Right:  monitor.X + monitor.Width - (x1 + isect.w),
		Bottom: monitor.Y + monitor.Height - (y1 + isect.h),
	}
}

func dockStruts(c *Connection, monitor Monitor) (Struts, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Struts{}, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return Struts{}, false
	}

	var struts Struts
	for _, windowID := range clients {
		if !isDock(c, windowID) {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, fullStrut(s, rootWidth, rootHeight), &struts)
		}
	}

	return struts, !struts.IsZero()
}

func isDock(c *Connection, windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootHeight - 1),
		RightEndY:  uint(rootHeight - 1),
		TopEndX:    uint(rootWidth - 1),
		BottomEndX: uint(rootWidth - 1),
	}
}

func updateStrutsForMonitor(monitor Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *Struts) {
	monX1 := monitor.X
	monY1 := monitor.Y
	monX2 := monitor.X + monitor.Width
	monY2 := monitor.Y + monitor.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2,
			int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.Top = max(acc.Top, isect.h)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2,
			int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.Bottom = max(acc.Bottom, isect.h)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2,
			0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.Left = max(acc.Left, isect.w)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2,
			rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.Right = max(acc.Right, isect.w)
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}

func findMonitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return nil
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return nil
	}

	return monitorAt(monitors,
		int(translate.DstX)+int(geom.Width)/2,
		int(translate.DstY)+int(geom.Height)/2,
	)
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		mon := &monitors[i]
		if x >= mon.X && x < mon.X+mon.Width && y >= mon.Y && y < mon.Y+mon.Height {
			return mon
		}
	}
	return nil
}
