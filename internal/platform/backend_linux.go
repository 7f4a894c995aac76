//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/floatbubble/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Displays returns all active displays with their dock insets.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m, conn.MonitorStruts(m)))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveDisplay returns the display under the pointer.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	active, err := conn.GetActiveMonitor()
	if err != nil {
		return Display{}, err
	}

	return displayFromMonitor(*active, conn.MonitorStruts(*active)), nil
}

// DisplayByName returns the named display. An empty name or "active" returns
// the active display.
func (b *LinuxBackend) DisplayByName(name string) (Display, error) {
	if name == "" || name == ActiveDisplayName {
		return b.ActiveDisplay()
	}

	displays, err := b.Displays()
	if err != nil {
		return Display{}, err
	}
	if d, ok := FindDisplay(displays, name); ok {
		return d, nil
	}
	return Display{}, fmt.Errorf("display %q not found", name)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor, struts x11.Struts) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Insets: Insets{
			Top:    struts.Top,
			Bottom: struts.Bottom,
			Left:   struts.Left,
			Right:  struts.Right,
		},
	}
}
