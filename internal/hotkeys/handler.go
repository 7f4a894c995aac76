package hotkeys

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/1broseidon/floatbubble/internal/config"
	"github.com/1broseidon/floatbubble/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Actions are the bubble operations hotkeys can trigger. They are invoked
// from X event dispatch.
type Actions struct {
	Snap   func()
	Toggle func()
}

// Binding ties a key sequence such as "Mod4-Mod1-b" to a callback.
type Binding struct {
	Name     string
	Keys     string
	Callback func()
}

// Bindings returns the hotkeys configured in cfg. Empty sequences are skipped.
func Bindings(cfg *config.Config, actions Actions) []Binding {
	var out []Binding
	if cfg.SnapHotkey != "" && actions.Snap != nil {
		out = append(out, Binding{Name: "snap_hotkey", Keys: cfg.SnapHotkey, Callback: actions.Snap})
	}
	if cfg.ToggleHotkey != "" && actions.Toggle != nil {
		out = append(out, Binding{Name: "toggle_hotkey", Keys: cfg.ToggleHotkey, Callback: actions.Toggle})
	}
	return out
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler on conn. keybind must already be
// initialized on the connection.
func NewHandler(conn *x11.Connection) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:   conn.XUtil,
		root: conn.Root,
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Apply replaces all registered hotkeys with bindings. A binding that cannot
// be grabbed is logged and skipped; the number registered is returned.
func (h *Handler) Apply(bindings []Binding) int {
	keybind.Detach(h.xu, h.root)

	registered := 0
	for _, b := range bindings {
		if err := h.RegisterFunc(b.Keys, b.Callback); err != nil {
			log.Printf("Warning: Failed to register %s %q: %v", b.Name, b.Keys, err)
			continue
		}
		log.Printf("Hotkey registered: %s = %s", b.Name, b.Keys)
		registered++
	}
	return registered
}

// Validate checks that every binding parses against the current keymap.
func (h *Handler) Validate(bindings []Binding) error {
	for _, b := range bindings {
		if _, _, err := keybind.ParseString(h.xu, b.Keys); err != nil {
			return fmt.Errorf("%s %q: %w", b.Name, b.Keys, err)
		}
	}
	return nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	xevent.IgnoreMods = ignoreMasks(
		uint16(xproto.ModMaskLock),
		modMaskForKeysym(xu, "Num_Lock"),
		modMaskForKeysym(xu, "Scroll_Lock"),
	)
}

// ignoreMasks returns every combination of the lock modifiers, including the
// empty one, so hotkeys fire regardless of CapsLock, NumLock or ScrollLock.
func ignoreMasks(caps, numLock, scrollLock uint16) []uint16 {
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	slices.Sort(ignore)
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
