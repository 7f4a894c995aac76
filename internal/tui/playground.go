package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/geom"
	"github.com/1broseidon/floatbubble/internal/spring"
)

// The header and the help line are the playground's status and navigation bars.
const (
	headerRows = 1
	footerRows = 1
)

// PlaygroundOptions configures the terminal playground. Sizes are in cells.
type PlaygroundOptions struct {
	Size      geom.Size
	Color     string
	Spring    spring.Config
	TouchSlop int
	// SnapOnRelease defaults to true in DefaultPlaygroundOptions.
	SnapOnRelease bool
}

// DefaultPlaygroundOptions returns a 6x2 cell bubble that snaps on release.
func DefaultPlaygroundOptions() PlaygroundOptions {
	return PlaygroundOptions{
		Size:          geom.Size{WidthPx: 6, HeightPx: 2},
		Color:         "#3498db",
		Spring:        spring.DefaultConfig(),
		TouchSlop:     1,
		SnapOnRelease: true,
	}
}

type frameMsg struct{}

type keyMap struct {
	Snap  key.Binding
	Reset key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Snap, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var playgroundKeys = keyMap{
	Snap: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "snap to edge"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var (
	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("250"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// cellSurface is a bubble.Surface on a terminal grid, one cell per pixel.
type cellSurface struct {
	pos   geom.Position
	size  geom.Size
	moves int
}

func (s *cellSurface) Position() geom.Position { return s.pos }
func (s *cellSurface) Size() geom.Size         { return s.size }

func (s *cellSurface) MoveTo(pos geom.Position) error {
	s.pos = pos
	s.moves++
	return nil
}

// Playground is a bubbletea model hosting one bubble driven by the mouse.
type Playground struct {
	opts    PlaygroundOptions
	keys    keyMap
	help    help.Model
	bubble  *bubble.Bubble
	surface *cellSurface
	style   lipgloss.Style

	metrics geom.ScreenMetrics
	ticking bool
	taps    int
	snaps   int
	lastErr error
}

// NewPlayground creates the model. The bubble is placed on the first
// WindowSizeMsg.
func NewPlayground(opts PlaygroundOptions) *Playground {
	if !opts.Size.Known() {
		opts.Size = DefaultPlaygroundOptions().Size
	}
	if opts.Spring == (spring.Config{}) {
		opts.Spring = spring.DefaultConfig()
	}
	return &Playground{
		opts:    opts,
		keys:    playgroundKeys,
		help:    help.New(),
		surface: &cellSurface{size: opts.Size},
		style:   lipgloss.NewStyle().Background(lipgloss.Color(opts.Color)),
	}
}

// RunPlayground runs the playground on the current terminal.
func RunPlayground(opts PlaygroundOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("playground requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(NewPlayground(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (p *Playground) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p *Playground) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Quit):
			return p, tea.Quit
		case key.Matches(msg, p.keys.Snap):
			if p.bubble != nil && p.bubble.SnapToEdge(p.snapFinished) {
				return p, p.startFrames()
			}
		case key.Matches(msg, p.keys.Reset):
			if p.bubble != nil {
				p.lastErr = p.bubble.MoveTo(p.startPoint())
			}
		}
		return p, nil

	case tea.MouseMsg:
		return p, p.handleMouse(msg)

	case frameMsg:
		p.ticking = false
		if p.bubble != nil && p.bubble.Tick() {
			return p, p.startFrames()
		}
		return p, nil
	}
	return p, nil
}

func (p *Playground) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if p.bubble == nil {
		return nil
	}
	x, y := float64(msg.X), float64(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !p.hit(msg.X, msg.Y) {
			return nil
		}
		p.lastErr = p.bubble.Down(x, y)
	case tea.MouseActionMotion:
		if p.bubble.Gesture() == bubble.GestureIdle {
			return nil
		}
		p.lastErr = p.bubble.Move(x, y)
	case tea.MouseActionRelease:
		if p.bubble.Gesture() == bubble.GestureIdle {
			return nil
		}
		p.lastErr = p.bubble.Up()
		if p.bubble.Animating() {
			return p.startFrames()
		}
	}
	return nil
}

// hit reports whether the cell lies on the bubble.
func (p *Playground) hit(x, y int) bool {
	tl := p.topLeft()
	return x >= tl.X && x < tl.X+p.opts.Size.WidthPx && y >= tl.Y && y < tl.Y+p.opts.Size.HeightPx
}

func (p *Playground) startFrames() tea.Cmd {
	if p.ticking {
		return nil
	}
	p.ticking = true
	return tea.Tick(p.opts.Spring.FrameInterval(), func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (p *Playground) snapFinished() {
	p.snaps++
}

func (p *Playground) startPoint() geom.ScreenPoint {
	return geom.ScreenPoint{X: 0, Y: headerRows + 1}
}

func (p *Playground) topLeft() geom.ScreenPoint {
	return geom.ToScreen(p.surface.Position(), p.metrics, p.opts.Size)
}

func (p *Playground) resize(width, height int) {
	p.help.Width = width
	next := geom.ScreenMetrics{
		WidthPx:      width,
		HeightPx:     height,
		SafeTopPx:    headerRows,
		SafeBottomPx: footerRows,
	}

	if p.bubble == nil {
		p.metrics = next
		b, err := bubble.New(p.surface, geom.MetricsFunc(func() geom.ScreenMetrics { return p.metrics }), bubble.Options{
			StartingPoint:  p.startPoint(),
			Size:           p.opts.Size,
			Spring:         p.opts.Spring,
			TouchSlop:      p.opts.TouchSlop,
			SnapOnRelease:  p.opts.SnapOnRelease,
			OnSnapFinished: p.snapFinished,
			Listener: bubble.ListenerFuncs{
				Click: func() { p.taps++ },
			},
		})
		if err != nil {
			p.lastErr = err
			return
		}
		p.bubble = b
		return
	}

	// Keep the top-left corner where it was on the old grid.
	tl := p.topLeft()
	p.metrics = next
	p.lastErr = p.bubble.MoveTo(tl)
}

// View implements tea.Model.
func (p *Playground) View() string {
	w, h := p.metrics.WidthPx, p.metrics.HeightPx
	if p.bubble == nil || w <= 0 || h <= headerRows+footerRows {
		return ""
	}

	rows := make([]string, 0, h)
	rows = append(rows, headerStyle.MaxWidth(w).Render(p.statusLine()))

	tl := p.topLeft()
	left := max(tl.X, 0)
	right := min(tl.X+p.opts.Size.WidthPx, w)
	blank := strings.Repeat(" ", w)
	for row := headerRows; row < h-footerRows; row++ {
		if row < tl.Y || row >= tl.Y+p.opts.Size.HeightPx || left >= right {
			rows = append(rows, blank)
			continue
		}
		rows = append(rows, strings.Repeat(" ", left)+
			p.style.Render(strings.Repeat(" ", right-left))+
			strings.Repeat(" ", w-right))
	}

	rows = append(rows, footerStyle.MaxWidth(w).Render(p.help.View(p.keys)))
	return strings.Join(rows, "\n")
}

func (p *Playground) statusLine() string {
	st := p.bubble.Status()
	line := fmt.Sprintf(" floatbubble  pos %d,%d  snap:%s  gesture:%s  taps:%d  snaps:%d",
		st.Position.X, st.Position.Y, st.Snap, st.Gesture, p.taps, p.snaps)
	if p.lastErr != nil {
		line += "  err:" + p.lastErr.Error()
	}
	return line
}
