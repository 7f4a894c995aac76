package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/1broseidon/floatbubble/internal/config"
	"github.com/1broseidon/floatbubble/internal/daemon"
	"github.com/1broseidon/floatbubble/internal/hotkeys"
	"github.com/1broseidon/floatbubble/internal/ipc"
	"github.com/1broseidon/floatbubble/internal/platform"
	"github.com/1broseidon/floatbubble/internal/tui"
	"github.com/1broseidon/floatbubble/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: floatbubble daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: floatbubble daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "metrics":
		os.Exit(runMetrics(os.Args[2:]))
	case "snap":
		os.Exit(runSnap(os.Args[2:]))
	case "move":
		os.Exit(runMove(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "playground":
		os.Exit(runPlayground(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: floatbubble <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the floatbubble daemon (foreground)")
	fmt.Fprintln(w, "  status              Show bubble and daemon status")
	fmt.Fprintln(w, "  metrics             Show the metrics of the bubble's display")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  snap                Snap the bubble to the nearest edge")
	fmt.Fprintln(w, "  move X Y            Move the bubble's top-left corner")
	fmt.Fprintln(w, "  toggle              Show or hide the bubble")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config init         Create a configuration interactively")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  playground          Drag a bubble around the terminal")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'floatbubble <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set for a command that takes no positional
// arguments. ok is false when the command should exit with code.
func parseNoArgs(name, description string, args []string) (code int, ok bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: floatbubble %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	if code, ok := parseNoArgs("status", "Show bubble and daemon status via IPC.", args); !ok {
		return code
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	b := status.Bubble
	started := time.Now().Add(-time.Duration(status.UptimeSeconds) * time.Second)
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("started:        %s\n", humanize.Time(started))
	fmt.Printf("display:        %s\n", status.Display)
	fmt.Printf("visible:        %v\n", status.Visible)
	fmt.Printf("position:       %d,%d\n", b.Position.X, b.Position.Y)
	fmt.Printf("top_left:       %d,%d\n", b.TopLeft.X, b.TopLeft.Y)
	fmt.Printf("size:           %dx%d\n", b.Size.WidthPx, b.Size.HeightPx)
	fmt.Printf("snap:           %s\n", b.Snap)
	if b.Direction != "" {
		fmt.Printf("snap_edge:      %s\n", b.Direction)
	}
	fmt.Printf("gesture:        %s\n", b.Gesture)
	return 0
}

func runMetrics(args []string) int {
	if code, ok := parseNoArgs("metrics", "Show the metrics of the display the bubble lives on.", args); !ok {
		return code
	}

	m, err := ipc.NewClient().GetMetrics()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("display:        %s\n", m.Display)
	fmt.Printf("origin:         %d,%d\n", m.OriginX, m.OriginY)
	fmt.Printf("size:           %dx%d\n", m.Metrics.WidthPx, m.Metrics.HeightPx)
	fmt.Printf("safe_top:       %d\n", m.Metrics.SafeTopPx)
	fmt.Printf("safe_bottom:    %d\n", m.Metrics.SafeBottomPx)
	fmt.Printf("center_y_range: %d..%d\n", m.SafeTopY, m.SafeBottomY)
	return 0
}

func runSnap(args []string) int {
	if code, ok := parseNoArgs("snap", "Snap the bubble to the nearest horizontal edge.", args); !ok {
		return code
	}

	res, err := ipc.NewClient().Snap()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !res.Started {
		fmt.Println("snap: not started (already snapping or hidden)")
		return 0
	}
	fmt.Printf("snap: %s\n", res.Direction)
	return 0
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: floatbubble move X Y")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Move the bubble's top-left corner to X,Y on its display.")
		fmt.Fprintln(os.Stderr, "Y is clamped to the area between the status and navigation bars.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "move requires X and Y")
		fs.Usage()
		return 2
	}
	x, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid X %q\n", fs.Arg(0))
		return 2
	}
	y, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid Y %q\n", fs.Arg(1))
		return 2
	}

	if err := ipc.NewClient().Move(x, y); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runToggle(args []string) int {
	if code, ok := parseNoArgs("toggle", "Show the bubble when hidden, hide it when shown.", args); !ok {
		return code
	}

	res, err := ipc.NewClient().Toggle()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("visible: %v\n", res.Visible)
	return 0
}

func runReload(args []string) int {
	if code, ok := parseNoArgs("reload", "Ask the running daemon to reload its configuration.", args); !ok {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runPlayground(args []string) int {
	fs := flag.NewFlagSet("playground", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/floatbubble/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: floatbubble playground [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Drag a bubble around the terminal with the mouse. It uses the")
		fmt.Fprintln(os.Stderr, "configured color, spring and snap_on_release, one cell per pixel.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  s         Snap to the nearest edge")
		fmt.Fprintln(os.Stderr, "  r         Reset to the starting point")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C Quit")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	opts := tui.DefaultPlaygroundOptions()
	opts.Color = res.Config.Bubble.Color
	opts.Spring = res.Config.SpringParams()
	opts.SnapOnRelease = res.Config.SnapOnRelease
	if err := tui.RunPlayground(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	log.Printf("Configuration loaded (monitor: %s, bubble: %dx%d)", cfg.Monitor, cfg.Bubble.Width, cfg.Bubble.Height)

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	backend := platform.NewLinuxBackend(conn)

	window, err := x11.NewBubbleWindow(conn, x11.BubbleWindowOptions{
		Size:    cfg.BubbleSize(),
		Color:   cfg.BubbleColor(),
		Opacity: cfg.Bubble.Alpha,
	})
	if err != nil {
		log.Fatalf("Failed to create bubble window: %v", err)
	}
	defer window.Destroy()

	hotkeyHandler := hotkeys.NewHandler(conn)
	var actions hotkeys.Actions

	runner, err := daemon.NewRunner(daemon.Options{
		Config:  cfg,
		Backend: backend,
		Window:  window,
		Logger:  logger,
		Level:   level,
		OnReload: func(cfg *config.Config) {
			hotkeyHandler.Apply(hotkeys.Bindings(cfg, actions))
		},
	})
	if err != nil {
		log.Fatalf("Failed to start bubble: %v", err)
	}

	// Hotkey and pointer callbacks run from X event dispatch, which already
	// holds the loop.
	actions = hotkeys.Actions{
		Snap:   func() { runner.SnapNow() },
		Toggle: func() { runner.ToggleNow() },
	}
	window.OnPointer(runner.HandlePointer)
	hotkeyHandler.Apply(hotkeys.Bindings(cfg, actions))

	ipcServer, err := ipc.NewServer(runner)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	log.Println("floatbubble daemon started successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				go func() {
					if err := runner.Reload(); err != nil {
						log.Printf("Reload failed: %v", err)
					}
				}()
				continue
			}
			log.Printf("Received %s, shutting down", sig)
			cancel()
			return
		}
	}()

	if err := runner.Run(ctx, conn); err != nil {
		log.Printf("Daemon stopped: %v", err)
	}
	conn.Quit()
	log.Println("floatbubble daemon stopped")
}
