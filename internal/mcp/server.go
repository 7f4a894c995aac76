package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/floatbubble/internal/ipc"
)

const (
	ServerName    = "floatbubble"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of the IPC client the tools use.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	GetMetrics() (*ipc.MetricsData, error)
	Snap() (*ipc.SnapData, error)
	Move(x, y int) error
	Toggle() (*ipc.ToggleData, error)
}

var _ DaemonClient = (*ipc.Client)(nil)

// Server is the MCP server exposing the bubble to agents.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
}

// NewServer creates a new MCP server that forwards to the daemon over IPC.
func NewServer(client DaemonClient) *Server {
	s := &Server{client: client}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "bubble_status",
		Description: "Report where the floating bubble is: its center in window-manager space (origin at the screen center), its top-left corner in screen space, whether a snap or drag is in progress, and whether it is visible.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "bubble_snap",
		Description: "Spring the bubble to the nearest horizontal screen edge. Returns started=false when a snap is already running or the bubble is hidden.",
	}, s.handleSnap)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "bubble_move",
		Description: "Move the bubble so its top-left corner is at (x, y) in screen pixels. The vertical position is clamped into the area between the top and bottom panels; the horizontal position is not clamped.",
	}, s.handleMove)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "bubble_metrics",
		Description: "Report the size of the display the bubble lives on, the panel insets and the range of vertical positions the bubble center may take.",
	}, s.handleMetrics)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "bubble_toggle",
		Description: "Show the bubble when hidden, hide it when shown.",
	}, s.handleToggle)
}
