package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/floatbubble/internal/geom"
)

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("failed to query bubble status: %w", err)
	}

	b := st.Bubble
	return nil, StatusOutput{
		X:             b.Position.X,
		Y:             b.Position.Y,
		Left:          b.TopLeft.X,
		Top:           b.TopLeft.Y,
		Width:         b.Size.WidthPx,
		Height:        b.Size.HeightPx,
		Snap:          b.Snap,
		Edge:          b.Direction,
		Gesture:       b.Gesture,
		Settled:       b.Snap == "idle" && b.Gesture == "idle",
		OnScreen:      b.TopLeft.X >= 0 && b.TopLeft.X+b.Size.WidthPx <= b.Metrics.WidthPx,
		Visible:       st.Visible,
		Display:       st.Display,
		Uptime:        formatUptime(st.UptimeSeconds),
		UptimeSeconds: st.UptimeSeconds,
	}, nil
}

func (s *Server) handleSnap(_ context.Context, _ *mcpsdk.CallToolRequest, _ SnapInput) (*mcpsdk.CallToolResult, SnapOutput, error) {
	res, err := s.client.Snap()
	if err != nil {
		return nil, SnapOutput{}, fmt.Errorf("failed to snap bubble: %w", err)
	}
	return nil, SnapOutput{Started: res.Started, Edge: res.Direction}, nil
}

func (s *Server) handleMove(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveInput) (*mcpsdk.CallToolResult, MoveOutput, error) {
	if err := s.client.Move(args.X, args.Y); err != nil {
		return nil, MoveOutput{}, fmt.Errorf("failed to move bubble to (%d, %d): %w", args.X, args.Y, err)
	}

	st, err := s.client.GetStatus()
	if err != nil {
		return nil, MoveOutput{}, fmt.Errorf("bubble moved but status is unavailable: %w", err)
	}
	return nil, MoveOutput{
		Left:    st.Bubble.TopLeft.X,
		Top:     st.Bubble.TopLeft.Y,
		Clamped: st.Bubble.TopLeft.Y != args.Y,
	}, nil
}

func (s *Server) handleMetrics(_ context.Context, _ *mcpsdk.CallToolRequest, _ MetricsInput) (*mcpsdk.CallToolResult, MetricsOutput, error) {
	m, err := s.client.GetMetrics()
	if err != nil {
		return nil, MetricsOutput{}, fmt.Errorf("failed to query display metrics: %w", err)
	}
	return nil, metricsOutput(m.Display, m.OriginX, m.OriginY, m.Metrics, m.SafeTopY, m.SafeBottomY), nil
}

func metricsOutput(display string, originX, originY int, m geom.ScreenMetrics, minY, maxY int) MetricsOutput {
	return MetricsOutput{
		Display:      display,
		OriginX:      originX,
		OriginY:      originY,
		Width:        m.WidthPx,
		Height:       m.HeightPx,
		SafeTopPx:    m.SafeTopPx,
		SafeBottomPx: m.SafeBottomPx,
		MinCenterY:   minY,
		MaxCenterY:   maxY,
	}
}

func (s *Server) handleToggle(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleInput) (*mcpsdk.CallToolResult, ToggleOutput, error) {
	res, err := s.client.Toggle()
	if err != nil {
		return nil, ToggleOutput{}, fmt.Errorf("failed to toggle bubble: %w", err)
	}
	return nil, ToggleOutput{Visible: res.Visible}, nil
}

// formatUptime renders seconds as "5 minutes", "2 hours" and so on.
func formatUptime(seconds int64) string {
	start := time.Unix(0, 0)
	return strings.TrimSpace(humanize.RelTime(start, start.Add(time.Duration(seconds)*time.Second), "", ""))
}
