package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/floatbubble/internal/bubble"
	"github.com/1broseidon/floatbubble/internal/geom"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload     CommandType = "RELOAD"
	CommandGetStatus  CommandType = "GET_STATUS"
	CommandGetMetrics CommandType = "GET_METRICS"
	CommandSnap       CommandType = "SNAP"
	CommandMove       CommandType = "MOVE"
	CommandToggle     CommandType = "TOGGLE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Bubble        bubble.Status `json:"bubble"`
	Visible       bool          `json:"visible"`
	Display       string        `json:"display"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	DaemonRunning bool          `json:"daemon_running"`
}

// MetricsData represents the data returned by GET_METRICS
type MetricsData struct {
	Display string             `json:"display"`
	OriginX int                `json:"origin_x"`
	OriginY int                `json:"origin_y"`
	Metrics geom.ScreenMetrics `json:"metrics"`
	// SafeTopY and SafeBottomY bound the bubble center in window-manager space.
	SafeTopY    int `json:"safe_top_y"`
	SafeBottomY int `json:"safe_bottom_y"`
}

// SnapData represents the data returned by SNAP
type SnapData struct {
	Started   bool   `json:"started"`
	Direction string `json:"direction,omitempty"`
}

// MovePayload represents the payload for MOVE: the bubble's top-left corner
// in screen space.
type MovePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToggleData represents the data returned by TOGGLE
type ToggleData struct {
	Visible bool `json:"visible"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
