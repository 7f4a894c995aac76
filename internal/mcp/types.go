package mcp

// StatusInput is the input for the bubble_status tool.
type StatusInput struct{}

// StatusOutput is the output for the bubble_status tool.
type StatusOutput struct {
	X             int    `json:"x" jsonschema:"Bubble center x relative to the screen center"`
	Y             int    `json:"y" jsonschema:"Bubble center y relative to the screen center"`
	Left          int    `json:"left" jsonschema:"Top-left corner x in screen pixels"`
	Top           int    `json:"top" jsonschema:"Top-left corner y in screen pixels"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Snap          string `json:"snap" jsonschema:"idle or snapping"`
	Edge          string `json:"edge,omitempty" jsonschema:"Edge of the snap in progress: left or right"`
	Gesture       string `json:"gesture" jsonschema:"idle, pressed or dragging"`
	Settled       bool   `json:"settled" jsonschema:"True when neither a snap nor a drag is in progress"`
	OnScreen      bool   `json:"on_screen" jsonschema:"True when the bubble lies horizontally within the display"`
	Visible       bool   `json:"visible"`
	Display       string `json:"display"`
	Uptime        string `json:"uptime" jsonschema:"How long the daemon has been running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// SnapInput is the input for the bubble_snap tool.
type SnapInput struct{}

// SnapOutput is the output for the bubble_snap tool.
type SnapOutput struct {
	Started bool   `json:"started"`
	Edge    string `json:"edge,omitempty" jsonschema:"left or right"`
}

// MoveInput is the input for the bubble_move tool.
type MoveInput struct {
	X int `json:"x" jsonschema:"Top-left corner x in screen pixels"`
	Y int `json:"y" jsonschema:"Top-left corner y in screen pixels"`
}

// MoveOutput is the output for the bubble_move tool.
type MoveOutput struct {
	Left    int  `json:"left" jsonschema:"Top-left corner x after the move"`
	Top     int  `json:"top" jsonschema:"Top-left corner y after the move"`
	Clamped bool `json:"clamped" jsonschema:"True when the requested y was outside the safe area"`
}

// MetricsInput is the input for the bubble_metrics tool.
type MetricsInput struct{}

// MetricsOutput is the output for the bubble_metrics tool.
type MetricsOutput struct {
	Display      string `json:"display"`
	OriginX      int    `json:"origin_x"`
	OriginY      int    `json:"origin_y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SafeTopPx    int    `json:"safe_top_px" jsonschema:"Pixels reserved by panels at the top"`
	SafeBottomPx int    `json:"safe_bottom_px" jsonschema:"Pixels reserved by panels at the bottom"`
	MinCenterY   int    `json:"min_center_y" jsonschema:"Smallest bubble center y relative to the screen center"`
	MaxCenterY   int    `json:"max_center_y" jsonschema:"Largest bubble center y relative to the screen center"`
}

// ToggleInput is the input for the bubble_toggle tool.
type ToggleInput struct{}

// ToggleOutput is the output for the bubble_toggle tool.
type ToggleOutput struct {
	Visible bool `json:"visible"`
}
