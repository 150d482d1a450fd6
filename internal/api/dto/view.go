package dto

import (
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/scene"
)

// MapConfigResponse bootstraps the browser map client.
type MapConfigResponse struct {
	AccessToken string    `json:"access_token"`
	Style       string    `json:"style"`
	Center      []float64 `json:"center"`
	Zoom        float64   `json:"zoom"`
}

type RenderReportResponse struct {
	HomeMarkers   int `json:"home_markers"`
	DriverMarkers int `json:"driver_markers"`
	StopMarkers   int `json:"stop_markers"`
	SchoolMarkers int `json:"school_markers"`
	InvalidCoords int `json:"invalid_coords"`
	LinesDrawn    int `json:"lines_drawn"`
	LinesSkipped  int `json:"lines_skipped"`
	BoundsPoints  int `json:"bounds_points"`
}

// ViewResponse is the full view state for clients that poll instead of
// following the stream.
type ViewResponse struct {
	Scene      scene.Snapshot        `json:"scene"`
	RouteCount int                   `json:"route_count"`
	Selected   *int                  `json:"selected"`
	LastError  string                `json:"last_error,omitempty"`
	Render     *RenderReportResponse `json:"render,omitempty"`
}

type ReloadResponse struct {
	Routes int                   `json:"routes"`
	Render *RenderReportResponse `json:"render,omitempty"`
}

type SelectRequest struct {
	// Index is a pointer so a missing field is told apart from 0.
	Index *int `json:"index"`
}

type SelectResponse struct {
	Selected int `json:"selected"`
}
