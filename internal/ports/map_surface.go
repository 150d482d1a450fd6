package ports

import "github.com/paulmach/orb"

// MarkerKind distinguishes the four marker classes the renderer places.
type MarkerKind string

const (
	MarkerHome   MarkerKind = "home"
	MarkerDriver MarkerKind = "driver"
	MarkerStop   MarkerKind = "stop"
	MarkerSchool MarkerKind = "school"
)

// MarkerStyle is the visual treatment of a marker. The map engine
// itself is out of scope; these fields are the contract it consumes.
type MarkerStyle struct {
	// Color is a CSS color; empty selects the engine's neutral default.
	Color string
	// Label is short glyph text drawn on the marker ("1", "School").
	Label string
	// Outlined gives the marker a distinct outline; used for stops
	// whose student must walk to the pickup point.
	Outlined bool
	// Priority orders stacking; lower values sit beneath higher ones.
	Priority int
}

type Marker struct {
	ID string
	// RouteID is empty for home markers, which belong to no route.
	RouteID string
	Kind    MarkerKind
	At      orb.Point
	Style   MarkerStyle
	// Popup text shown on click; empty means no popup.
	Popup string
}

// LineLayer is one route's rendered polyline.
type LineLayer struct {
	ID         string
	RouteID    string
	RouteIndex int
	Color      string
	Width      float64
	Line       orb.LineString
}

// FitOptions frames the viewport around a bound.
type FitOptions struct {
	Padding int
	MaxZoom float64
}

// Port: the map rendering surface. One implementation backs one map
// instance for one component lifetime; every operation returns an
// error once the surface has been disposed, so late writers (in-flight
// directions lookups finishing after teardown) fail closed instead of
// touching a dead map.
type MapSurface interface {
	// Reset discards all primitives, keeping the surface usable.
	// Called at the start of each successful load cycle.
	Reset() error

	AddMarker(m Marker) error

	AddLineLayer(l LineLayer) error

	// SetLineVisibility shows or hides the line layer for a route
	// index. Indexes with no layer (the route's directions lookup
	// failed) are a silent no-op.
	SetLineVisibility(routeIndex int, visible bool) error

	// FitBounds frames the viewport so the bound is fully visible.
	FitBounds(b orb.Bound, opts FitOptions) error
}
