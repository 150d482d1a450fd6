package ports

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
)

// RouteGeometry is the road-following polyline for one route, as
// returned by the directions service.
type RouteGeometry struct {
	Line            orb.LineString
	DistanceMeters  int
	DurationSeconds int
}

// Empty reports whether the lookup produced no usable geometry.
func (g RouteGeometry) Empty() bool { return len(g.Line) < 2 }

// Contract for resolving an ordered coordinate sequence into road
// geometry. Implementations return an empty RouteGeometry with a nil
// error when the service finds no route; callers treat both errors and
// empty results the same way (log, skip the line, keep the markers).
type DirectionsProvider interface {
	GetRouteLine(ctx context.Context, waypoints []domain.Coordinates) (RouteGeometry, error)
}
