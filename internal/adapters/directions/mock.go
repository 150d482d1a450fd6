package directions

import (
	"context"
	"fmt"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// MockDirections serves canned geometries keyed by waypoint signature.
type MockDirections struct {
	m map[string]ports.RouteGeometry
}

func NewMockDirections() *MockDirections {
	return &MockDirections{m: make(map[string]ports.RouteGeometry)}
}

// Add registers the geometry returned for an exact waypoint sequence.
func (p *MockDirections) Add(waypoints []domain.Coordinates, geom ports.RouteGeometry) {
	p.m[waypointKey(waypoints)] = geom
}

func (p *MockDirections) GetRouteLine(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (ports.RouteGeometry, error) {
	key := waypointKey(waypoints)

	geom, ok := p.m[key]
	if !ok {
		return ports.RouteGeometry{}, fmt.Errorf("missing geometry for %q", key)
	}

	return geom, nil
}
