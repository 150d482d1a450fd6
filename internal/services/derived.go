package services

import (
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
)

// StopRef is one walk-required stop with enough route context for the
// sidebar: driver attribution and the 1-based stop number.
type StopRef struct {
	RouteID    string
	RouteIndex int
	DriverName string
	StopNumber int
	Stop       domain.Stop
}

// Derived is the aggregate view state recomputed from scratch on every
// load. Nothing here is persisted or updated incrementally.
type Derived struct {
	// WalkingStops lists stops whose student must walk to the pickup
	// point, in route order then stop order, without deduplication.
	WalkingStops []StopRef

	// HomeLocations collects every stop's raw location pair across all
	// routes. They seed the neutral home markers and belong to no
	// particular route; structural validation happens at render time.
	HomeLocations [][]float64
}

// BuildDerived scans every route's stops once. Walk list membership
// depends only on the RequiresWalk flag, never on coordinate validity.
func BuildDerived(routes []domain.Route) Derived {
	d := Derived{
		WalkingStops:  []StopRef{},
		HomeLocations: [][]float64{},
	}

	for ri, route := range routes {
		for si, stop := range route.Stops {
			d.HomeLocations = append(d.HomeLocations, stop.Location)

			if stop.RequiresWalk {
				d.WalkingStops = append(d.WalkingStops, StopRef{
					RouteID:    route.ID,
					RouteIndex: ri,
					DriverName: route.DriverName,
					StopNumber: si + 1,
					Stop:       stop,
				})
			}
		}
	}

	return d
}
