package ports

import (
	"context"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
)

// Port: a boundary for fetching the generated route set from the
// route-generation backend.
type RouteSource interface {
	// LoadRoutes retrieves every precomputed route for the current plan.
	// Failures are reported as domain.FetchError (transport) or
	// domain.FormatError (payload shape); both abort the load cycle.
	LoadRoutes(ctx context.Context) ([]domain.Route, error)
}
