package ports

import (
	"context"
)

// GeometryCache persists directions lookups across reloads. Route data
// itself is never cached (it is refetched on every load); the cache
// only covers the directions service, whose answer for an identical
// waypoint sequence is stable.
type GeometryCache interface {
	// Get returns the cached geometry for a profile and waypoint key.
	// The second return is false on a miss.
	Get(ctx context.Context, profile, key string) (RouteGeometry, bool, error)

	// Put stores a resolved geometry. Failures are reported but callers
	// treat them as non-fatal (the lookup already succeeded).
	Put(ctx context.Context, profile, key string, geom RouteGeometry) error
}
