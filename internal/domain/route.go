package domain

// Represents a single student pickup along a bus route.
// The Location pair is kept in its raw wire form ([lon, lat]) so a
// malformed coordinate can be skipped at render time instead of
// failing the whole load.
type Stop struct {
	StudentID   string
	StudentName string
	Location    []float64
	// Road distance from the previous stop (or from the depot for the
	// first stop), in kilometers.
	DistanceKM float64
	// RequiresWalk marks students whose bus stop is not at their door;
	// WalkDistanceKM is how far they walk from the stopping point.
	RequiresWalk   bool
	WalkDistanceKM float64
}

// FinalDestination is where a route ends after the last pickup,
// typically the school. It always trails every stop.
type FinalDestination struct {
	Location   []float64
	DistanceKM float64
}

// Represents one driver's complete pickup round as produced by the
// route-generation backend. Stop order is the pickup sequence and is
// never reordered here. Aggregate totals arrive precomputed; this
// system does not plan or optimize routes.
type Route struct {
	// Stable identity used for layer naming and selection. Assigned by
	// the loader when the backend payload does not carry one, so that
	// reordering or filtering the route list cannot silently re-target
	// a selection.
	ID           string
	DriverID     string
	DriverName   string
	Stops        []Stop
	TotalDistKM  float64
	TotalTimeMin float64
	TotalFuelL   float64
	StudentCount int
	Final        FinalDestination
}
