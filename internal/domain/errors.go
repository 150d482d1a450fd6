package domain

import "fmt"

// FetchError reports a transport-level failure reaching an upstream
// endpoint (the route backend or the directions service). On the
// primary route load it aborts the whole render cycle; on a per-route
// directions lookup it is contained and only that route's line is
// dropped.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError reports an upstream payload that does not match the
// agreed shape (missing success flag, non-array data). It always
// aborts the load cycle: a bad data set must not render at all.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "unexpected route payload: " + e.Reason }

// InvalidGeometryError reports a malformed coordinate pair on a single
// stop or destination. It is contained: the affected marker is omitted
// and processing of the remaining stops and routes continues.
type InvalidGeometryError struct {
	RouteID string
	// Stop is the 1-based stop number, or 0 when the coordinate does
	// not belong to a numbered stop (home seeds, final destination).
	Stop int
	Err  error
}

func (e *InvalidGeometryError) Error() string {
	if e.Stop > 0 {
		return fmt.Sprintf("route %s stop %d: invalid coordinate: %v", e.RouteID, e.Stop, e.Err)
	}
	return fmt.Sprintf("route %s: invalid coordinate: %v", e.RouteID, e.Err)
}

func (e *InvalidGeometryError) Unwrap() error { return e.Err }
