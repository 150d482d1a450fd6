package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates (longitude, latitude).
// Wire payloads carry positions as [lon, lat] pairs; the order is
// significant and must never be swapped.
type Coordinates struct {
	Lon float64
	Lat float64
}

// ParseCoordinates validates a raw wire pair and converts it.
// A pair is structurally valid when it has exactly two finite entries.
func ParseCoordinates(raw []float64) (Coordinates, error) {
	if len(raw) != 2 {
		return Coordinates{}, fmt.Errorf("coordinate pair has %d entries, want 2", len(raw))
	}
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Coordinates{}, fmt.Errorf("coordinate pair contains non-finite entry %v", v)
		}
	}
	return Coordinates{Lon: raw[0], Lat: raw[1]}, nil
}

// Point returns the position in orb's native [lon, lat] form.
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }
