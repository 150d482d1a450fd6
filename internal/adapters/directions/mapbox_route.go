package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/paulmach/orb"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

type directionsResponse struct {
	Code   string          `json:"code"`
	Routes []directionsLeg `json:"routes"`
}

type directionsLeg struct {
	Geometry legGeometry `json:"geometry"`
	Distance float64     `json:"distance"`
	Duration float64     `json:"duration"`
}

type legGeometry struct {
	Coordinates [][]float64 `json:"coordinates"`
}

// fetchRoute retrieves the road geometry for one waypoint sequence from
// the Mapbox directions endpoint. coords is the pre-rendered
// "lon,lat;lon,lat" path segment.
func (m *MapboxDirections) fetchRoute(
	ctx context.Context,
	coords string,
) (ports.RouteGeometry, error) {
	endpoint := fmt.Sprintf(
		"%s/directions/v5/mapbox/%s/%s",
		m.baseURL, m.profile, url.PathEscape(coords),
	)

	query := url.Values{}
	query.Set("geometries", "geojson")
	query.Set("overview", "full")
	query.Set("access_token", m.token)

	resp, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		return m.newRequest(ctx, http.MethodGet, endpoint+"?"+query.Encode())
	})
	if err != nil {
		return ports.RouteGeometry{}, &domain.FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.RouteGeometry{}, fmt.Errorf("decode directions response: %w", err)
	}

	// "NoRoute" and friends are not transport failures; the route simply
	// has no drivable line.
	if dr.Code != "Ok" || len(dr.Routes) == 0 {
		return ports.RouteGeometry{}, nil
	}

	best := dr.Routes[0]

	line := make(orb.LineString, 0, len(best.Geometry.Coordinates))
	for _, c := range best.Geometry.Coordinates {
		if len(c) != 2 {
			return ports.RouteGeometry{}, fmt.Errorf(
				"directions geometry has a %d-element coordinate", len(c),
			)
		}
		line = append(line, orb.Point{c[0], c[1]})
	}

	geom := ports.RouteGeometry{
		Line:            line,
		DistanceMeters:  int(math.Round(best.Distance)),
		DurationSeconds: int(math.Round(best.Duration)),
	}

	return geom, nil
}
