package directions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/platform/obs"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// MapboxDirections implements DirectionsProvider using the Mapbox
// Directions API.
//
// It coordinates:
//   - Waypoint signature normalization
//   - Persistent geometry caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type MapboxDirections struct {
	session *http.Client
	token   string
	baseURL string
	profile string
	cache   ports.GeometryCache
}

func NewMapboxDirections(
	token string,
	baseURL string,
	profile string,
	timeout time.Duration,
	geometryCache ports.GeometryCache,
) (*MapboxDirections, error) {
	if token == "" {
		return nil, errors.New("mapbox access token is empty")
	}

	if baseURL == "" {
		baseURL = "https://api.mapbox.com"
	}

	if profile == "" {
		profile = "driving"
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	provider := &MapboxDirections{
		session: &http.Client{Timeout: timeout},
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: profile,
		cache:   geometryCache,
	}

	return provider, nil
}

// waypointKey renders waypoints in the "lon,lat;lon,lat" form used both
// as the cache key and as the request path segment. Coordinates are
// fixed to six decimal places so equal stop sequences always produce
// the same signature.
func waypointKey(waypoints []domain.Coordinates) string {
	var b strings.Builder
	for i, w := range waypoints {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.FormatFloat(w.Lon, 'f', 6, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(w.Lat, 'f', 6, 64))
	}

	return b.String()
}

// GetRouteLine resolves the road geometry through the given waypoints.
// A response that carries no usable route yields an empty geometry with
// a nil error; callers decide whether a missing line matters.
func (m *MapboxDirections) GetRouteLine(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ ports.RouteGeometry, err error) {
	defer obs.Time(ctx, "mapbox.GetRouteLine")(&err)

	if len(waypoints) < 2 {
		return ports.RouteGeometry{}, errors.New("get route line: at least two waypoints are required")
	}

	key := waypointKey(waypoints)

	// Check the persistent geometry cache before issuing external API calls.
	if m.cache != nil {
		geom, ok, err := m.cache.Get(ctx, m.profile, key)
		if err != nil {
			return ports.RouteGeometry{}, fmt.Errorf("mapbox get geometry cache: %w", err)
		}
		if ok {
			return geom, nil
		}
	}

	geom, err := m.fetchRoute(ctx, key)
	if err != nil {
		return ports.RouteGeometry{}, err
	}

	if m.cache != nil && !geom.Empty() {
		if err := m.cache.Put(ctx, m.profile, key, geom); err != nil {
			log.Printf("geometry cache write failed: %v", err)
		}
	}

	return geom, nil
}
