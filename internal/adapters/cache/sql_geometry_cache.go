package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/platform/obs"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// SQLGeometryCache is the Postgres-backed cache for directions
// geometries, used when several viewer instances share one cache.
type SQLGeometryCache struct {
	DB *sql.DB
}

func NewSQLGeometryCache(db *sql.DB) *SQLGeometryCache {
	return &SQLGeometryCache{DB: db}
}

// Fetch the cached geometry for one profile and waypoint signature.
func (s *SQLGeometryCache) Get(
	ctx context.Context,
	profile string,
	key string,
) (_ ports.RouteGeometry, _ bool, err error) {
	defer obs.Time(ctx, "geometry.cache.Get")(&err)

	if s.DB == nil {
		return ports.RouteGeometry{}, false, errors.New("geometry cache: db is nil")
	}

	if profile == "" || key == "" {
		return ports.RouteGeometry{}, false, errors.New("get geometry cache: profile and key must not be empty")
	}

	q := `
	SELECT geometry, distance_meters, duration_seconds
    FROM directions_cache
    WHERE profile = $1
        AND waypoints = $2;
	`

	var (
		raw     []byte
		meters  int
		seconds int
	)
	err = s.DB.QueryRowContext(ctx, q, profile, key).Scan(&raw, &meters, &seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteGeometry{}, false, nil
	}
	if err != nil {
		return ports.RouteGeometry{}, false, fmt.Errorf("get geometry cache: query directions_cache table: %w", err)
	}

	line, err := decodeLine(raw)
	if err != nil {
		return ports.RouteGeometry{}, false, fmt.Errorf("get geometry cache: %w", err)
	}

	geom := ports.RouteGeometry{
		Line:            line,
		DistanceMeters:  meters,
		DurationSeconds: seconds,
	}

	return geom, true, nil
}

// Store one resolved geometry.
func (s *SQLGeometryCache) Put(
	ctx context.Context,
	profile string,
	key string,
	geom ports.RouteGeometry,
) (err error) {
	defer obs.Time(ctx, "geometry.cache.Put")(&err)

	if s.DB == nil {
		return errors.New("geometry cache: db is nil")
	}

	if profile == "" || key == "" {
		return errors.New("insert geometry cache: profile and key must not be empty")
	}

	raw, err := encodeLine(geom.Line)
	if err != nil {
		return fmt.Errorf("insert geometry cache: %w", err)
	}

	q := `
	INSERT INTO directions_cache
		(profile, waypoints, geometry, distance_meters, duration_seconds)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (profile, waypoints) DO UPDATE
	SET geometry = EXCLUDED.geometry,
		distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`

	_, err = s.DB.ExecContext(ctx, q,
		profile,
		key,
		raw,
		geom.DistanceMeters,
		geom.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("insert geometry cache: %w", err)
	}

	return nil
}
