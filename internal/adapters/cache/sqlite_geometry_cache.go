package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// SqliteGeometryCache persists directions geometries in a local SQLite
// file. It is the default cache for single instance deployments.
type SqliteGeometryCache struct {
	DB *sql.DB
}

func NewSqliteGeometryCache(db *sql.DB) *SqliteGeometryCache {
	return &SqliteGeometryCache{DB: db}
}

func (s *SqliteGeometryCache) Get(
	ctx context.Context,
	profile string,
	key string,
) (ports.RouteGeometry, bool, error) {
	if s.DB == nil {
		return ports.RouteGeometry{}, false, errors.New("geometry cache: db is nil")
	}

	if profile == "" || key == "" {
		return ports.RouteGeometry{}, false, errors.New("get geometry cache: profile and key must not be empty")
	}

	q := `
	SELECT geometry, distance_meters, duration_seconds
	FROM directions_cache
	WHERE profile = ?
		AND waypoints = ?;
	`

	var (
		raw     []byte
		meters  int
		seconds int
	)
	err := s.DB.QueryRowContext(ctx, q, profile, key).Scan(&raw, &meters, &seconds)
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

func (s *SqliteGeometryCache) Put(
	ctx context.Context,
	profile string,
	key string,
	geom ports.RouteGeometry,
) error {
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
	INSERT OR REPLACE INTO directions_cache
		(profile, waypoints, geometry, distance_meters, duration_seconds)
	VALUES (?, ?, ?, ?, ?);
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
