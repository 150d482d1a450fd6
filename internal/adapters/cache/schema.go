package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the geometry cache schema. The statements are written to
// run unchanged on both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDirectionsCacheQuery := `
	CREATE TABLE IF NOT EXISTS directions_cache (
        profile TEXT NOT NULL,
        waypoints TEXT NOT NULL,
        geometry TEXT NOT NULL,
        distance_meters INTEGER NOT NULL DEFAULT 0,
        duration_seconds INTEGER NOT NULL DEFAULT 0,
        PRIMARY KEY (profile, waypoints)
    );
	`

	statements := []string{
		createDirectionsCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
