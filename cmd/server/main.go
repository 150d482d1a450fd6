package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/cache"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/directions"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/routegen"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/scene"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/stream"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/api"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/config"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/platform/db"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/view"
)

// main is the application composition root.
// It wires concrete adapters (route backend, Mapbox, geometry cache)
// behind ports and starts the HTTP server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yml"))
	if err != nil {
		log.Fatal(err)
	}

	token := os.Getenv("MAPBOX_ACCESS_TOKEN")
	if strings.TrimSpace(token) == "" {
		log.Fatal("MAPBOX_ACCESS_TOKEN is required")
	}

	geometryCache, closeCache, err := openGeometryCache(cfg.Cache)
	if err != nil {
		log.Fatal(err)
	}
	if closeCache != nil {
		defer closeCache()
	}

	source, err := routegen.NewClient(
		cfg.Routes.BaseURL,
		time.Duration(cfg.Routes.TimeoutMS)*time.Millisecond,
	)
	if err != nil {
		log.Fatal(err)
	}

	provider, err := directions.NewMapboxDirections(
		token,
		cfg.Directions.BaseURL,
		cfg.Directions.Profile,
		time.Duration(cfg.Directions.TimeoutMS)*time.Millisecond,
		geometryCache,
	)
	if err != nil {
		log.Fatal(err)
	}

	hub := stream.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	surface := scene.New(func(op scene.Op) {
		hub.Broadcast(op.Type, op.Payload)
	})

	session := view.NewSession(surface, source, provider, cfg.Directions.Lookups)
	defer session.Close()

	// Warm the scene so the first viewer does not join an empty map.
	// Failures are recorded on the session and surfaced by the API.
	go func() {
		if err := session.Load(); err != nil {
			log.Printf("op=startup.load err=%v", err)
		}
	}()

	router := api.NewRouter(session, hub, cfg.Map, token)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("Server listening addr=%s", srv.Addr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	// Teardown order: stop serving, then kill in-flight work and the
	// scene, then drop the stream clients.
	session.Close()
	stopHub()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openGeometryCache selects the directions cache backend. The sqlite
// driver owns its schema; the postgres schema is managed by dbtool.
func openGeometryCache(cfg config.CacheConfig) (ports.GeometryCache, func(), error) {
	switch cfg.Driver {
	case "none":
		return nil, nil, nil

	case "sqlite":
		conn, err := db.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open geometry cache: %w", err)
		}
		if err := cache.InitSchema(conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("open geometry cache: %w", err)
		}
		return cache.NewSqliteGeometryCache(conn), closeDB(conn), nil

	case "postgres":
		databaseURL := os.Getenv("DATABASE_URL")
		if strings.TrimSpace(databaseURL) == "" {
			return nil, nil, fmt.Errorf("open geometry cache: DATABASE_URL is required for the postgres driver")
		}
		conn, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open geometry cache: %w", err)
		}
		return cache.NewSQLGeometryCache(conn), closeDB(conn), nil

	default:
		return nil, nil, fmt.Errorf("open geometry cache: unknown driver %q", cfg.Driver)
	}
}

func closeDB(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			log.Printf("close geometry cache: %v", err)
		}
	}
}
