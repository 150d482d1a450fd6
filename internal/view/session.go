package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/scene"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/platform/obs"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/services"
)

var (
	// ErrLoadInProgress rejects a load while another one is running.
	// Loads are never queued; the caller re-invokes.
	ErrLoadInProgress = errors.New("view: load already in progress")

	// ErrClosed rejects operations after Close.
	ErrClosed = errors.New("view: session closed")

	// ErrNoSuchRoute rejects selection of an index outside the loaded
	// route list.
	ErrNoSuchRoute = errors.New("view: no such route index")
)

// Session owns the scene, the loaded routes, the derived view state and
// the active selection for one viewer lifetime. It is created once at
// startup, reused across reloads, and torn down exactly once.
//
// All loading runs under the session's own lifetime context rather than
// any caller's: a reload is not abandoned because the HTTP request that
// triggered it went away, and Close cancels whatever is in flight.
type Session struct {
	scene      *scene.Scene
	source     ports.RouteSource
	directions ports.DirectionsProvider
	lookups    int

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	loading  bool
	routes   []domain.Route
	derived  services.Derived
	selected int
	loadErr  error
	report   *services.RenderReport
}

func NewSession(
	sc *scene.Scene,
	source ports.RouteSource,
	directions ports.DirectionsProvider,
	lookups int,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		scene:      sc,
		source:     source,
		directions: directions,
		lookups:    lookups,
		ctx:        ctx,
		cancel:     cancel,
		selected:   -1,
	}
}

// Load runs one full cycle: fetch, derive, reset the scene, render.
//
// A fetch or format failure leaves the previous render standing and is
// recorded as the session's last load error. Only one load runs at a
// time; a concurrent call gets ErrLoadInProgress.
func (s *Session) Load() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.loading {
		s.mu.Unlock()
		return ErrLoadInProgress
	}
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	// One correlation id per cycle so fetch, cache and directions
	// timings line up in the log.
	ctx := obs.WithRequestID(s.ctx, uuid.NewString())

	routes, err := s.source.LoadRoutes(ctx)
	if err != nil {
		s.setLoadErr(err)
		log.Printf("op=view.load stage=fetch err=%v", err)
		return err
	}

	derived := services.BuildDerived(routes)

	// The scene is cleared only once a valid payload is in hand.
	if err := s.scene.Reset(); err != nil {
		s.setLoadErr(err)
		return fmt.Errorf("view: reset scene: %w", err)
	}

	// Commit before rendering so the sidebar serves the new routes
	// while line lookups are still resolving.
	s.mu.Lock()
	s.routes = routes
	s.derived = derived
	s.selected = -1
	s.loadErr = nil
	s.report = nil
	s.mu.Unlock()

	req := services.RenderRequest{
		Routes:  routes,
		Derived: derived,
		Lookups: s.lookups,
	}
	report, err := services.RenderRoutes(ctx, req, s.scene, s.directions)
	if err != nil {
		s.setLoadErr(err)
		log.Printf("op=view.load stage=render err=%v", err)
		return err
	}

	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	log.Printf(
		"op=view.load routes=%d homes=%d drivers=%d stops=%d schools=%d invalid=%d lines=%d lines_skipped=%d bounds_points=%d",
		len(routes),
		report.HomeMarkers, report.DriverMarkers, report.StopMarkers,
		report.SchoolMarkers, report.InvalidCoords,
		report.LinesDrawn, report.LinesSkipped, report.BoundsPoints,
	)

	return nil
}

func (s *Session) setLoadErr(err error) {
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
}

// SelectRoute records index as the active selection and leaves exactly
// that route's line visible. Routes whose line never materialized are
// unaffected by the toggle.
func (s *Session) SelectRoute(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(s.routes) {
		return fmt.Errorf("%w: %d (have %d routes)", ErrNoSuchRoute, index, len(s.routes))
	}

	s.selected = index

	for i := range s.routes {
		if err := s.scene.SetLineVisibility(i, i == index); err != nil {
			return fmt.Errorf("view: set line visibility: %w", err)
		}
	}

	return nil
}

// Routes returns the currently loaded route list.
func (s *Session) Routes() []domain.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routes
}

// DerivedState returns the aggregates of the current load.
func (s *Session) DerivedState() services.Derived {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.derived
}

// Selection returns the active route index; ok is false when no
// selection has been made since the last load.
func (s *Session) Selection() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected < 0 {
		return 0, false
	}
	return s.selected, true
}

// LastLoadError returns the error of the most recent failed load, or
// nil after a successful one.
func (s *Session) LastLoadError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// LastReport returns the most recent successful render's counters.
func (s *Session) LastReport() *services.RenderReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Snapshot returns the scene in wire form.
func (s *Session) Snapshot() scene.Snapshot {
	return s.scene.Snapshot()
}

// Close cancels any in-flight load and disposes the scene. Idempotent;
// after Close no primitive operation can land on the surface.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.scene.Dispose()
}
