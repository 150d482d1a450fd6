package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/directions"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/scene"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// stubSource serves a fixed route list, or a fixed error once fail has
// been called.
type stubSource struct {
	mu     sync.Mutex
	routes []domain.Route
	err    error
}

func (s *stubSource) LoadRoutes(ctx context.Context) ([]domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.routes, nil
}

func (s *stubSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// gateSource blocks inside LoadRoutes until release is closed, so a
// test can hold a load open and observe the session mid-flight.
type gateSource struct {
	routes  []domain.Route
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateSource) LoadRoutes(ctx context.Context) ([]domain.Route, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.routes, nil
}

func fixtureRoutes() []domain.Route {
	return []domain.Route{
		{
			ID:         "r1",
			DriverName: "Aigerim",
			Stops: []domain.Stop{
				{StudentID: "s1", StudentName: "Dana", Location: []float64{76.90, 43.20}},
				{StudentID: "s2", StudentName: "Olzhas", Location: []float64{76.91, 43.21}},
			},
			Final: domain.FinalDestination{Location: []float64{76.92, 43.22}},
		},
		{
			ID:         "r2",
			DriverName: "Bolat",
			Stops: []domain.Stop{
				{StudentID: "s3", StudentName: "Timur", Location: []float64{76.95, 43.25}},
				{StudentID: "s4", StudentName: "Aruzhan", Location: []float64{76.96, 43.26}},
			},
			Final: domain.FinalDestination{Location: []float64{76.97, 43.27}},
		},
	}
}

// fixtureProvider registers geometry for both fixture routes.
func fixtureProvider() *directions.MockDirections {
	p := directions.NewMockDirections()
	p.Add([]domain.Coordinates{
		{Lon: 76.90, Lat: 43.20},
		{Lon: 76.91, Lat: 43.21},
		{Lon: 76.92, Lat: 43.22},
	}, ports.RouteGeometry{Line: orb.LineString{{76.90, 43.20}, {76.92, 43.22}}})
	p.Add([]domain.Coordinates{
		{Lon: 76.95, Lat: 43.25},
		{Lon: 76.96, Lat: 43.26},
		{Lon: 76.97, Lat: 43.27},
	}, ports.RouteGeometry{Line: orb.LineString{{76.95, 43.25}, {76.97, 43.27}}})
	return p
}

func newTestSession() (*Session, *scene.Scene, *stubSource) {
	sc := scene.New(nil)
	source := &stubSource{routes: fixtureRoutes()}
	return NewSession(sc, source, fixtureProvider(), 2), sc, source
}

// lineVisibility maps route index to the visible flag of its layer in
// the snapshot.
func lineVisibility(t *testing.T, snap scene.Snapshot) map[int]bool {
	t.Helper()
	vis := make(map[int]bool)
	for _, f := range snap.Lines.Features {
		idx, ok := f.Properties["route_index"].(int)
		if !ok {
			t.Fatalf("line feature missing route_index: %v", f.Properties)
		}
		vis[idx] = f.Properties["visible"].(bool)
	}
	return vis
}

func TestSessionLoadRendersScene(t *testing.T) {
	sess, _, _ := newTestSession()
	defer sess.Close()

	if err := sess.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(sess.Routes()) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(sess.Routes()))
	}
	if err := sess.LastLoadError(); err != nil {
		t.Errorf("expected no load error, got %v", err)
	}
	if _, ok := sess.Selection(); ok {
		t.Error("a fresh load must have no selection")
	}

	report := sess.LastReport()
	if report == nil {
		t.Fatal("expected a render report after a successful load")
	}
	if report.HomeMarkers != 4 || report.DriverMarkers != 2 ||
		report.StopMarkers != 4 || report.SchoolMarkers != 2 {
		t.Errorf("unexpected marker counts: %+v", report)
	}
	if report.LinesDrawn != 2 {
		t.Errorf("expected 2 lines drawn, got %+v", report)
	}

	snap := sess.Snapshot()
	if len(snap.Markers.Features) != 12 {
		t.Errorf("expected 12 marker features, got %d", len(snap.Markers.Features))
	}
	if len(snap.Lines.Features) != 2 {
		t.Errorf("expected 2 line features, got %d", len(snap.Lines.Features))
	}
	if snap.Fit == nil {
		t.Fatal("expected a viewport fit in the snapshot")
	}
	if snap.Fit.Padding != 20 || snap.Fit.MaxZoom != 15 {
		t.Errorf("unexpected fit: %+v", snap.Fit)
	}
	wantBounds := [4]float64{76.90, 43.20, 76.97, 43.27}
	if snap.Fit.Bounds != wantBounds {
		t.Errorf("fit bounds = %v, want %v", snap.Fit.Bounds, wantBounds)
	}
}

func TestSessionLoadFailureKeepsPreviousRender(t *testing.T) {
	sess, _, source := newTestSession()
	defer sess.Close()

	if err := sess.Load(); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if err := sess.SelectRoute(1); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	cause := &domain.FetchError{URL: "http://backend/api/routes/generate", Err: errors.New("connection refused")}
	source.fail(cause)

	err := sess.Load()
	if err == nil {
		t.Fatal("expected the second load to fail")
	}
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected a fetch error, got %v", err)
	}
	if sess.LastLoadError() == nil {
		t.Error("failed load must be recorded")
	}

	// The previous cycle's routes, scene and selection all stand.
	if len(sess.Routes()) != 2 {
		t.Errorf("previous routes must survive a failed load, have %d", len(sess.Routes()))
	}
	snap := sess.Snapshot()
	if len(snap.Markers.Features) != 12 || len(snap.Lines.Features) != 2 {
		t.Errorf("previous render must stand: %d markers, %d lines",
			len(snap.Markers.Features), len(snap.Lines.Features))
	}
	if idx, ok := sess.Selection(); !ok || idx != 1 {
		t.Errorf("selection must survive a failed load, got (%d, %v)", idx, ok)
	}
}

func TestSessionSelectRoute(t *testing.T) {
	sess, _, _ := newTestSession()
	defer sess.Close()

	if err := sess.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := sess.SelectRoute(1); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}
	if idx, ok := sess.Selection(); !ok || idx != 1 {
		t.Fatalf("expected selection 1, got (%d, %v)", idx, ok)
	}

	vis := lineVisibility(t, sess.Snapshot())
	if vis[0] || !vis[1] {
		t.Errorf("expected only route 1 visible, got %v", vis)
	}

	if err := sess.SelectRoute(0); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}
	vis = lineVisibility(t, sess.Snapshot())
	if !vis[0] || vis[1] {
		t.Errorf("expected only route 0 visible, got %v", vis)
	}
}

func TestSessionSelectRejectsBadIndex(t *testing.T) {
	sess, _, _ := newTestSession()
	defer sess.Close()

	// Before any load the route list is empty.
	if err := sess.SelectRoute(0); !errors.Is(err, ErrNoSuchRoute) {
		t.Fatalf("expected ErrNoSuchRoute before load, got %v", err)
	}

	if err := sess.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, idx := range []int{-1, 2, 99} {
		if err := sess.SelectRoute(idx); !errors.Is(err, ErrNoSuchRoute) {
			t.Errorf("index %d: expected ErrNoSuchRoute, got %v", idx, err)
		}
	}
	if _, ok := sess.Selection(); ok {
		t.Error("a rejected selection must not stick")
	}
}

func TestSessionReloadResetsSelection(t *testing.T) {
	sess, _, _ := newTestSession()
	defer sess.Close()

	if err := sess.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := sess.SelectRoute(0); err != nil {
		t.Fatalf("SelectRoute failed: %v", err)
	}

	if err := sess.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if _, ok := sess.Selection(); ok {
		t.Error("reload must clear the selection")
	}

	// Fresh layers start visible again.
	vis := lineVisibility(t, sess.Snapshot())
	if !vis[0] || !vis[1] {
		t.Errorf("expected all lines visible after reload, got %v", vis)
	}
}

func TestSessionRejectsConcurrentLoad(t *testing.T) {
	sc := scene.New(nil)
	gate := &gateSource{
		routes:  fixtureRoutes(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sess := NewSession(sc, gate, fixtureProvider(), 2)
	defer sess.Close()

	done := make(chan error, 1)
	go func() { done <- sess.Load() }()
	<-gate.started

	if err := sess.Load(); !errors.Is(err, ErrLoadInProgress) {
		t.Fatalf("expected ErrLoadInProgress, got %v", err)
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("gated load failed: %v", err)
	}

	// The slot frees once the first load finishes.
	if err := sess.Load(); err != nil {
		t.Fatalf("load after completion failed: %v", err)
	}
}

func TestSessionCloseIsTerminal(t *testing.T) {
	sess, sc, _ := newTestSession()

	if err := sess.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sess.Close()
	sess.Close()

	if !sc.Disposed() {
		t.Error("closing the session must dispose the scene")
	}
	if err := sess.Load(); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Load, got %v", err)
	}
	if err := sess.SelectRoute(0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from SelectRoute, got %v", err)
	}

	snap := sess.Snapshot()
	if len(snap.Markers.Features) != 0 || len(snap.Lines.Features) != 0 {
		t.Error("a disposed scene must snapshot empty")
	}
}

func TestSessionCloseDuringLoadFailsClosed(t *testing.T) {
	sc := scene.New(nil)
	gate := &gateSource{
		routes:  fixtureRoutes(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	sess := NewSession(sc, gate, fixtureProvider(), 2)

	done := make(chan error, 1)
	go func() { done <- sess.Load() }()
	<-gate.started

	sess.Close()
	close(gate.release)

	// The in-flight load hits the disposed scene and fails instead of
	// rendering onto a dead map.
	err := <-done
	if err == nil {
		t.Fatal("expected the interrupted load to fail")
	}
	if !errors.Is(err, scene.ErrDisposed) {
		t.Errorf("expected the disposed scene error, got %v", err)
	}
}
