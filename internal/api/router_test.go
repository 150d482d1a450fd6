package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/directions"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/scene"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/adapters/stream"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/config"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/view"
)

type emptySource struct{}

func (emptySource) LoadRoutes(ctx context.Context) ([]domain.Route, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	sess := view.NewSession(scene.New(nil), emptySource{}, directions.NewMockDirections(), 2)
	t.Cleanup(sess.Close)

	mapCfg := config.MapConfig{
		Style:  "mapbox://styles/mapbox/streets-v12",
		Center: []float64{76.9, 43.25},
		Zoom:   11,
	}
	return NewRouter(sess, stream.NewHub(), mapCfg, "pk.test")
}

func TestRouterServesEndpoints(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/health", "/api/map-config", "/api/view", "/api/sidebar"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path = %d, want 404", rec.Code)
	}
}

func TestRouterTagsRequests(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	// A proxy-supplied id is kept.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("request id = %q, want req-42", got)
	}
}
