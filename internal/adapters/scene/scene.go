package scene

import (
	"errors"
	"sync"

	"github.com/paulmach/orb"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// ErrDisposed is returned by every primitive operation after Dispose.
// Renderers treat it as terminal: the map this scene backed is gone.
var ErrDisposed = errors.New("scene: disposed")

// Scene op types, mirrored on the WebSocket stream.
const (
	OpMarkerAdded    = "marker-added"
	OpLineAdded      = "line-added"
	OpLineVisibility = "line-visibility"
	OpFitBounds      = "fit-bounds"
	OpSceneReset     = "scene-reset"
)

// Op is one scene mutation in wire form.
type Op struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type lineEntry struct {
	layer   ports.LineLayer
	visible bool
}

type fitState struct {
	bound orb.Bound
	opts  ports.FitOptions
}

// Scene is the in-memory map surface: the authoritative store of every
// placed primitive. Map clients mirror it by replaying the op stream on
// top of a snapshot.
//
// Scene is safe for concurrent use.
type Scene struct {
	mu       sync.Mutex
	disposed bool
	markers  []ports.Marker
	layers   map[int]*lineEntry
	fit      *fitState

	// notify receives every op while the scene lock is held; the sink
	// must not block and must not call back into the scene.
	notify func(Op)
}

func New(notify func(Op)) *Scene {
	return &Scene{
		layers: make(map[int]*lineEntry),
		notify: notify,
	}
}

func (s *Scene) emit(op Op) {
	if s.notify != nil {
		s.notify(op)
	}
}

// Reset discards all primitives and tells clients to clear. The scene
// stays usable; Load calls this at the start of each successful cycle.
func (s *Scene) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}

	s.markers = nil
	s.layers = make(map[int]*lineEntry)
	s.fit = nil

	s.emit(Op{Type: OpSceneReset})

	return nil
}

func (s *Scene) AddMarker(m ports.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}

	s.markers = append(s.markers, m)

	s.emit(Op{Type: OpMarkerAdded, Payload: markerFeature(m)})

	return nil
}

func (s *Scene) AddLineLayer(l ports.LineLayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}

	// One layer per route index; a second add replaces the first.
	s.layers[l.RouteIndex] = &lineEntry{layer: l, visible: true}

	s.emit(Op{Type: OpLineAdded, Payload: lineFeature(l, true)})

	return nil
}

func (s *Scene) SetLineVisibility(routeIndex int, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}

	entry, ok := s.layers[routeIndex]
	if !ok {
		// Routes whose directions lookup failed have no layer.
		return nil
	}

	if entry.visible == visible {
		return nil
	}
	entry.visible = visible

	s.emit(Op{Type: OpLineVisibility, Payload: visibilityView{
		RouteIndex: routeIndex,
		Visible:    visible,
	}})

	return nil
}

func (s *Scene) FitBounds(b orb.Bound, opts ports.FitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}

	s.fit = &fitState{bound: b, opts: opts}

	s.emit(Op{Type: OpFitBounds, Payload: newFitView(b, opts)})

	return nil
}

// Dispose tears the scene down. Idempotent; all later operations return
// ErrDisposed so stragglers cannot touch a dead map.
func (s *Scene) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	s.disposed = true
	s.markers = nil
	s.layers = nil
	s.fit = nil
}

// Disposed reports whether Dispose has run.
func (s *Scene) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
