package scene

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

// Snapshot is the full scene in wire form: what a late joining client
// needs before it can follow the op stream.
type Snapshot struct {
	Markers *geojson.FeatureCollection `json:"markers"`
	Lines   *geojson.FeatureCollection `json:"lines"`
	Fit     *FitView                   `json:"fit,omitempty"`
}

// FitView is the recorded viewport frame.
type FitView struct {
	// Bounds is [west, south, east, north].
	Bounds  [4]float64 `json:"bounds"`
	Padding int        `json:"padding"`
	MaxZoom float64    `json:"max_zoom"`
}

type visibilityView struct {
	RouteIndex int  `json:"route_index"`
	Visible    bool `json:"visible"`
}

func newFitView(b orb.Bound, opts ports.FitOptions) FitView {
	return FitView{
		Bounds:  [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]},
		Padding: opts.Padding,
		MaxZoom: opts.MaxZoom,
	}
}

func markerFeature(m ports.Marker) *geojson.Feature {
	f := geojson.NewFeature(m.At)
	f.ID = m.ID
	f.Properties = geojson.Properties{
		"id":       m.ID,
		"route_id": m.RouteID,
		"kind":     string(m.Kind),
		"color":    m.Style.Color,
		"label":    m.Style.Label,
		"outlined": m.Style.Outlined,
		"priority": m.Style.Priority,
		"popup":    m.Popup,
	}
	return f
}

func lineFeature(l ports.LineLayer, visible bool) *geojson.Feature {
	f := geojson.NewFeature(l.Line)
	f.ID = l.ID
	f.Properties = geojson.Properties{
		"id":          l.ID,
		"route_id":    l.RouteID,
		"route_index": l.RouteIndex,
		"color":       l.Color,
		"width":       l.Width,
		"visible":     visible,
	}
	return f
}

// Snapshot renders the current scene. A disposed scene snapshots as
// empty collections.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	markers := geojson.NewFeatureCollection()
	for _, m := range s.markers {
		markers.Append(markerFeature(m))
	}

	indexes := make([]int, 0, len(s.layers))
	for idx := range s.layers {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	lines := geojson.NewFeatureCollection()
	for _, idx := range indexes {
		entry := s.layers[idx]
		lines.Append(lineFeature(entry.layer, entry.visible))
	}

	var fit *FitView
	if s.fit != nil {
		v := newFitView(s.fit.bound, s.fit.opts)
		fit = &v
	}

	return Snapshot{Markers: markers, Lines: lines, Fit: fit}
}
