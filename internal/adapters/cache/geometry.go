package cache

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Cached lines are stored as GeoJSON text so the rows stay readable
// and portable between the SQLite and Postgres backends.

func encodeLine(line orb.LineString) ([]byte, error) {
	data, err := geojson.NewGeometry(line).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode line geometry: %w", err)
	}
	return data, nil
}

func decodeLine(data []byte) (orb.LineString, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("decode line geometry: %w", err)
	}

	line, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("cached geometry is %s, want LineString", g.Type)
	}
	return line, nil
}
