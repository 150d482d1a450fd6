package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/paulmach/orb"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/ports"
)

const (
	fitPadding = 20
	fitMaxZoom = 15
	lineWidth  = 4.0

	defaultLookups = 4
)

// Marker stacking order, low to high.
const (
	priorityHome = iota
	prioritySchool
	priorityDriver
	priorityStop
)

type RenderRequest struct {
	Routes  []domain.Route
	Derived Derived
	// Lookups caps concurrent directions requests; zero or negative
	// selects the default of 4.
	Lookups int
}

// RenderReport counts what one render cycle placed and skipped.
type RenderReport struct {
	HomeMarkers   int
	DriverMarkers int
	StopMarkers   int
	SchoolMarkers int
	// InvalidCoords counts structurally malformed coordinate pairs
	// (wrong length or non-finite entries) skipped across all kinds.
	InvalidCoords int
	LinesDrawn    int
	LinesSkipped  int
	// BoundsPoints is how many placed coordinates extended the viewport
	// bound before the fit.
	BoundsPoints int
}

// boundsAccumulator widens an orb.Bound point by point. The count keeps
// the zero Bound from being mistaken for a real extent.
type boundsAccumulator struct {
	bound orb.Bound
	count int
}

func (b *boundsAccumulator) extend(p orb.Point) {
	if b.count == 0 {
		b.bound = orb.Bound{Min: p, Max: p}
	} else {
		b.bound = b.bound.Extend(p)
	}
	b.count++
}

type lineRequest struct {
	index     int
	routeID   string
	color     string
	waypoints []domain.Coordinates
}

type lineResult struct {
	lineRequest
	geom ports.RouteGeometry
	err  error
}

// RenderRoutes projects the route set onto the map surface, applied
// once per successful load:
//
//  1. Home markers for every structurally valid home coordinate.
//  2. Per route: a driver marker at the first valid stop, numbered stop
//     markers (outlined when the student walks), and a school marker at
//     the final destination, all in the route's palette color.
//  3. One viewport fit over every placed coordinate.
//  4. Road-following line layers resolved concurrently per route.
//
// Malformed coordinates and failed directions lookups degrade that
// element only and never abort the cycle; surface errors are terminal
// because they mean the map itself is going away.
func RenderRoutes(
	ctx context.Context,
	req RenderRequest,
	surface ports.MapSurface,
	directions ports.DirectionsProvider,
) (*RenderReport, error) {
	report := &RenderReport{}
	var bounds boundsAccumulator

	for i, raw := range req.Derived.HomeLocations {
		coord, err := domain.ParseCoordinates(raw)
		if err != nil {
			report.InvalidCoords++
			log.Printf("op=render kind=home index=%d err=%v", i, err)
			continue
		}

		marker := ports.Marker{
			ID:    fmt.Sprintf("home-%d", i),
			Kind:  ports.MarkerHome,
			At:    coord.Point(),
			Style: ports.MarkerStyle{Priority: priorityHome},
		}
		if err := surface.AddMarker(marker); err != nil {
			return report, fmt.Errorf("render: add home marker: %w", err)
		}

		bounds.extend(coord.Point())
		report.HomeMarkers++
	}

	pending := make([]lineRequest, 0, len(req.Routes))

	for ri, route := range req.Routes {
		color := RouteColor(ri)
		waypoints := make([]domain.Coordinates, 0, len(route.Stops)+1)
		placedDriver := false

		for si, stop := range route.Stops {
			n := si + 1

			coord, err := domain.ParseCoordinates(stop.Location)
			if err != nil {
				report.InvalidCoords++
				ige := &domain.InvalidGeometryError{RouteID: route.ID, Stop: n, Err: err}
				log.Printf("op=render kind=stop err=%v", ige)
				continue
			}

			if !placedDriver {
				marker := ports.Marker{
					ID:      route.ID + "-driver",
					RouteID: route.ID,
					Kind:    ports.MarkerDriver,
					At:      coord.Point(),
					Style:   ports.MarkerStyle{Color: color, Priority: priorityDriver},
				}
				if err := surface.AddMarker(marker); err != nil {
					return report, fmt.Errorf("render: add driver marker: %w", err)
				}

				bounds.extend(coord.Point())
				report.DriverMarkers++
				placedDriver = true
			}

			marker := ports.Marker{
				ID:      fmt.Sprintf("%s-stop-%d", route.ID, n),
				RouteID: route.ID,
				Kind:    ports.MarkerStop,
				At:      coord.Point(),
				Style: ports.MarkerStyle{
					Color:    color,
					Label:    strconv.Itoa(n),
					Outlined: stop.RequiresWalk,
					Priority: priorityStop,
				},
				Popup: fmt.Sprintf("#%d %s", n, stop.StudentName),
			}
			if err := surface.AddMarker(marker); err != nil {
				return report, fmt.Errorf("render: add stop marker: %w", err)
			}

			bounds.extend(coord.Point())
			report.StopMarkers++
			waypoints = append(waypoints, coord)
		}

		coord, err := domain.ParseCoordinates(route.Final.Location)
		if err != nil {
			report.InvalidCoords++
			ige := &domain.InvalidGeometryError{RouteID: route.ID, Err: err}
			log.Printf("op=render kind=school err=%v", ige)
		} else {
			marker := ports.Marker{
				ID:      route.ID + "-school",
				RouteID: route.ID,
				Kind:    ports.MarkerSchool,
				At:      coord.Point(),
				Style:   ports.MarkerStyle{Color: color, Label: "School", Priority: prioritySchool},
			}
			if err := surface.AddMarker(marker); err != nil {
				return report, fmt.Errorf("render: add school marker: %w", err)
			}

			bounds.extend(coord.Point())
			report.SchoolMarkers++
			waypoints = append(waypoints, coord)
		}

		if len(waypoints) < 2 {
			report.LinesSkipped++
			log.Printf("op=render.line route_id=%s reason=not_enough_waypoints n=%d", route.ID, len(waypoints))
			continue
		}

		pending = append(pending, lineRequest{
			index:     ri,
			routeID:   route.ID,
			color:     color,
			waypoints: waypoints,
		})
	}

	// One fit per cycle, covering markers only. Line geometry follows
	// roads between markers and cannot widen the extent meaningfully.
	if bounds.count > 0 {
		opts := ports.FitOptions{Padding: fitPadding, MaxZoom: fitMaxZoom}
		if err := surface.FitBounds(bounds.bound, opts); err != nil {
			return report, fmt.Errorf("render: fit bounds: %w", err)
		}
	}
	report.BoundsPoints = bounds.count

	if len(pending) == 0 {
		return report, nil
	}

	lookups := req.Lookups
	if lookups <= 0 {
		lookups = defaultLookups
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, lookups)
	resultsCh := make(chan lineResult, len(pending))
	var wg sync.WaitGroup

	for _, p := range pending {
		wg.Add(1)
		go func(p lineRequest) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			geom, err := directions.GetRouteLine(ctx, p.waypoints)
			resultsCh <- lineResult{lineRequest: p, geom: geom, err: err}
		}(p)
	}

	wg.Wait()
	close(resultsCh)

	for res := range resultsCh {
		if res.err != nil {
			report.LinesSkipped++
			log.Printf("op=render.line route_id=%s err=%v", res.routeID, res.err)
			continue
		}
		if res.geom.Empty() {
			report.LinesSkipped++
			log.Printf("op=render.line route_id=%s reason=empty_geometry", res.routeID)
			continue
		}

		layer := ports.LineLayer{
			ID:         res.routeID + "-line",
			RouteID:    res.routeID,
			RouteIndex: res.index,
			Color:      res.color,
			Width:      lineWidth,
			Line:       res.geom.Line,
		}
		if err := surface.AddLineLayer(layer); err != nil {
			return report, fmt.Errorf("render: add line layer: %w", err)
		}

		report.LinesDrawn++
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	return report, nil
}
