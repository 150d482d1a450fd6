package services

import (
	"math"
	"testing"

	"github.com/Fleet-Tracker-Bus/fleet-tracker-school-managers/internal/domain"
)

func TestBuildDerivedCollectsHomesAndWalkStops(t *testing.T) {
	routes := []domain.Route{
		{
			ID:         "r1",
			DriverName: "Aigerim",
			Stops: []domain.Stop{
				{StudentID: "s1", StudentName: "Dana", Location: []float64{76.9, 43.2}},
				{StudentID: "s2", StudentName: "Olzhas", Location: []float64{76.91, 43.21}, RequiresWalk: true, WalkDistanceKM: 0.4},
				{StudentID: "s3", StudentName: "Kamila", Location: []float64{76.92, 43.22}},
			},
		},
		{
			ID:         "r2",
			DriverName: "Bolat",
			Stops: []domain.Stop{
				{StudentID: "s4", StudentName: "Timur", Location: []float64{76.95, 43.25}, RequiresWalk: true, WalkDistanceKM: 0.2},
				{StudentID: "s5", StudentName: "Aruzhan", Location: []float64{76.96, 43.26}},
			},
		},
	}

	d := BuildDerived(routes)

	if len(d.HomeLocations) != 5 {
		t.Fatalf("expected 5 home locations, got %d", len(d.HomeLocations))
	}
	// Home order follows route order then stop order.
	if d.HomeLocations[0][0] != 76.9 || d.HomeLocations[4][0] != 76.96 {
		t.Errorf("home locations out of order: first %v last %v",
			d.HomeLocations[0], d.HomeLocations[4])
	}

	if len(d.WalkingStops) != 2 {
		t.Fatalf("expected 2 walking stops, got %d", len(d.WalkingStops))
	}

	first := d.WalkingStops[0]
	if first.RouteID != "r1" || first.RouteIndex != 0 || first.DriverName != "Aigerim" {
		t.Errorf("unexpected route context on first walk entry: %+v", first)
	}
	if first.StopNumber != 2 {
		t.Errorf("expected 1-based stop number 2, got %d", first.StopNumber)
	}
	if first.Stop.StudentName != "Olzhas" || first.Stop.WalkDistanceKM != 0.4 {
		t.Errorf("walk entry lost stop data: %+v", first.Stop)
	}

	second := d.WalkingStops[1]
	if second.RouteID != "r2" || second.StopNumber != 1 || second.Stop.StudentName != "Timur" {
		t.Errorf("unexpected second walk entry: %+v", second)
	}
}

func TestBuildDerivedKeepsWalkStopsWithBadCoordinates(t *testing.T) {
	routes := []domain.Route{
		{
			ID:         "r1",
			DriverName: "Aigerim",
			Stops: []domain.Stop{
				{StudentID: "s1", StudentName: "Dana", Location: []float64{math.NaN(), 43.2}, RequiresWalk: true},
				{StudentID: "s2", StudentName: "Olzhas", Location: []float64{76.9}, RequiresWalk: true},
			},
		},
	}

	d := BuildDerived(routes)

	// Walk list membership only looks at the flag; a coordinate the
	// renderer would reject still belongs on the list.
	if len(d.WalkingStops) != 2 {
		t.Fatalf("expected 2 walking stops despite bad coordinates, got %d", len(d.WalkingStops))
	}
	if len(d.HomeLocations) != 2 {
		t.Fatalf("expected raw locations collected untouched, got %d", len(d.HomeLocations))
	}
}

func TestBuildDerivedEmptyInput(t *testing.T) {
	d := BuildDerived(nil)

	if d.WalkingStops == nil || d.HomeLocations == nil {
		t.Fatal("derived slices must be empty, not nil")
	}
	if len(d.WalkingStops) != 0 || len(d.HomeLocations) != 0 {
		t.Fatalf("expected empty derived state, got %d walks and %d homes",
			len(d.WalkingStops), len(d.HomeLocations))
	}
}
