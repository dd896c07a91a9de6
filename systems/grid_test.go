package systems

import (
	"errors"
	"testing"

	"github.com/pthm-cable/ecosim/components"
)

func TestPlace_OccupiedByOther(t *testing.T) {
	tw := newTestWorld(5, 5)
	a := tw.spawn(t, components.SpeciesAnt, components.Position{X: 1, Y: 1}, 10)
	b := tw.spawn(t, components.SpeciesAnt, components.Position{X: 2, Y: 2}, 10)

	_, err := tw.grid.Place(b, components.Position{X: 1, Y: 1})
	var occ *OccupiedError
	if !errors.As(err, &occ) {
		t.Fatalf("expected OccupiedError, got %v", err)
	}
	if occ.Occupant != a {
		t.Errorf("expected occupant %v, got %v", a, occ.Occupant)
	}
	if got, _ := tw.grid.AgentAt(components.Position{X: 1, Y: 1}); got != a {
		t.Error("failed placement must not change the agent layer")
	}
}

func TestPlace_SameAgentSucceeds(t *testing.T) {
	tw := newTestWorld(5, 5)
	p := components.Position{X: 3, Y: 3}
	a := tw.spawn(t, components.SpeciesCicada, p, 10)

	if _, err := tw.grid.Place(a, p); err != nil {
		t.Errorf("re-placing an agent on its own cell should succeed, got %v", err)
	}
}

func TestPlace_ClampsBeforeOccupancyCheck(t *testing.T) {
	tw := newTestWorld(4, 3)
	a := tw.spawn(t, components.SpeciesAnt, components.Position{X: 3, Y: 2}, 10)
	b := tw.spawn(t, components.SpeciesAnt, components.Position{X: 0, Y: 0}, 10)

	at, err := tw.grid.Place(b, components.Position{X: 99, Y: 99})
	if at != (components.Position{X: 3, Y: 2}) {
		t.Errorf("expected clamped coordinate (3,2), got %v", at)
	}
	var occ *OccupiedError
	if !errors.As(err, &occ) || occ.Occupant != a {
		t.Errorf("expected conflict with the agent in the corner, got %v", err)
	}
}

func TestClamp(t *testing.T) {
	g := NewGrid(10, 8, DefaultTerrainRules())

	tests := []struct {
		in, want components.Position
	}{
		{components.Position{X: -3, Y: 4}, components.Position{X: 0, Y: 4}},
		{components.Position{X: 12, Y: -1}, components.Position{X: 9, Y: 0}},
		{components.Position{X: 5, Y: 8}, components.Position{X: 5, Y: 7}},
		{components.Position{X: 2, Y: 3}, components.Position{X: 2, Y: 3}},
	}
	for _, tt := range tests {
		if got := g.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNeighborhood_ClippedAtEdges(t *testing.T) {
	g := NewGrid(10, 10, DefaultTerrainRules())

	tests := []struct {
		name     string
		at       components.Position
		radius   int
		want     Rect
		wantArea int
	}{
		{"center", components.Position{X: 5, Y: 5}, 1, Rect{4, 4, 7, 7}, 9},
		{"origin corner", components.Position{X: 0, Y: 0}, 1, Rect{0, 0, 2, 2}, 4},
		{"far corner", components.Position{X: 9, Y: 9}, 1, Rect{8, 8, 10, 10}, 4},
		{"top edge", components.Position{X: 4, Y: 0}, 1, Rect{3, 0, 6, 2}, 6},
		{"radius 2 near edge", components.Position{X: 1, Y: 5}, 2, Rect{0, 3, 4, 8}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Neighborhood(tt.at, tt.radius)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if got.Area() != tt.wantArea || len(got.Positions()) != tt.wantArea {
				t.Errorf("expected %d cells, got area %d", tt.wantArea, got.Area())
			}
		})
	}
}

func TestEmptyCells(t *testing.T) {
	tw := newTestWorld(3, 3)
	tw.spawn(t, components.SpeciesAnt, components.Position{X: 0, Y: 0}, 10)
	tw.spawn(t, components.SpeciesAnt, components.Position{X: 1, Y: 1}, 10)

	empty := tw.grid.EmptyCells(tw.grid.Neighborhood(components.Position{X: 0, Y: 0}, 1))
	if len(empty) != 2 {
		t.Fatalf("expected 2 empty cells, got %v", empty)
	}
	for _, p := range empty {
		if _, ok := tw.grid.AgentAt(p); ok {
			t.Errorf("cell %v reported empty but is occupied", p)
		}
	}
}

func TestVacate(t *testing.T) {
	tw := newTestWorld(3, 3)
	p := components.Position{X: 2, Y: 1}
	tw.spawn(t, components.SpeciesMogwai, p, 10)

	tw.grid.Vacate(p)
	if _, ok := tw.grid.AgentAt(p); ok {
		t.Error("expected cell to be empty after Vacate")
	}
	if len(tw.grid.Occupants()) != 0 {
		t.Error("expected no occupants after Vacate")
	}
}

func TestNewGrid_TerrainCoverage(t *testing.T) {
	g := NewGrid(7, 4, DefaultTerrainRules())
	if err := g.CheckTerrain(); err != nil {
		t.Fatal(err)
	}
	counts := g.TerrainCounts()
	if counts[TerrainGrassland] != 28 {
		t.Errorf("expected 28 grassland cells, got %d", counts[TerrainGrassland])
	}
}
