package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/ecosim/components"
)

func TestDecide_ResetsCourtingAndClamps(t *testing.T) {
	g := NewGrid(6, 6, DefaultTerrainRules())
	table := testSpecies(t)
	rng := rand.New(rand.NewSource(1))

	for _, sp := range components.AllSpecies() {
		for i := 0; i < 200; i++ {
			org := components.Organism{Species: sp, Courting: true}
			p := pos(i%6, (i/6)%6)
			Decide(&org, p, components.Health{Value: 10, Max: 20}, table.Traits(sp), g, rng)

			if org.Courting {
				t.Fatalf("%v: decide must reset courting", sp)
			}
			if !g.InBounds(org.Target) {
				t.Fatalf("%v: target %v out of bounds", sp, org.Target)
			}
		}
	}
}

func TestDecide_LowHealthRetreatsHome(t *testing.T) {
	g := NewGrid(40, 30, DefaultTerrainRules())
	table := testSpecies(t)

	tests := []struct {
		species components.Species
		want    components.Position
	}{
		{components.SpeciesAnt, pos(16, 17)},
	}
	for _, tt := range tests {
		org := components.Organism{Species: tt.species}
		Decide(&org, pos(20, 20), components.Health{Value: 2, Max: 20}, table.Traits(tt.species), g, testRNG())
		if org.Target != tt.want {
			t.Errorf("%v: expected retreat to %v, got %v", tt.species, tt.want, org.Target)
		}
	}
}

func TestDecide_AxisWalkMovesOneAxis(t *testing.T) {
	g := NewGrid(40, 30, DefaultTerrainRules())
	tr := testSpecies(t).Traits(components.SpeciesAnt)
	rng := rand.New(rand.NewSource(5))
	start := pos(20, 15)

	for i := 0; i < 500; i++ {
		org := components.Organism{Species: components.SpeciesAnt}
		Decide(&org, start, components.Health{Value: 10, Max: 20}, tr, g, rng)
		dx, dy := org.Target.X-start.X, org.Target.Y-start.Y
		if dx != 0 && dy != 0 {
			t.Fatalf("axis walk moved diagonally by (%d,%d)", dx, dy)
		}
		if start.Chebyshev(org.Target) > tr.Step {
			t.Fatalf("step %v exceeds %d", org.Target, tr.Step)
		}
	}
}

func TestDecide_IdleSpeciesOftenStays(t *testing.T) {
	g := NewGrid(40, 30, DefaultTerrainRules())
	tr := testSpecies(t).Traits(components.SpeciesCicada)
	rng := rand.New(rand.NewSource(9))
	start := pos(20, 15)

	stayed := 0
	const n = 3000
	for i := 0; i < n; i++ {
		org := components.Organism{Species: components.SpeciesCicada}
		Decide(&org, start, components.Health{Value: 10, Max: 20}, tr, g, rng)
		if org.Target == start {
			stayed++
		}
	}
	// Idle chance plus zero-length steps
	if ratio := float64(stayed) / n; ratio < 0.6 || ratio > 0.8 {
		t.Errorf("expected cicadas to stay about 70%% of the time, got %.2f", ratio)
	}
}

func TestDecide_FreeWalkBounded(t *testing.T) {
	g := NewGrid(40, 30, DefaultTerrainRules())
	tr := testSpecies(t).Traits(components.SpeciesMogwai)
	rng := rand.New(rand.NewSource(2))
	start := pos(20, 15)

	diagonal := false
	for i := 0; i < 500; i++ {
		org := components.Organism{Species: components.SpeciesMogwai}
		Decide(&org, start, components.Health{Value: 10, Max: 20}, tr, g, rng)
		if start.Chebyshev(org.Target) > tr.Step {
			t.Fatalf("free walk step to %v exceeds %d", org.Target, tr.Step)
		}
		if org.Target.X != start.X && org.Target.Y != start.Y {
			diagonal = true
		}
	}
	if !diagonal {
		t.Error("free walk never moved diagonally")
	}
}

// ---------- species table ----------

func TestSpeciesTable_FromDefaults(t *testing.T) {
	table := testSpecies(t)

	if got := table.Traits(components.SpeciesAnt).SuccessRate; got != 0.4 {
		t.Errorf("ant should inherit the default success rate, got %v", got)
	}
	if got := table.Traits(components.SpeciesMogwai).SuccessRate; got != 0.8 {
		t.Errorf("mogwai should override the success rate, got %v", got)
	}
	if table.Traits(components.SpeciesMogwai).Walk != WalkFree {
		t.Error("mogwai should walk freely")
	}
}

func TestSpeciesTraits_Newborns(t *testing.T) {
	table := testSpecies(t)
	rng := testRNG()

	mog := table.Traits(components.SpeciesMogwai)
	if got := mog.NewbornMax(8); got != 1000000 {
		t.Errorf("mogwai capacity should stay fixed, got %d", got)
	}

	ant := table.Traits(components.SpeciesAnt)
	if got := ant.NewbornMax(8); got != 8 {
		t.Errorf("ant capacity should be inherited, got %d", got)
	}
	for i := 0; i < 100; i++ {
		h := ant.RollHealth(8, rng)
		if h.Max != 8 || h.Value < 4 || h.Value > 8 {
			t.Fatalf("rolled health %d/%d outside [4, 8]", h.Value, h.Max)
		}
	}

	cicada := table.Traits(components.SpeciesCicada)
	if h := cicada.RollHealth(8, rng); h.Value != 8 {
		t.Errorf("cicadas start at full health, got %d", h.Value)
	}
}

func TestSpeciesTable_Pick(t *testing.T) {
	table := testSpecies(t)
	rng := rand.New(rand.NewSource(4))

	var counts [components.NumSpecies]int
	for i := 0; i < 10000; i++ {
		counts[table.Pick(rng)]++
	}
	if counts[components.SpeciesMogwai] > counts[components.SpeciesAnt] {
		t.Errorf("mogwai weight is lowest but it was picked most: %v", counts)
	}
	for sp, n := range counts {
		if n == 0 {
			t.Errorf("species %v never picked", components.Species(sp))
		}
	}
}
