package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

// testWorld bundles a grid with an ECS world holding agents placed on it.
type testWorld struct {
	world  *ecs.World
	agents *ecs.Map3[components.Position, components.Health, components.Organism]
	grid   *Grid
	nextID uint32
}

func newTestWorld(width, height int) *testWorld {
	w := ecs.NewWorld()
	return &testWorld{
		world:  w,
		agents: ecs.NewMap3[components.Position, components.Health, components.Organism](w),
		grid:   NewGrid(width, height, DefaultTerrainRules()),
	}
}

func (tw *testWorld) spawn(t *testing.T, sp components.Species, p components.Position, health int) ecs.Entity {
	t.Helper()
	tw.nextID++
	pos := p
	h := components.Health{Value: health, Max: 20}
	org := components.Organism{ID: tw.nextID, Species: sp, Target: p}
	e := tw.agents.NewEntity(&pos, &h, &org)
	if _, err := tw.grid.Place(e, p); err != nil {
		t.Fatalf("placing agent at %v: %v", p, err)
	}
	return e
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func testSpecies(t *testing.T) *SpeciesTable {
	t.Helper()
	table, err := NewSpeciesTable(config.Default())
	if err != nil {
		t.Fatalf("building species table: %v", err)
	}
	return table
}
