package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// BreedingSystem runs the reproduce phase.
type BreedingSystem struct {
	agents  *ecs.Map3[components.Position, components.Health, components.Organism]
	species *SpeciesTable
	radius  int
}

// NewBreedingSystem creates a new breeding system searching partners within radius.
func NewBreedingSystem(w *ecs.World, species *SpeciesTable, radius int) *BreedingSystem {
	return &BreedingSystem{
		agents:  ecs.NewMap3[components.Position, components.Health, components.Organism](w),
		species: species,
		radius:  radius,
	}
}

// Update lets every agent in order try to pair. It returns the number of
// pairings; births are queued on the turn.
func (s *BreedingSystem) Update(order []ecs.Entity, g *Grid, turn *Turn, rng *rand.Rand) int {
	pairings := 0
	for _, e := range order {
		_, _, org := s.agents.Get(e)
		rate := s.species.Traits(org.Species).SuccessRate
		if AttemptReproduction(g, s.agents, e, s.radius, rate, turn, rng) {
			pairings++
		}
	}
	return pairings
}

// AttemptReproduction scans the neighborhood of e for a partner of the same
// species that is neither courting nor newborn. Each candidate gets one
// Bernoulli trial at rate; the first success pairs both agents for the rest
// of the turn and queues a birth on a random free cell of the neighborhood.
// A pairing with no free cell queues nothing. It reports whether e paired.
func AttemptReproduction(g *Grid, agents AgentLookup, e ecs.Entity, radius int, rate float64, turn *Turn, rng *rand.Rand) bool {
	pos, h, org := agents.Get(e)
	if org.Courting || org.Newborn {
		return false
	}

	area := g.Neighborhood(*pos, radius)
	for _, p := range area.Positions() {
		mate, ok := g.AgentAt(p)
		if !ok || mate == e {
			continue
		}
		_, mh, mo := agents.Get(mate)
		if mo.Courting || mo.Newborn || mo.Species != org.Species {
			continue
		}
		if rng.Float64() >= rate {
			continue
		}

		org.Courting = true
		mo.Courting = true

		free := freeCells(g, area, turn)
		if len(free) == 0 {
			turn.BirthsDropped++
			return true
		}
		turn.EnqueueBirth(Birth{
			Species:  org.Species,
			At:       free[rng.Intn(len(free))],
			Capacity: InheritedCapacity(h.Value, mh.Value),
			ParentA:  org.ID,
			ParentB:  mo.ID,
		})
		return true
	}
	return false
}

// InheritedCapacity is the capacity of a newborn: the floor of the parents'
// mean health.
func InheritedCapacity(a, b int) int {
	return (a + b) / 2
}

// freeCells lists empty cells of area that no pending birth has claimed.
func freeCells(g *Grid, area Rect, turn *Turn) []components.Position {
	empty := g.EmptyCells(area)
	free := empty[:0]
	for _, p := range empty {
		if !turn.Reserved(p) {
			free = append(free, p)
		}
	}
	return free
}
