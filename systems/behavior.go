package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// AgentLookup resolves an entity to its agent components.
// *ecs.Map3[Position, Health, Organism] satisfies it.
type AgentLookup interface {
	Get(e ecs.Entity) (*components.Position, *components.Health, *components.Organism)
}

// BehaviorSystem runs the decide phase.
type BehaviorSystem struct {
	agents  *ecs.Map3[components.Position, components.Health, components.Organism]
	species *SpeciesTable
}

// NewBehaviorSystem creates a new behavior system.
func NewBehaviorSystem(w *ecs.World, species *SpeciesTable) *BehaviorSystem {
	return &BehaviorSystem{
		agents:  ecs.NewMap3[components.Position, components.Health, components.Organism](w),
		species: species,
	}
}

// Update records an intended destination for every agent in order.
// It reads the grid but never mutates it.
func (s *BehaviorSystem) Update(order []ecs.Entity, g *Grid, rng *rand.Rand) {
	for _, e := range order {
		pos, h, org := s.agents.Get(e)
		Decide(org, *pos, *h, s.species.Traits(org.Species), g, rng)
	}
}

// Decide resets the courting flag and stores the clamped target.
func Decide(org *components.Organism, pos components.Position, h components.Health, tr *SpeciesTraits, g *Grid, rng *rand.Rand) {
	org.Courting = false
	org.Target = g.Clamp(target(pos, h, tr, g, rng))
}

func target(pos components.Position, h components.Health, tr *SpeciesTraits, g *Grid, rng *rand.Rand) components.Position {
	if tr.IdleChance > 0 && rng.Float64() < tr.IdleChance {
		return pos
	}

	switch tr.Walk {
	case WalkFree:
		return pos.Add(stepDelta(tr.Step, rng), stepDelta(tr.Step, rng))

	default:
		// Weak agents head back toward the origin corner
		if tr.HomeDivisor > 0 && h.Value < tr.LowHealth {
			w, hh := g.Dimensions()
			return pos.Add(-w/tr.HomeDivisor, -hh/tr.HomeDivisor)
		}
		d := stepDelta(tr.Step, rng)
		if rng.Intn(3) != 0 {
			return pos.Add(d, 0)
		}
		return pos.Add(0, d)
	}
}

// stepDelta returns a uniform offset in [-step, step].
func stepDelta(step int, rng *rand.Rand) int {
	if step <= 0 {
		return 0
	}
	return rng.Intn(2*step+1) - step
}
