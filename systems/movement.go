package systems

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// MoveResult is the outcome of committing one agent's move.
type MoveResult uint8

const (
	MoveStayed   MoveResult = iota // target was the current cell
	MoveMoved                      // relocated to the target
	MoveConflict                   // target taken this turn; stayed put
)

func (r MoveResult) String() string {
	switch r {
	case MoveStayed:
		return "stayed"
	case MoveMoved:
		return "moved"
	case MoveConflict:
		return "conflict"
	}
	return "unknown"
}

// MoveCounts tallies move outcomes for one phase.
type MoveCounts struct {
	Stayed    int
	Moved     int
	Conflicts int
	Rampages  int // agents that moved in destructive mode
}

// MovementSystem runs the move phase.
type MovementSystem struct {
	agents *ecs.Map3[components.Position, components.Health, components.Organism]
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(w *ecs.World) *MovementSystem {
	return &MovementSystem{
		agents: ecs.NewMap3[components.Position, components.Health, components.Organism](w),
	}
}

// Update commits every agent's decided move in order. Species in
// destructive mode turn their surroundings to swamp after moving.
func (s *MovementSystem) Update(order []ecs.Entity, g *Grid, turn *Turn, modes *[components.NumSpecies]BehaviorMode, rng *rand.Rand) MoveCounts {
	var counts MoveCounts
	for _, e := range order {
		pos, h, org := s.agents.Get(e)
		switch CommitMove(g, e, pos, h, org, turn) {
		case MoveStayed:
			counts.Stayed++
		case MoveMoved:
			counts.Moved++
		case MoveConflict:
			counts.Conflicts++
		}
		if modes[org.Species] == ModeDestructive {
			g.Rampage(*pos, rng)
			counts.Rampages++
		}
	}
	return counts
}

// CommitMove moves the agent to its decided target, applies the terrain
// effect of the cell it ends up on and queues its death if health ran out.
// An occupied target is not an error: the agent stays and its current cell
// is applied again.
func CommitMove(g *Grid, e ecs.Entity, pos *components.Position, h *components.Health, org *components.Organism, turn *Turn) MoveResult {
	dest := g.Clamp(org.Target)
	result := MoveStayed

	if dest != *pos {
		_, err := g.Place(e, dest)
		var occ *OccupiedError
		switch {
		case err == nil:
			g.Vacate(*pos)
			*pos = dest
			result = MoveMoved
		case errors.As(err, &occ):
			turn.Conflicts++
			result = MoveConflict
		default:
			panic(fmt.Sprintf("systems: unexpected placement error: %v", err))
		}
	}

	g.TerrainAt(*pos).ApplyTo(h, turn)
	org.Newborn = false

	if h.Dead() {
		turn.EnqueueDeath(e)
	}
	return result
}
