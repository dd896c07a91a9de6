package game

import (
	"fmt"
	"strings"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// AgentView is a read-only copy of an agent for renderers and tests.
type AgentView struct {
	ID        uint32
	Species   components.Species
	Coords    components.Position
	Health    int
	MaxHealth int
	IsDead    bool
	Newborn   bool
	Courting  bool
}

// Dimensions returns the grid size in cells.
func (e *Ecosystem) Dimensions() (width, height int) {
	return e.grid.Dimensions()
}

// Turn returns the number of completed turns.
func (e *Ecosystem) Turn() int {
	return e.turn
}

// TurnsRemaining returns the remaining turn budget.
func (e *Ecosystem) TurnsRemaining() int {
	return e.turnsRemaining
}

// Population returns the current per-species counts.
func (e *Ecosystem) Population() telemetry.PopulationSnapshot {
	return telemetry.NewPopulationSnapshot(e.turn, e.counts)
}

// PopulationHistory returns one snapshot per completed turn, oldest first.
func (e *Ecosystem) PopulationHistory() []telemetry.PopulationSnapshot {
	out := make([]telemetry.PopulationSnapshot, len(e.history))
	copy(out, e.history)
	return out
}

// LiveAgents returns every agent currently on the grid, in action order.
func (e *Ecosystem) LiveAgents() []AgentView {
	out := make([]AgentView, 0, len(e.live))
	for _, ent := range e.live {
		out = append(out, e.view(ent))
	}
	return out
}

// AgentAt returns the agent standing on p, if any.
func (e *Ecosystem) AgentAt(p components.Position) (AgentView, bool) {
	if !e.grid.InBounds(p) {
		return AgentView{}, false
	}
	ent, ok := e.grid.AgentAt(p)
	if !ok {
		return AgentView{}, false
	}
	return e.view(ent), true
}

func (e *Ecosystem) view(ent ecs.Entity) AgentView {
	pos, h, org := e.agents.Get(ent)
	return AgentView{
		ID:        org.ID,
		Species:   org.Species,
		Coords:    *pos,
		Health:    h.Value,
		MaxHealth: h.Max,
		IsDead:    h.Dead(),
		Newborn:   org.Newborn,
		Courting:  org.Courting,
	}
}

// TerrainAt returns the terrain view of an in-bounds cell.
func (e *Ecosystem) TerrainAt(p components.Position) systems.TerrainView {
	return e.grid.TerrainAt(p).View()
}

// TerrainCounts returns the number of cells of each terrain kind.
func (e *Ecosystem) TerrainCounts() [systems.NumTerrainKinds]int {
	return e.grid.TerrainCounts()
}

// RecentEvents returns the latest global events, oldest first.
func (e *Ecosystem) RecentEvents() []telemetry.Event {
	return e.events.Recent()
}

// String renders the grid as text: one letter per agent, terrain otherwise.
func (e *Ecosystem) String() string {
	w, h := e.grid.Dimensions()
	var sb strings.Builder
	sb.Grow((w + 1) * h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := components.Position{X: x, Y: y}
			if ent, ok := e.grid.AgentAt(p); ok {
				_, _, org := e.agents.Get(ent)
				sb.WriteRune(org.Species.Rune())
				continue
			}
			switch e.grid.TerrainAt(p).Kind {
			case systems.TerrainSwamp:
				sb.WriteByte('~')
			case systems.TerrainFoodPatch:
				sb.WriteByte('*')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CheckInvariants verifies the structural guarantees that hold between turns:
// every live agent occupies exactly the cell it records, no two agents share
// a cell, health stays within [1, max], species counts agree with the arena,
// and the terrain layer covers every coordinate.
func (e *Ecosystem) CheckInvariants() error {
	seen := make(map[ecs.Entity]struct{}, len(e.live))
	var counts [components.NumSpecies]int

	for _, ent := range e.live {
		if _, dup := seen[ent]; dup {
			return fmt.Errorf("%w: entity %v listed twice", ErrInvariant, ent)
		}
		seen[ent] = struct{}{}

		if !e.world.Alive(ent) {
			return fmt.Errorf("%w: removed entity %v still listed", ErrInvariant, ent)
		}
		pos, h, org := e.agents.Get(ent)
		if !e.grid.InBounds(*pos) {
			return fmt.Errorf("%w: agent %d out of bounds at %v", ErrInvariant, org.ID, *pos)
		}
		if at, ok := e.grid.AgentAt(*pos); !ok || at != ent {
			return fmt.Errorf("%w: agent %d not on its cell %v", ErrInvariant, org.ID, *pos)
		}
		if h.Value < 1 || h.Value > h.Max {
			return fmt.Errorf("%w: agent %d health %d outside [1, %d]", ErrInvariant, org.ID, h.Value, h.Max)
		}
		counts[org.Species]++
	}

	if n := len(e.grid.Occupants()); n != len(e.live) {
		return fmt.Errorf("%w: %d occupied cells for %d agents", ErrInvariant, n, len(e.live))
	}
	if counts != e.counts {
		return fmt.Errorf("%w: species counts %v, tracked %v", ErrInvariant, counts, e.counts)
	}

	arena := 0
	query := e.agentFilter.Query()
	for query.Next() {
		arena++
	}
	if arena != len(e.live) {
		return fmt.Errorf("%w: %d entities in arena, %d live", ErrInvariant, arena, len(e.live))
	}

	if err := e.grid.CheckTerrain(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return nil
}
