package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// Birth is a pending newborn waiting for materialization.
type Birth struct {
	Species  components.Species
	At       components.Position
	Capacity int    // floor of the parents' mean health
	ParentA  uint32 // organism IDs, for lineage tracking
	ParentB  uint32
}

// Turn is the handle agent code receives for deferred effects. It collects
// deaths, births and terrain updates so that no phase mutates the live
// collection while another phase iterates it.
type Turn struct {
	Number int

	deaths         []ecs.Entity
	births         []Birth
	terrainUpdates []components.Position
	scheduled      map[components.Position]struct{}
	reserved       map[components.Position]struct{}

	Conflicts     int
	BirthsDropped int // pairings with no free cell
}

// NewTurn creates an empty turn context.
func NewTurn(number int) *Turn {
	return &Turn{
		Number:    number,
		scheduled: make(map[components.Position]struct{}),
		reserved:  make(map[components.Position]struct{}),
	}
}

// EnqueueDeath queues an agent for removal during death reconciliation.
func (t *Turn) EnqueueDeath(e ecs.Entity) {
	t.deaths = append(t.deaths, e)
}

// Deaths returns the queued deaths in enqueue order.
func (t *Turn) Deaths() []ecs.Entity {
	return t.deaths
}

// EnqueueBirth queues a newborn and reserves its cell for the rest of the turn.
func (t *Turn) EnqueueBirth(b Birth) {
	t.births = append(t.births, b)
	t.reserved[b.At] = struct{}{}
}

// Births returns the queued births in enqueue order.
func (t *Turn) Births() []Birth {
	return t.births
}

// Reserved reports whether a pending birth already claimed p.
func (t *Turn) Reserved(p components.Position) bool {
	_, ok := t.reserved[p]
	return ok
}

// ScheduleTerrainUpdate queues p for the deferred terrain phase. A
// coordinate is queued at most once per turn.
func (t *Turn) ScheduleTerrainUpdate(p components.Position) {
	if _, ok := t.scheduled[p]; ok {
		return
	}
	t.scheduled[p] = struct{}{}
	t.terrainUpdates = append(t.terrainUpdates, p)
}

// TerrainUpdates returns the scheduled coordinates in scheduling order.
func (t *Turn) TerrainUpdates() []components.Position {
	return t.terrainUpdates
}
