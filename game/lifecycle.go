package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// spawnInitialPopulation places the founders on distinct random cells.
func (e *Ecosystem) spawnInitialPopulation() {
	cells := e.grid.EmptyCells(e.grid.Bounds())
	e.rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

	for _, at := range cells[:e.cfg.Population.Initial] {
		sp := e.species.Pick(e.rng)
		tr := e.species.Traits(sp)
		h := tr.RollHealth(tr.MaxHealth, e.rng)

		ent := e.spawnAgent(sp, at, h, false)
		_, _, org := e.agents.Get(ent)
		e.lifetimeTracker.RegisterFounder(org.ID, sp, h.Value)
	}
}

// spawnAgent creates an agent entity and places it on the grid. The cell
// must be free; initial placement skips terrain effects.
func (e *Ecosystem) spawnAgent(sp components.Species, at components.Position, h components.Health, newborn bool) ecs.Entity {
	pos := at
	org := components.Organism{
		ID:      e.nextID,
		Species: sp,
		Newborn: newborn,
		Target:  at,
	}
	e.nextID++

	ent := e.agents.NewEntity(&pos, &h, &org)
	if _, err := e.grid.Place(ent, at); err != nil {
		panic(fmt.Sprintf("game: invariant: spawning %s: %v", sp, err))
	}
	e.live = append(e.live, ent)
	e.counts[sp]++
	return ent
}

// reconcileDeaths removes every queued agent from the grid and the arena.
// A death on grassland schedules the cell to become a food patch.
func (e *Ecosystem) reconcileDeaths(turn *systems.Turn) int {
	queued := turn.Deaths()
	if len(queued) == 0 {
		return 0
	}

	dead := make(map[ecs.Entity]struct{}, len(queued))
	for _, ent := range queued {
		if _, seen := dead[ent]; seen || !e.world.Alive(ent) {
			continue
		}
		dead[ent] = struct{}{}

		pos, _, org := e.agents.Get(ent)
		at := *pos
		sp := org.Species

		if e.grid.TerrainAt(at).Kind == systems.TerrainGrassland {
			turn.ScheduleTerrainUpdate(at)
		}
		e.grid.Vacate(at)

		lifespan := turn.Number
		if stats := e.lifetimeTracker.Remove(org.ID); stats != nil {
			lifespan = turn.Number - stats.BirthTurn
		}
		e.collector.RecordDeath(sp, lifespan)
		slog.Debug("death", "turn", turn.Number, "id", org.ID, "species", sp.String(), "x", at.X, "y", at.Y)

		e.world.RemoveEntity(ent)
		e.counts[sp]--
		if e.counts[sp] == 0 {
			e.events.Add(telemetry.NewExtinctionEvent(turn.Number, sp))
			slog.Info("extinction", "turn", turn.Number, "species", sp.String())
		}
	}

	// Second pass: compact the live collection
	live := e.live[:0]
	for _, ent := range e.live {
		if _, ok := dead[ent]; !ok {
			live = append(live, ent)
		}
	}
	e.live = live

	return len(dead)
}

// materializeBirths inserts every queued newborn. Birth cells were reserved
// during the reproduce phase, so placement cannot collide.
func (e *Ecosystem) materializeBirths(turn *systems.Turn) int {
	for _, b := range turn.Births() {
		tr := e.species.Traits(b.Species)
		h := tr.RollHealth(tr.NewbornMax(b.Capacity), e.rng)

		ent := e.spawnAgent(b.Species, b.At, h, true)
		_, _, org := e.agents.Get(ent)

		e.lifetimeTracker.RegisterBirth(org.ID, b.Species, turn.Number, b.ParentA, b.ParentB, h.Value)
		e.collector.RecordBirth(b.Species)
		slog.Debug("birth", "turn", turn.Number, "id", org.ID, "species", b.Species.String(),
			"x", b.At.X, "y", b.At.Y, "capacity", h.Max)
	}
	if turn.BirthsDropped > 0 {
		slog.Debug("birth_dropped", "turn", turn.Number, "count", turn.BirthsDropped)
	}
	return len(turn.Births())
}

// applyTerrainUpdates runs the deferred transitions queued this turn.
func (e *Ecosystem) applyTerrainUpdates(turn *systems.Turn) int {
	changed := 0
	for _, p := range turn.TerrainUpdates() {
		if e.grid.AdvanceTerrain(p, e.rng) {
			changed++
		}
	}
	return changed
}
