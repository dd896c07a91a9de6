package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

func TestCommitMove_ConflictResolution(t *testing.T) {
	tw := newTestWorld(3, 1)
	a := tw.spawn(t, components.SpeciesAnt, pos(0, 0), 10)
	b := tw.spawn(t, components.SpeciesAnt, pos(2, 0), 10)
	turn := NewTurn(0)

	for _, e := range []ecs.Entity{a, b} {
		_, _, org := tw.agents.Get(e)
		org.Target = pos(1, 0)
	}

	results := make([]MoveResult, 0, 2)
	for _, e := range []ecs.Entity{a, b} {
		p, h, org := tw.agents.Get(e)
		results = append(results, CommitMove(tw.grid, e, p, h, org, turn))
	}

	if results[0] != MoveMoved || results[1] != MoveConflict {
		t.Fatalf("expected [moved conflict], got %v", results)
	}
	if got, _ := tw.grid.AgentAt(pos(1, 0)); got != a {
		t.Error("first mover should hold the contested cell")
	}
	if got, _ := tw.grid.AgentAt(pos(2, 0)); got != b {
		t.Error("loser should remain on its prior cell")
	}
	if _, ok := tw.grid.AgentAt(pos(0, 0)); ok {
		t.Error("winner's old cell should be vacated")
	}

	bp, bh, _ := tw.agents.Get(b)
	if *bp != pos(2, 0) {
		t.Errorf("loser coordinates changed to %v", *bp)
	}
	if bh.Value != 9 {
		t.Errorf("expected prior terrain reapplied (health 9), got %d", bh.Value)
	}
	if turn.Conflicts != 1 {
		t.Errorf("expected 1 conflict counted, got %d", turn.Conflicts)
	}
}

func TestCommitMove_StayReappliesTerrain(t *testing.T) {
	tw := newTestWorld(3, 3)
	tw.grid.SetTerrain(pos(1, 1), TerrainSwamp, testRNG())
	e := tw.spawn(t, components.SpeciesCicada, pos(1, 1), 10)
	p, h, org := tw.agents.Get(e)
	org.Target = *p

	if r := CommitMove(tw.grid, e, p, h, org, NewTurn(0)); r != MoveStayed {
		t.Errorf("expected stayed, got %v", r)
	}
	if h.Value != 7 {
		t.Errorf("expected swamp effect applied (7), got %d", h.Value)
	}
}

func TestCommitMove_TargetClamped(t *testing.T) {
	tw := newTestWorld(4, 4)
	e := tw.spawn(t, components.SpeciesMogwai, pos(2, 2), 10)
	p, h, org := tw.agents.Get(e)
	org.Target = pos(10, -5)

	CommitMove(tw.grid, e, p, h, org, NewTurn(0))

	if *p != pos(3, 0) {
		t.Errorf("expected clamped destination (3,0), got %v", *p)
	}
}

func TestCommitMove_DeathIsQueued(t *testing.T) {
	tw := newTestWorld(2, 2)
	e := tw.spawn(t, components.SpeciesAnt, pos(0, 0), 1)
	p, h, org := tw.agents.Get(e)
	org.Target = pos(1, 0)
	turn := NewTurn(0)

	CommitMove(tw.grid, e, p, h, org, turn)

	if h.Value != 0 {
		t.Fatalf("expected health 0, got %d", h.Value)
	}
	if d := turn.Deaths(); len(d) != 1 || d[0] != e {
		t.Errorf("expected the agent queued for death, got %v", d)
	}
	if !tw.world.Alive(e) {
		t.Error("death must be deferred, not applied in place")
	}
}

func TestCommitMove_ClearsNewborn(t *testing.T) {
	tw := newTestWorld(2, 2)
	e := tw.spawn(t, components.SpeciesAnt, pos(0, 0), 10)
	p, h, org := tw.agents.Get(e)
	org.Newborn = true
	org.Target = *p

	CommitMove(tw.grid, e, p, h, org, NewTurn(0))

	if org.Newborn {
		t.Error("newborn flag should clear on the first committed move")
	}
}

func TestMovementSystem_DestructiveMode(t *testing.T) {
	tw := newTestWorld(5, 5)
	gizmo := tw.spawn(t, components.SpeciesMogwai, pos(2, 2), 10)
	ant := tw.spawn(t, components.SpeciesAnt, pos(4, 4), 10)

	var modes [components.NumSpecies]BehaviorMode
	modes[components.SpeciesMogwai] = ModeDestructive

	sys := NewMovementSystem(tw.world)
	counts := sys.Update([]ecs.Entity{gizmo, ant}, tw.grid, NewTurn(0), &modes, testRNG())

	if counts.Rampages != 1 {
		t.Errorf("expected 1 rampage, got %d", counts.Rampages)
	}
	for _, p := range tw.grid.Neighborhood(pos(2, 2), 1).Positions() {
		if tw.grid.TerrainAt(p).Kind != TerrainSwamp {
			t.Errorf("expected swamp at %v", p)
		}
	}
	if got := tw.grid.TerrainAt(pos(4, 4)).Kind; got != TerrainGrassland {
		t.Errorf("peaceful species converted terrain at (4,4) to %v", got)
	}
}
