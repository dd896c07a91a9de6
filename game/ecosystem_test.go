package game

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// smallConfig returns the defaults shrunk to a grid that runs quickly.
func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Width = 16
	cfg.World.Height = 12
	cfg.Population.Initial = 30
	cfg.Terrain.FoodCells = 20
	cfg.Simulation.Turns = 50
	return cfg
}

// emptyConfig returns a grassland-only grid with no founders, for
// hand-placed scenarios.
func emptyConfig() *config.Config {
	cfg := smallConfig()
	cfg.World.Width = 5
	cfg.World.Height = 5
	cfg.Population.Initial = 0
	cfg.Terrain.FoodCells = 0
	cfg.Terrain.SwampThreshold = 0
	return cfg
}

func newEcosystem(t *testing.T, cfg *config.Config, seed int64) *Ecosystem {
	t.Helper()
	eco, err := New(cfg, Options{Rand: rand.New(rand.NewSource(seed))})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eco
}

func pos(x, y int) components.Position {
	return components.Position{X: x, Y: y}
}

// ---------- construction ----------

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"too much food", func(c *config.Config) { c.Terrain.FoodCells = c.World.Width*c.World.Height + 1 }},
		{"too many agents", func(c *config.Config) { c.Population.Initial = c.World.Width*c.World.Height + 1 }},
		{"empty grid", func(c *config.Config) { c.World.Width = 0 }},
		{"inverted stock range", func(c *config.Config) { c.Terrain.FoodStockMin = 5; c.Terrain.FoodStockMax = 2 }},
		{"missing species", func(c *config.Config) { c.Species = c.Species[:2] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(cfg)
			eco, err := New(cfg, Options{Rand: rand.New(rand.NewSource(1))})
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			if eco != nil {
				t.Error("no ecosystem should be returned on error")
			}
		})
	}
}

func TestNew_InitialState(t *testing.T) {
	cfg := smallConfig()
	eco := newEcosystem(t, cfg, 3)

	if got := len(eco.LiveAgents()); got != cfg.Population.Initial {
		t.Errorf("live agents = %d, want %d", got, cfg.Population.Initial)
	}
	if eco.Population().Total() != cfg.Population.Initial {
		t.Errorf("population total = %d, want %d", eco.Population().Total(), cfg.Population.Initial)
	}
	for _, a := range eco.LiveAgents() {
		if a.Newborn {
			t.Errorf("founder %d must not be flagged newborn", a.ID)
		}
	}
	counts := eco.TerrainCounts()
	if counts[systems.TerrainFoodPatch] > cfg.Terrain.FoodCells {
		t.Errorf("%d food patches, at most %d requested", counts[systems.TerrainFoodPatch], cfg.Terrain.FoodCells)
	}
	if eco.Turn() != 0 || eco.TurnsRemaining() != cfg.Simulation.Turns {
		t.Errorf("turn %d remaining %d", eco.Turn(), eco.TurnsRemaining())
	}
	if err := eco.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

// ---------- turn loop ----------

func TestAdvanceOneTurn_InvariantsHold(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Turns = 120
	eco := newEcosystem(t, cfg, 11)

	for i := 1; i <= cfg.Simulation.Turns; i++ {
		report, err := eco.AdvanceOneTurn()
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if report.Turn != i {
			t.Fatalf("report turn = %d, want %d", report.Turn, i)
		}
		if err := eco.CheckInvariants(); err != nil {
			t.Fatalf("after turn %d: %v", i, err)
		}
		if i == 60 {
			eco.TriggerMassDangerEvent()
			eco.SetBehaviorMode(components.SpeciesMogwai, true)
		}
	}

	if got := len(eco.PopulationHistory()); got != cfg.Simulation.Turns {
		t.Errorf("history length = %d, want %d", got, cfg.Simulation.Turns)
	}
}

func TestAdvanceOneTurn_BudgetExhausted(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Turns = 3
	eco := newEcosystem(t, cfg, 1)

	for i := 0; i < 3; i++ {
		if _, err := eco.AdvanceOneTurn(); err != nil {
			t.Fatalf("turn %d: %v", i+1, err)
		}
	}
	if _, err := eco.AdvanceOneTurn(); !errors.Is(err, ErrTurnBudgetExhausted) {
		t.Fatalf("expected ErrTurnBudgetExhausted, got %v", err)
	}
	if eco.Turn() != 3 || eco.TurnsRemaining() != 0 {
		t.Errorf("turn %d remaining %d after exhaustion", eco.Turn(), eco.TurnsRemaining())
	}
}

func TestRun_StopsAtBudget(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Turns = 7
	eco := newEcosystem(t, cfg, 2)

	if n := eco.Run(); n > 7 {
		t.Errorf("ran %d turns with a budget of 7", n)
	}
	if eco.Turn() > 7 {
		t.Errorf("turn counter = %d", eco.Turn())
	}
}

func TestAdvanceOneTurn_Deterministic(t *testing.T) {
	cfg := smallConfig()
	a := newEcosystem(t, cfg, 42)
	b := newEcosystem(t, cfg, 42)

	for i := 0; i < 30; i++ {
		ra, errA := a.AdvanceOneTurn()
		rb, errB := b.AdvanceOneTurn()
		if errA != nil || errB != nil {
			t.Fatalf("turn %d: %v, %v", i+1, errA, errB)
		}
		if ra != rb {
			t.Fatalf("turn %d reports differ: %+v vs %+v", i+1, ra, rb)
		}
	}
	if a.String() != b.String() {
		t.Error("grids diverged for the same seed")
	}
}

func TestAdvanceOneTurn_NewbornsFlagged(t *testing.T) {
	cfg := smallConfig()
	cfg.World.Width = 8
	cfg.World.Height = 8
	cfg.Population.Initial = 24
	cfg.Terrain.FoodCells = 0
	cfg.Terrain.SwampThreshold = 0
	// Only mogwai: huge capacity, no deaths, frequent pairing
	cfg.Species[0].SpawnWeight = 0
	cfg.Species[1].SpawnWeight = 0
	eco := newEcosystem(t, cfg, 5)

	births := 0
	for i := 0; i < 5; i++ {
		report, err := eco.AdvanceOneTurn()
		if err != nil {
			t.Fatal(err)
		}
		births += report.Births

		newborns := 0
		for _, a := range eco.LiveAgents() {
			if a.Newborn {
				newborns++
				if a.Health != a.MaxHealth {
					t.Errorf("mogwai newborn health %d/%d, want full", a.Health, a.MaxHealth)
				}
			}
		}
		if newborns != report.Births {
			t.Errorf("turn %d: %d newborn flags for %d births", report.Turn, newborns, report.Births)
		}
		if err := eco.CheckInvariants(); err != nil {
			t.Fatal(err)
		}
	}

	if births == 0 {
		t.Error("expected at least one birth in a crowded mogwai grid")
	}
	if got := eco.Population().Total(); got != 24+births {
		t.Errorf("population = %d, want %d", got, 24+births)
	}
}

// ---------- scenarios ----------

func TestDeathOnGrassland_SchedulesFood(t *testing.T) {
	cfg := emptyConfig()
	cfg.Species[0].IdleChance = 1
	eco := newEcosystem(t, cfg, 1)

	tr := eco.species.Traits(components.SpeciesAnt)
	eco.spawnAgent(components.SpeciesAnt, pos(2, 2), components.Health{Value: 1, Max: tr.MaxHealth}, false)

	report, err := eco.AdvanceOneTurn()
	if err != nil {
		t.Fatal(err)
	}
	if report.Deaths != 1 {
		t.Fatalf("deaths = %d, want 1", report.Deaths)
	}
	if len(eco.LiveAgents()) != 0 {
		t.Error("dead agent still listed")
	}
	if _, ok := eco.AgentAt(pos(2, 2)); ok {
		t.Error("dead agent still occupies its cell")
	}
	if got := eco.TerrainAt(pos(2, 2)); got.Kind != systems.TerrainFoodPatch || got.RemainingStock == nil || *got.RemainingStock < 1 {
		t.Errorf("expected a stocked food patch where the ant died, got %+v", got)
	}

	events := eco.RecentEvents()
	if len(events) != 1 || events[0].Type != telemetry.EventExtinction || events[0].Species != components.SpeciesAnt {
		t.Errorf("expected an ant extinction event, got %v", events)
	}
	if err := eco.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

func TestFoodDepletion_RevertsToGrassland(t *testing.T) {
	cfg := emptyConfig()
	cfg.Species[0].IdleChance = 1
	eco := newEcosystem(t, cfg, 1)

	at := pos(1, 1)
	cell := eco.grid.SetTerrain(at, systems.TerrainFoodPatch, eco.rng)
	cell.Stock = 1
	eco.spawnAgent(components.SpeciesAnt, at, components.Health{Value: 5, Max: 20}, false)

	report, err := eco.AdvanceOneTurn()
	if err != nil {
		t.Fatal(err)
	}
	a, ok := eco.AgentAt(at)
	if !ok {
		t.Fatal("idle ant left its cell")
	}
	if a.Health != 8 {
		t.Errorf("health = %d, want 8 after one food visit", a.Health)
	}
	if got := eco.TerrainAt(at); got.Kind != systems.TerrainGrassland || got.HealthImpact != systems.GrasslandImpact {
		t.Errorf("depleted patch should revert to plain grassland, got %+v", got)
	}
	if report.TerrainUpdates != 1 {
		t.Errorf("terrain updates = %d, want 1", report.TerrainUpdates)
	}

	// Next turn the ant stands on grassland
	if _, err := eco.AdvanceOneTurn(); err != nil {
		t.Fatal(err)
	}
	if a, _ := eco.AgentAt(at); a.Health != 7 {
		t.Errorf("health = %d, want 7 on grassland", a.Health)
	}
}

func TestMoveConflict_LoserStays(t *testing.T) {
	cfg := emptyConfig()
	cfg.Species[0].IdleChance = 1
	eco := newEcosystem(t, cfg, 1)

	a := eco.spawnAgent(components.SpeciesAnt, pos(0, 0), components.Health{Value: 10, Max: 20}, false)
	b := eco.spawnAgent(components.SpeciesAnt, pos(4, 4), components.Health{Value: 10, Max: 20}, false)

	// Both claim (2, 2): commit directly with a fixed order
	turn := systems.NewTurn(1)
	_, _, orgA := eco.agents.Get(a)
	_, _, orgB := eco.agents.Get(b)
	orgA.Target = pos(2, 2)
	orgB.Target = pos(2, 2)

	var modes [components.NumSpecies]systems.BehaviorMode
	counts := eco.movement.Update(eco.live, eco.grid, turn, &modes, eco.rng)
	if counts.Moved != 1 || counts.Conflicts != 1 {
		t.Fatalf("expected one move and one conflict, got %+v", counts)
	}
	if got, ok := eco.grid.AgentAt(pos(2, 2)); !ok || got != a {
		t.Error("first agent in action order should win the cell")
	}
	if got, _ := eco.grid.AgentAt(pos(4, 4)); got != b {
		t.Error("loser should stay on its own cell")
	}
}

// ---------- events ----------

func TestTriggerMassDangerEvent(t *testing.T) {
	cfg := smallConfig()
	cells := cfg.World.Width * cfg.World.Height

	for seed := int64(1); seed <= 10; seed++ {
		eco := newEcosystem(t, cfg, seed)
		before := eco.TerrainCounts()[systems.TerrainSwamp]

		converted := eco.TriggerMassDangerEvent()
		after := eco.TerrainCounts()[systems.TerrainSwamp]

		if after < before || after < converted {
			t.Errorf("seed %d: swamps %d -> %d with %d cells picked", seed, before, after, converted)
		}
		if after < (cells+1)/2 || after > cells {
			t.Errorf("seed %d: %d swamps after mass danger on %d cells", seed, after, cells)
		}
		events := eco.RecentEvents()
		if len(events) == 0 || events[len(events)-1].Type != telemetry.EventMassDanger {
			t.Errorf("seed %d: mass danger event not logged", seed)
		}
		if err := eco.CheckInvariants(); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSetBehaviorMode_DestructiveSpreadsSwamp(t *testing.T) {
	cfg := emptyConfig()
	eco := newEcosystem(t, cfg, 1)
	eco.spawnAgent(components.SpeciesMogwai, pos(2, 2), components.Health{Value: 100, Max: 100}, false)

	eco.SetBehaviorMode(components.SpeciesMogwai, true)
	eco.SetBehaviorMode(components.SpeciesMogwai, true)
	if eco.BehaviorMode(components.SpeciesMogwai) != systems.ModeDestructive {
		t.Fatal("mode not switched")
	}
	if n := len(eco.RecentEvents()); n != 1 {
		t.Errorf("repeated switch should log once, got %d events", n)
	}

	report, err := eco.AdvanceOneTurn()
	if err != nil {
		t.Fatal(err)
	}
	if report.Rampages != 1 {
		t.Errorf("rampages = %d, want 1", report.Rampages)
	}
	a := eco.LiveAgents()[0]
	if eco.TerrainAt(a.Coords).Kind != systems.TerrainSwamp {
		t.Error("destructive mogwai should stand on swamp after its move")
	}
	if eco.TerrainCounts()[systems.TerrainSwamp] < 4 {
		t.Errorf("expected at least a corner neighborhood of swamp, got %d", eco.TerrainCounts()[systems.TerrainSwamp])
	}

	eco.SetBehaviorMode(components.SpeciesMogwai, false)
	before := eco.TerrainCounts()[systems.TerrainSwamp]
	report, _ = eco.AdvanceOneTurn()
	if report.Rampages != 0 || eco.TerrainCounts()[systems.TerrainSwamp] != before {
		t.Error("peaceful mode should not convert terrain")
	}
}

func TestEventSchedule_FiresOnce(t *testing.T) {
	cfg := smallConfig()
	cfg.Simulation.Turns = 10
	cfg.Events.MassDangerAt = 0.5
	cfg.Events.BehaviorFlipAt = 0.8
	cfg.Events.BehaviorFlipSpecies = "cicada"

	sched, err := NewEventSchedule(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sched.MassDangerTurn != 5 || sched.BehaviorFlipTurn != 8 || sched.FlipSpecies != components.SpeciesCicada {
		t.Fatalf("unexpected schedule %+v", sched)
	}

	eco := newEcosystem(t, cfg, 4)
	for i := 0; i < 10; i++ {
		sched.Fire(eco)
		if _, err := eco.AdvanceOneTurn(); err != nil {
			t.Fatal(err)
		}
	}
	sched.Fire(eco)

	var mass, flips int
	for _, ev := range eco.RecentEvents() {
		switch ev.Type {
		case telemetry.EventMassDanger:
			mass++
			if ev.Turn != 5 {
				t.Errorf("mass danger fired at turn %d, want 5", ev.Turn)
			}
		case telemetry.EventBehaviorMode:
			flips++
		}
	}
	if mass != 1 || flips != 1 {
		t.Errorf("mass danger fired %d times, flip %d times; want once each", mass, flips)
	}
	if eco.BehaviorMode(components.SpeciesCicada) != systems.ModeDestructive {
		t.Error("cicadas should be destructive after the flip")
	}
}

func TestEventSchedule_Disabled(t *testing.T) {
	cfg := smallConfig()
	cfg.Events.MassDangerAt = 0
	cfg.Events.BehaviorFlipAt = 0
	sched, err := NewEventSchedule(cfg)
	if err != nil {
		t.Fatal(err)
	}
	eco := newEcosystem(t, cfg, 1)
	eco.turn = cfg.Simulation.Turns
	sched.Fire(eco)
	if len(eco.RecentEvents()) != 0 {
		t.Error("disabled events must not fire")
	}
}

// ---------- output ----------

func TestAdvanceOneTurn_WritesPopulationCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg := smallConfig()
	cfg.Simulation.Turns = 10
	cfg.Telemetry.Window = 5

	var windows []telemetry.WindowStats
	eco, err := New(cfg, Options{
		Rand:          rand.New(rand.NewSource(9)),
		Output:        om,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}
	eco.Run()
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "population.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != eco.Turn()+1 {
		t.Errorf("population.csv has %d lines for %d turns", len(lines), eco.Turn())
	}
	if eco.Turn() == 10 && len(windows) != 2 {
		t.Errorf("expected 2 telemetry windows, got %d", len(windows))
	}
}

func TestString_Dimensions(t *testing.T) {
	eco := newEcosystem(t, smallConfig(), 1)
	w, h := eco.Dimensions()
	rows := strings.Split(strings.TrimSuffix(eco.String(), "\n"), "\n")
	if len(rows) != h {
		t.Fatalf("rows = %d, want %d", len(rows), h)
	}
	for _, r := range rows {
		if len([]rune(r)) != w {
			t.Fatalf("row width = %d, want %d", len([]rune(r)), w)
		}
	}
}
