// Package game runs the ecosystem: it owns the grid, the agent arena and the
// phased turn protocol.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

var (
	// ErrConfig wraps every construction-time configuration error.
	ErrConfig = errors.New("invalid ecosystem configuration")
	// ErrTurnBudgetExhausted is returned by AdvanceOneTurn once every
	// configured turn has run.
	ErrTurnBudgetExhausted = errors.New("turn budget exhausted")
	// ErrInvariant wraps errors reported by CheckInvariants.
	ErrInvariant = errors.New("invariant violated")
)

// eventLogSize is the number of global events kept for display.
const eventLogSize = 8

// Options holds construction parameters that do not belong in the config file.
type Options struct {
	// Rand drives every random draw of the simulation. When nil, a source
	// seeded from the config seed (or the clock when that is 0) is used.
	Rand *rand.Rand

	// Output receives CSV telemetry. nil disables file output.
	Output *telemetry.OutputManager

	// LogStats logs every telemetry window and bookmark.
	LogStats bool

	// StatsCallback, if set, is called with every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Ecosystem is the turn orchestrator.
type Ecosystem struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	// Agent arena
	world       *ecs.World
	agents      *ecs.Map3[components.Position, components.Health, components.Organism]
	agentFilter *ecs.Filter3[components.Position, components.Health, components.Organism]
	live        []ecs.Entity // action order, reshuffled every turn
	nextID      uint32

	grid     *systems.Grid
	species  *systems.SpeciesTable
	behavior *systems.BehaviorSystem
	movement *systems.MovementSystem
	breeding *systems.BreedingSystem
	modes    [components.NumSpecies]systems.BehaviorMode

	// Turn accounting
	turn           int
	turnsRemaining int
	counts         [components.NumSpecies]int
	history        []telemetry.PopulationSnapshot

	// Telemetry
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	outputManager    *telemetry.OutputManager
	events           *telemetry.EventLog
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
}

// New builds an ecosystem from cfg. A configuration error is reported
// wrapped in ErrConfig and no ecosystem is returned.
func New(cfg *config.Config, opts Options) (*Ecosystem, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	species, err := systems.NewSpeciesTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	rng := opts.Rand
	seed := cfg.Simulation.Seed
	if rng == nil {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	world := ecs.NewWorld()

	e := &Ecosystem{
		cfg:  cfg,
		rng:  rng,
		seed: seed,

		world:       world,
		agents:      ecs.NewMap3[components.Position, components.Health, components.Organism](world),
		agentFilter: ecs.NewFilter3[components.Position, components.Health, components.Organism](world),
		nextID:      1,

		grid: systems.NewGrid(cfg.World.Width, cfg.World.Height, systems.TerrainRules{
			StockMin:     cfg.Terrain.FoodStockMin,
			StockMax:     cfg.Terrain.FoodStockMax,
			DangerRadius: cfg.Terrain.DangerRadius,
		}),
		species:  species,
		behavior: systems.NewBehaviorSystem(world, species),
		movement: systems.NewMovementSystem(world),
		breeding: systems.NewBreedingSystem(world, species, cfg.Reproduction.Radius),

		turnsRemaining: cfg.Simulation.Turns,

		collector:        telemetry.NewCollector(cfg.Telemetry.Window),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		outputManager:    opts.Output,
		events:           telemetry.NewEventLog(eventLogSize),
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}

	e.buildTerrain()
	e.spawnInitialPopulation()

	slog.Info("ecosystem created",
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"agents", len(e.live),
		"turns", cfg.Simulation.Turns,
		"seed", seed,
	)
	return e, nil
}

// buildTerrain lays out the initial terrain: noise swamps with their danger
// halo first, then food patches on the remaining grassland.
func (e *Ecosystem) buildTerrain() {
	tc := e.cfg.Terrain
	swamps := e.grid.SeedSwamps(e.rng.Int63(), tc.SwampNoiseScale, tc.SwampThreshold, e.rng)
	food := e.grid.ScatterFood(tc.FoodCells, e.rng)
	if food < tc.FoodCells {
		slog.Warn("food cells reduced by initial swamps", "requested", tc.FoodCells, "placed", food)
	}
	slog.Debug("terrain built", "swamps", swamps, "food", food)
}

// Config returns the configuration the ecosystem was built with.
func (e *Ecosystem) Config() *config.Config {
	return e.cfg
}

// Seed returns the RNG seed, or the config seed when the caller injected
// its own source.
func (e *Ecosystem) Seed() int64 {
	return e.seed
}

// PerfCollector exposes the per-phase timer, e.g. for frame timing.
func (e *Ecosystem) PerfCollector() *telemetry.PerfCollector {
	return e.perfCollector
}
