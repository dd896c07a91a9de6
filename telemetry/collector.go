package telemetry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
)

// TerrainSummary is the terrain layer tally taken at window end.
type TerrainSummary struct {
	Grassland    int
	Swamps       int
	FoodPatches  int
	DangerMarked int
	FoodStock    int
}

// Collector accumulates events within turn windows and produces WindowStats.
type Collector struct {
	windowTurns int

	// Current window tracking
	windowStartTurn int

	// Event counters for current window
	births         [components.NumSpecies]int
	deaths         [components.NumSpecies]int
	conflicts      int
	birthsDropped  int
	rampages       int
	terrainUpdates int
	lifespans      []float64
}

// NewCollector creates a new stats collector flushing every windowTurns turns.
func NewCollector(windowTurns int) *Collector {
	if windowTurns < 1 {
		windowTurns = 1
	}
	return &Collector{windowTurns: windowTurns}
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth(sp components.Species) {
	c.births[sp]++
}

// RecordDeath records a death event with the agent's age in turns.
func (c *Collector) RecordDeath(sp components.Species, lifespan int) {
	c.deaths[sp]++
	c.lifespans = append(c.lifespans, float64(lifespan))
}

// RecordTurn adds one turn's move and terrain counters.
func (c *Collector) RecordTurn(conflicts, birthsDropped, rampages, terrainUpdates int) {
	c.conflicts += conflicts
	c.birthsDropped += birthsDropped
	c.rampages += rampages
	c.terrainUpdates += terrainUpdates
}

// ShouldFlush returns true if enough turns have passed to flush the window.
func (c *Collector) ShouldFlush(currentTurn int) bool {
	return currentTurn-c.windowStartTurn >= c.windowTurns
}

// Flush produces a WindowStats and resets counters for the next window.
// healths holds the current health of every live agent, per species.
func (c *Collector) Flush(
	currentTurn int,
	pop PopulationSnapshot,
	healths [components.NumSpecies][]float64,
	terrain TerrainSummary,
) WindowStats {
	antMean, antP10, antP50, antP90 := ComputeHealthStats(healths[components.SpeciesAnt])
	cicMean, cicP10, cicP50, cicP90 := ComputeHealthStats(healths[components.SpeciesCicada])

	var lifespan float64
	if len(c.lifespans) > 0 {
		lifespan = stat.Mean(c.lifespans, nil)
	}

	stats := WindowStats{
		WindowStartTurn: c.windowStartTurn,
		WindowEndTurn:   currentTurn,

		Ants:    pop.Ants,
		Cicadas: pop.Cicadas,
		Mogwais: pop.Mogwais,
		Total:   pop.Total(),

		AntBirths:     c.births[components.SpeciesAnt],
		CicadaBirths:  c.births[components.SpeciesCicada],
		MogwaiBirths:  c.births[components.SpeciesMogwai],
		AntDeaths:     c.deaths[components.SpeciesAnt],
		CicadaDeaths:  c.deaths[components.SpeciesCicada],
		MogwaiDeaths:  c.deaths[components.SpeciesMogwai],
		Conflicts:     c.conflicts,
		BirthsDropped: c.birthsDropped,
		Rampages:      c.rampages,

		AntHealthMean:    antMean,
		AntHealthP10:     antP10,
		AntHealthP50:     antP50,
		AntHealthP90:     antP90,
		CicadaHealthMean: cicMean,
		CicadaHealthP10:  cicP10,
		CicadaHealthP50:  cicP50,
		CicadaHealthP90:  cicP90,

		Grassland:      terrain.Grassland,
		Swamps:         terrain.Swamps,
		FoodPatches:    terrain.FoodPatches,
		DangerMarked:   terrain.DangerMarked,
		FoodStock:      terrain.FoodStock,
		TerrainUpdates: c.terrainUpdates,

		MeanLifespan: lifespan,
	}

	// Reset for next window
	c.windowStartTurn = currentTurn
	c.births = [components.NumSpecies]int{}
	c.deaths = [components.NumSpecies]int{}
	c.conflicts = 0
	c.birthsDropped = 0
	c.rampages = 0
	c.terrainUpdates = 0
	c.lifespans = c.lifespans[:0]

	return stats
}

// WindowTurns returns the number of turns per window.
func (c *Collector) WindowTurns() int {
	return c.windowTurns
}
