package game

import (
	"log/slog"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (e *Ecosystem) flushTelemetry() {
	if !e.collector.ShouldFlush(e.turn) {
		return
	}

	healths := e.sampleHealthDistributions()
	terrain := e.summarizeTerrain()
	pop := telemetry.NewPopulationSnapshot(e.turn, e.counts)

	stats := e.collector.Flush(e.turn, pop, healths, terrain)
	perfStats := e.perfCollector.Stats()

	if e.statsCallback != nil {
		e.statsCallback(stats)
	}

	if e.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if e.outputManager != nil {
		if err := e.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := e.outputManager.WritePerf(perfStats, stats.WindowEndTurn); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range e.bookmarkDetector.Check(stats) {
		if e.logStats {
			bm.LogBookmark()
		}
		if e.outputManager != nil {
			if err := e.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sampleHealthDistributions collects per-species health values and refreshes
// lifetime peaks.
func (e *Ecosystem) sampleHealthDistributions() [components.NumSpecies][]float64 {
	var healths [components.NumSpecies][]float64

	query := e.agentFilter.Query()
	for query.Next() {
		_, h, org := query.Get()
		healths[org.Species] = append(healths[org.Species], float64(h.Value))
		e.lifetimeTracker.UpdateHealth(org.ID, h.Value)
	}
	return healths
}

// summarizeTerrain tallies the terrain layer.
func (e *Ecosystem) summarizeTerrain() telemetry.TerrainSummary {
	counts := e.grid.TerrainCounts()
	sum := telemetry.TerrainSummary{
		Grassland:   counts[systems.TerrainGrassland],
		Swamps:      counts[systems.TerrainSwamp],
		FoodPatches: counts[systems.TerrainFoodPatch],
	}
	for _, p := range e.grid.Bounds().Positions() {
		c := e.grid.TerrainAt(p)
		if c.DangerMarked {
			sum.DangerMarked++
		}
		if c.Kind == systems.TerrainFoodPatch {
			sum.FoodStock += c.Stock
		}
	}
	return sum
}
