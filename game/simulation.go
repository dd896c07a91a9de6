package game

import (
	"log/slog"

	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// TurnReport summarises one completed turn.
type TurnReport struct {
	Turn           int
	Births         int
	Deaths         int
	Conflicts      int
	BirthsDropped  int
	Rampages       int
	TerrainUpdates int
}

// AdvanceOneTurn runs exactly one turn: decide, move, death reconciliation,
// reproduce, birth materialization, deferred terrain updates, then the
// population snapshot. Each phase completes before the next begins.
func (e *Ecosystem) AdvanceOneTurn() (TurnReport, error) {
	if e.turnsRemaining <= 0 {
		return TurnReport{}, ErrTurnBudgetExhausted
	}

	e.perfCollector.StartTurn()
	turn := systems.NewTurn(e.turn + 1)

	// Action order carries no meaning beyond who wins a contested cell
	e.rng.Shuffle(len(e.live), func(i, j int) { e.live[i], e.live[j] = e.live[j], e.live[i] })

	e.perfCollector.StartPhase(telemetry.PhaseDecide)
	e.behavior.Update(e.live, e.grid, e.rng)

	e.perfCollector.StartPhase(telemetry.PhaseMove)
	moves := e.movement.Update(e.live, e.grid, turn, &e.modes, e.rng)

	e.perfCollector.StartPhase(telemetry.PhaseDeaths)
	deaths := e.reconcileDeaths(turn)

	e.perfCollector.StartPhase(telemetry.PhaseReproduce)
	e.breeding.Update(e.live, e.grid, turn, e.rng)

	e.perfCollector.StartPhase(telemetry.PhaseBirths)
	births := e.materializeBirths(turn)

	e.perfCollector.StartPhase(telemetry.PhaseTerrain)
	updated := e.applyTerrainUpdates(turn)

	e.turn = turn.Number
	e.turnsRemaining--

	e.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	e.recordPopulation()
	e.collector.RecordTurn(moves.Conflicts, turn.BirthsDropped, moves.Rampages, updated)
	e.flushTelemetry()

	e.perfCollector.EndTurn()

	report := TurnReport{
		Turn:           e.turn,
		Births:         births,
		Deaths:         deaths,
		Conflicts:      moves.Conflicts,
		BirthsDropped:  turn.BirthsDropped,
		Rampages:       moves.Rampages,
		TerrainUpdates: updated,
	}
	slog.Debug("turn",
		"turn", report.Turn,
		"population", len(e.live),
		"births", report.Births,
		"deaths", report.Deaths,
		"conflicts", report.Conflicts,
		"terrain_updates", report.TerrainUpdates,
	)
	return report, nil
}

// Run advances until the turn budget is spent or the population dies out.
// It returns the number of turns run.
func (e *Ecosystem) Run() int {
	n := 0
	for len(e.live) > 0 {
		if _, err := e.AdvanceOneTurn(); err != nil {
			break
		}
		n++
	}
	return n
}

// recordPopulation appends this turn's per-species counts to the history.
func (e *Ecosystem) recordPopulation() {
	snap := telemetry.NewPopulationSnapshot(e.turn, e.counts)
	e.history = append(e.history, snap)
	if err := e.outputManager.WritePopulation(snap); err != nil {
		slog.Error("failed to write population", "error", err)
	}
}
