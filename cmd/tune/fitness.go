package main

import (
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	turns      int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, turns int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		turns:      turns,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// A species below minViablePop for extinctionGraceTurns consecutive turns
// counts as functionally extinct.
const (
	minViablePop         = 3
	extinctionGraceTurns = 10
	warmupTurns          = 5
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTurns int                     // turns before functional extinction (or the budget)
	windowStats   []telemetry.WindowStats // collected via StatsCallback each window
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		quality := computeQuality(r.windowStats)
		totalFitness += computeFitness(r.survivalTurns, quality)
		totalQuality += quality
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run until functional extinction
// of any species or the end of the turn budget.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Simulation.Turns = fe.turns

	result := &runResult{}
	eco, err := game.New(cfg, game.Options{
		Rand: rand.New(rand.NewSource(seed)),
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return result
	}
	schedule, err := game.NewEventSchedule(cfg)
	if err != nil {
		return result
	}

	var below [components.NumSpecies]int
	for {
		schedule.Fire(eco)
		if _, err := eco.AdvanceOneTurn(); err != nil {
			break
		}
		if eco.Turn() < warmupTurns {
			continue
		}

		pop := eco.Population()
		for _, sp := range components.AllSpecies() {
			n := pop.Count(sp)
			if n == 0 {
				result.survivalTurns = eco.Turn()
				return result
			}
			if n < minViablePop {
				below[sp]++
			} else {
				below[sp] = 0
			}
			if below[sp] >= extinctionGraceTurns {
				result.survivalTurns = eco.Turn()
				return result
			}
		}
	}

	result.survivalTurns = eco.Turn()
	return result
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Species = slices.Clone(fe.baseConfig.Species)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to 20% to separate configs with
// similar survival.
func computeFitness(survivalTurns int, quality float64) float64 {
	return -(float64(survivalTurns) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightBalance   = 0.4
	qualityWeightStability = 0.3
	qualityWeightHealth    = 0.3

	qualityWarmupWindows = 1
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var balanceSum, healthSum float64
	totals := make([]float64, 0, len(valid))

	for _, w := range valid {
		if w.Total == 0 {
			continue
		}
		totals = append(totals, float64(w.Total))

		// Balance: normalized entropy of the species shares
		var entropy float64
		for _, sp := range components.AllSpecies() {
			if n := w.Count(sp); n > 0 {
				p := float64(n) / float64(w.Total)
				entropy -= p * math.Log(p)
			}
		}
		balanceSum += entropy / math.Log(components.NumSpecies)

		// Health: median walker health near half capacity
		antH := math.Exp(-math.Pow((w.AntHealthP50-10)/5, 2))
		cicadaH := math.Exp(-math.Pow((w.CicadaHealthP50-10)/5, 2))
		healthSum += (antH + cicadaH) / 2
	}

	if len(totals) == 0 {
		return 0
	}
	n := float64(len(totals))

	stability := 0.0
	if len(totals) >= 2 {
		cv := telemetry.CoefficientOfVariation(totals)
		stability = math.Exp(-cv * cv)
	}

	quality := qualityWeightBalance*balanceSum/n +
		qualityWeightStability*stability +
		qualityWeightHealth*healthSum/n
	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
