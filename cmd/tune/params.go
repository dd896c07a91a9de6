// Package main provides CMA-ES tuning of ecosystem parameters.
package main

import (
	"math"

	"github.com/pthm-cable/ecosim/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	get func(cfg *config.Config) float64
	set func(cfg *config.Config, v float64)
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Terrain
			{Name: "food_cells", Path: "terrain.food_cells", Min: 10, Max: 400,
				get: func(c *config.Config) float64 { return float64(c.Terrain.FoodCells) },
				set: func(c *config.Config, v float64) { c.Terrain.FoodCells = int(math.Round(v)) }},
			{Name: "food_stock_max", Path: "terrain.food_stock_max", Min: 2, Max: 20,
				get: func(c *config.Config) float64 { return float64(c.Terrain.FoodStockMax) },
				set: func(c *config.Config, v float64) { c.Terrain.FoodStockMax = int(math.Round(v)) }},
			{Name: "swamp_threshold", Path: "terrain.swamp_threshold", Min: 0.6, Max: 1.0,
				get: func(c *config.Config) float64 { return c.Terrain.SwampThreshold },
				set: func(c *config.Config, v float64) { c.Terrain.SwampThreshold = v }},
			// Reproduction
			{Name: "success_rate", Path: "reproduction.success_rate", Min: 0.05, Max: 0.9,
				get: func(c *config.Config) float64 { return c.Reproduction.SuccessRate },
				set: func(c *config.Config, v float64) { c.Reproduction.SuccessRate = v }},
			// Population
			{Name: "initial", Path: "population.initial", Min: 10, Max: 300,
				get: func(c *config.Config) float64 { return float64(c.Population.Initial) },
				set: func(c *config.Config, v float64) { c.Population.Initial = int(math.Round(v)) }},
			// Species behavior
			{Name: "ant_low_health", Path: "species.ant.low_health", Min: 0, Max: 12,
				get: speciesGetter("ant", func(s *config.SpeciesConfig) float64 { return float64(s.LowHealth) }),
				set: speciesSetter("ant", func(s *config.SpeciesConfig, v float64) { s.LowHealth = int(math.Round(v)) })},
			{Name: "cicada_idle_chance", Path: "species.cicada.idle_chance", Min: 0, Max: 0.9,
				get: speciesGetter("cicada", func(s *config.SpeciesConfig) float64 { return s.IdleChance }),
				set: speciesSetter("cicada", func(s *config.SpeciesConfig, v float64) { s.IdleChance = v })},
			{Name: "mogwai_spawn_weight", Path: "species.mogwai.spawn_weight", Min: 0.01, Max: 0.5,
				get: speciesGetter("mogwai", func(s *config.SpeciesConfig) float64 { return s.SpawnWeight }),
				set: speciesSetter("mogwai", func(s *config.SpeciesConfig, v float64) { s.SpawnWeight = v })},
		},
	}
}

func speciesGetter(name string, f func(*config.SpeciesConfig) float64) func(*config.Config) float64 {
	return func(c *config.Config) float64 {
		if idx, ok := c.Derived.SpeciesIndex[name]; ok {
			return f(&c.Species[idx])
		}
		return 0
	}
}

func speciesSetter(name string, f func(*config.SpeciesConfig, float64)) func(*config.Config, float64) {
	return func(c *config.Config, v float64) {
		if idx, ok := c.Derived.SpeciesIndex[name]; ok {
			f(&c.Species[idx], v)
		}
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Values that would
// not fit the grid are capped so every candidate stays runnable.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	cells := cfg.World.Width * cfg.World.Height
	cfg.Terrain.FoodCells = min(cfg.Terrain.FoodCells, cells)
	cfg.Population.Initial = min(cfg.Population.Initial, cells)
	cfg.Terrain.FoodStockMax = max(cfg.Terrain.FoodStockMax, cfg.Terrain.FoodStockMin)
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
