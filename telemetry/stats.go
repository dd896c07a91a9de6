package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/ecosim/components"
)

// WindowStats holds aggregated statistics for a window of turns.
type WindowStats struct {
	WindowStartTurn int `csv:"-"`
	WindowEndTurn   int `csv:"window_end"`

	// Population counts at window end
	Ants    int `csv:"ants"`
	Cicadas int `csv:"cicadas"`
	Mogwais int `csv:"mogwais"`
	Total   int `csv:"total"`

	// Events during window
	AntBirths     int `csv:"ant_births"`
	CicadaBirths  int `csv:"cicada_births"`
	MogwaiBirths  int `csv:"mogwai_births"`
	AntDeaths     int `csv:"ant_deaths"`
	CicadaDeaths  int `csv:"cicada_deaths"`
	MogwaiDeaths  int `csv:"mogwai_deaths"`
	Conflicts     int `csv:"conflicts"`
	BirthsDropped int `csv:"births_dropped"`
	Rampages      int `csv:"rampages"`

	// Health distribution (sampled at window end)
	AntHealthMean    float64 `csv:"ant_health_mean"`
	AntHealthP10     float64 `csv:"ant_health_p10"`
	AntHealthP50     float64 `csv:"ant_health_p50"`
	AntHealthP90     float64 `csv:"ant_health_p90"`
	CicadaHealthMean float64 `csv:"cicada_health_mean"`
	CicadaHealthP10  float64 `csv:"cicada_health_p10"`
	CicadaHealthP50  float64 `csv:"cicada_health_p50"`
	CicadaHealthP90  float64 `csv:"cicada_health_p90"`

	// Terrain layer at window end
	Grassland      int `csv:"grassland"`
	Swamps         int `csv:"swamps"`
	FoodPatches    int `csv:"food_patches"`
	DangerMarked   int `csv:"danger_marked"`
	FoodStock      int `csv:"food_stock"`
	TerrainUpdates int `csv:"terrain_updates"` // deferred transitions applied during window

	// Mean age at death of agents that died during window
	MeanLifespan float64 `csv:"mean_lifespan"`
}

// Count returns the window-end population of one species.
func (s WindowStats) Count(sp components.Species) int {
	switch sp {
	case components.SpeciesAnt:
		return s.Ants
	case components.SpeciesCicada:
		return s.Cicadas
	case components.SpeciesMogwai:
		return s.Mogwais
	}
	return 0
}

// Percentile returns the empirical p-quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeHealthStats calculates mean and percentiles from health values.
func ComputeHealthStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, p10, p50, p90
}

// CoefficientOfVariation returns std/mean of values, or 0 when the mean is 0
// or fewer than two values are given.
func CoefficientOfVariation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTurn),
		slog.Int("window_end", s.WindowEndTurn),
		slog.Int("ants", s.Ants),
		slog.Int("cicadas", s.Cicadas),
		slog.Int("mogwais", s.Mogwais),
		slog.Int("births", s.AntBirths+s.CicadaBirths+s.MogwaiBirths),
		slog.Int("deaths", s.AntDeaths+s.CicadaDeaths+s.MogwaiDeaths),
		slog.Int("conflicts", s.Conflicts),
		slog.Int("births_dropped", s.BirthsDropped),
		slog.Int("rampages", s.Rampages),
		slog.Float64("ant_health_mean", s.AntHealthMean),
		slog.Float64("cicada_health_mean", s.CicadaHealthMean),
		slog.Int("swamps", s.Swamps),
		slog.Int("food_patches", s.FoodPatches),
		slog.Int("terrain_updates", s.TerrainUpdates),
		slog.Float64("mean_lifespan", s.MeanLifespan),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTurn,
		"ants", s.Ants,
		"cicadas", s.Cicadas,
		"mogwais", s.Mogwais,
		"ant_births", s.AntBirths,
		"cicada_births", s.CicadaBirths,
		"mogwai_births", s.MogwaiBirths,
		"ant_deaths", s.AntDeaths,
		"cicada_deaths", s.CicadaDeaths,
		"mogwai_deaths", s.MogwaiDeaths,
		"conflicts", s.Conflicts,
		"births_dropped", s.BirthsDropped,
		"rampages", s.Rampages,
		"ant_health_mean", s.AntHealthMean,
		"ant_health_p50", s.AntHealthP50,
		"cicada_health_mean", s.CicadaHealthMean,
		"cicada_health_p50", s.CicadaHealthP50,
		"grassland", s.Grassland,
		"swamps", s.Swamps,
		"food_patches", s.FoodPatches,
		"danger_marked", s.DangerMarked,
		"food_stock", s.FoodStock,
		"terrain_updates", s.TerrainUpdates,
		"mean_lifespan", s.MeanLifespan,
	)
}
