package telemetry

import "github.com/pthm-cable/ecosim/components"

// PopulationSnapshot holds per-species live counts after one turn.
type PopulationSnapshot struct {
	Turn    int `csv:"turn"`
	Ants    int `csv:"ants"`
	Cicadas int `csv:"cicadas"`
	Mogwais int `csv:"mogwais"`
}

// NewPopulationSnapshot builds a snapshot from counts indexed by species.
func NewPopulationSnapshot(turn int, counts [components.NumSpecies]int) PopulationSnapshot {
	return PopulationSnapshot{
		Turn:    turn,
		Ants:    counts[components.SpeciesAnt],
		Cicadas: counts[components.SpeciesCicada],
		Mogwais: counts[components.SpeciesMogwai],
	}
}

// Count returns the count of one species.
func (p PopulationSnapshot) Count(sp components.Species) int {
	switch sp {
	case components.SpeciesAnt:
		return p.Ants
	case components.SpeciesCicada:
		return p.Cicadas
	case components.SpeciesMogwai:
		return p.Mogwais
	}
	return 0
}

// Total returns the live population across species.
func (p PopulationSnapshot) Total() int {
	return p.Ants + p.Cicadas + p.Mogwais
}
