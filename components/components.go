// Package components defines ECS components for the simulation.
package components

import "fmt"

// Species identifies an agent's behavioral family. The set is closed.
type Species uint8

const (
	SpeciesAnt Species = iota
	SpeciesCicada
	SpeciesMogwai

	NumSpecies = 3
)

var speciesNames = [NumSpecies]string{"ant", "cicada", "mogwai"}

// String returns the config name of the species.
func (s Species) String() string {
	if int(s) < len(speciesNames) {
		return speciesNames[s]
	}
	return "unknown"
}

// Rune returns the one-letter tag used in text dumps.
func (s Species) Rune() rune {
	switch s {
	case SpeciesAnt:
		return 'F'
	case SpeciesCicada:
		return 'C'
	case SpeciesMogwai:
		return 'G'
	}
	return '?'
}

// ParseSpecies maps a config name to a Species.
func ParseSpecies(name string) (Species, error) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("unknown species %q", name)
}

// AllSpecies returns every species in declaration order.
func AllSpecies() []Species {
	return []Species{SpeciesAnt, SpeciesCicada, SpeciesMogwai}
}

// Organism holds per-agent identity and turn state.
type Organism struct {
	ID       uint32
	Species  Species
	Courting bool     // Already paired this turn
	Newborn  bool     // Created this turn; cleared by its first committed move
	Target   Position // Destination chosen in the decide phase
}
