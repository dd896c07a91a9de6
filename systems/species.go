package systems

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
)

// WalkKind selects the movement heuristic of a species.
type WalkKind uint8

const (
	// WalkAxis steps along one axis per turn and retreats toward the
	// origin corner when health runs low.
	WalkAxis WalkKind = iota
	// WalkFree steps along both axes at once.
	WalkFree
)

// BehaviorMode is the species-global movement mode.
type BehaviorMode uint8

const (
	ModePeaceful BehaviorMode = iota
	// ModeDestructive turns the agent's surroundings to swamp after every move.
	ModeDestructive
)

func (m BehaviorMode) String() string {
	if m == ModeDestructive {
		return "destructive"
	}
	return "peaceful"
}

// SpeciesTraits is the behavior table entry of one species.
type SpeciesTraits struct {
	Species           components.Species
	SpawnWeight       float64
	MaxHealth         int
	FixedMaxHealth    bool
	FullHealthAtBirth bool
	SuccessRate       float64
	Walk              WalkKind
	Step              int
	IdleChance        float64
	LowHealth         int
	HomeDivisor       int
}

// SpeciesTable holds the traits of every species, indexed by Species.
type SpeciesTable [components.NumSpecies]SpeciesTraits

// NewSpeciesTable builds the behavior table from config. Every species must
// be configured.
func NewSpeciesTable(cfg *config.Config) (*SpeciesTable, error) {
	var t SpeciesTable
	var seen [components.NumSpecies]bool

	for _, sc := range cfg.Species {
		sp, err := components.ParseSpecies(sc.Name)
		if err != nil {
			return nil, err
		}
		rate := sc.SuccessRate
		if rate == 0 {
			rate = cfg.Reproduction.SuccessRate
		}
		walk := WalkAxis
		if sc.Walk == "free" {
			walk = WalkFree
		}
		t[sp] = SpeciesTraits{
			Species:           sp,
			SpawnWeight:       sc.SpawnWeight,
			MaxHealth:         sc.MaxHealth,
			FixedMaxHealth:    sc.FixedMaxHealth,
			FullHealthAtBirth: sc.FullHealthAtBirth,
			SuccessRate:       rate,
			Walk:              walk,
			Step:              sc.Step,
			IdleChance:        sc.IdleChance,
			LowHealth:         sc.LowHealth,
			HomeDivisor:       sc.HomeDivisor,
		}
		seen[sp] = true
	}

	for _, sp := range components.AllSpecies() {
		if !seen[sp] {
			return nil, fmt.Errorf("species %s is not configured", sp)
		}
	}
	return &t, nil
}

// Traits returns the table entry for a species.
func (t *SpeciesTable) Traits(s components.Species) *SpeciesTraits {
	return &t[s]
}

// Pick draws a species proportionally to spawn weight.
func (t *SpeciesTable) Pick(rng *rand.Rand) components.Species {
	var total float64
	for i := range t {
		total += t[i].SpawnWeight
	}
	r := rng.Float64() * total
	for i := range t {
		r -= t[i].SpawnWeight
		if r < 0 {
			return t[i].Species
		}
	}
	// Float rounding: fall back to the last weighted species
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].SpawnWeight > 0 {
			return t[i].Species
		}
	}
	return components.SpeciesAnt
}

// NewbornMax returns the capacity a newborn is created with.
func (st *SpeciesTraits) NewbornMax(inherited int) int {
	if st.FixedMaxHealth {
		return st.MaxHealth
	}
	return max(inherited, 1)
}

// RollHealth returns the starting health for an agent of the given capacity:
// full when the species is born healthy, otherwise uniform in [cap/2, cap].
func (st *SpeciesTraits) RollHealth(capacity int, rng *rand.Rand) components.Health {
	if st.FullHealthAtBirth {
		return components.Health{Value: capacity, Max: capacity}
	}
	lo := max(1, capacity/2)
	return components.Health{Value: lo + rng.Intn(capacity-lo+1), Max: capacity}
}
