package systems

import (
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
)

// TerrainKind is the variant of a terrain cell.
type TerrainKind uint8

const (
	TerrainGrassland TerrainKind = iota
	TerrainSwamp
	TerrainFoodPatch

	NumTerrainKinds = 3
)

// Default health impact per variant.
const (
	GrasslandImpact = -1
	SwampImpact     = -3
	FoodPatchImpact = +3

	// DangerMalus is what a swamp adds to each eligible neighbor.
	DangerMalus = SwampImpact / 2
)

// String returns the display name of the terrain kind.
func (k TerrainKind) String() string {
	switch k {
	case TerrainGrassland:
		return "grassland"
	case TerrainSwamp:
		return "swamp"
	case TerrainFoodPatch:
		return "food"
	}
	return "unknown"
}

// DefaultImpact returns the health impact a fresh cell of this kind starts with.
func (k TerrainKind) DefaultImpact() int {
	switch k {
	case TerrainGrassland:
		return GrasslandImpact
	case TerrainSwamp:
		return SwampImpact
	case TerrainFoodPatch:
		return FoodPatchImpact
	}
	return 0
}

// TerrainRules holds the terrain parameters that come from config.
type TerrainRules struct {
	StockMin     int // FoodPatch stock roll, inclusive
	StockMax     int
	DangerRadius int
}

// DefaultTerrainRules matches the embedded config defaults.
func DefaultTerrainRules() TerrainRules {
	return TerrainRules{StockMin: 1, StockMax: 10, DangerRadius: 1}
}

func (r TerrainRules) rollStock(rng *rand.Rand) int {
	if r.StockMax <= r.StockMin {
		return r.StockMin
	}
	return r.StockMin + rng.Intn(r.StockMax-r.StockMin+1)
}

// TerrainCell is one cell of the terrain layer. Coordinates are fixed for the
// life of the cell; a transition replaces the whole cell.
type TerrainCell struct {
	coords components.Position

	Kind         TerrainKind
	HealthImpact int
	DangerMarked bool
	Stock        int // FoodPatch only
}

// NewTerrainCell creates a cell at its kind's default impact.
func NewTerrainCell(kind TerrainKind, at components.Position, stock int) *TerrainCell {
	c := &TerrainCell{
		coords:       at,
		Kind:         kind,
		HealthImpact: kind.DefaultImpact(),
	}
	if kind == TerrainFoodPatch {
		c.Stock = stock
	}
	return c
}

// Coords returns the cell's coordinates.
func (c *TerrainCell) Coords() components.Position {
	return c.coords
}

// DefaultImpact returns the impact of a fresh cell of the same kind.
func (c *TerrainCell) DefaultImpact() int {
	return c.Kind.DefaultImpact()
}

// Malus returns the accumulated delta on top of the kind's default impact.
func (c *TerrainCell) Malus() int {
	return c.HealthImpact - c.DefaultImpact()
}

// ApplyTo applies the cell's effect to an agent standing on it.
// A FoodPatch feeds while it has stock; the visit that empties it, or any
// visit to an empty patch, schedules the cell for the deferred update phase.
func (c *TerrainCell) ApplyTo(h *components.Health, turn *Turn) {
	switch c.Kind {
	case TerrainGrassland, TerrainSwamp:
		h.Add(c.HealthImpact)
	case TerrainFoodPatch:
		if c.Stock > 0 {
			c.Stock--
			h.Add(c.HealthImpact)
			if c.Stock > 0 {
				return
			}
		}
		turn.ScheduleTerrainUpdate(c.coords)
	}
}

// advance returns the replacement cell for a scheduled transition, or nil
// when the kind does not transition.
func (c *TerrainCell) advance(rules TerrainRules, rng *rand.Rand) *TerrainCell {
	switch c.Kind {
	case TerrainGrassland:
		return NewTerrainCell(TerrainFoodPatch, c.coords, rules.rollStock(rng))
	case TerrainFoodPatch:
		return NewTerrainCell(TerrainGrassland, c.coords, 0)
	}
	// Swamps are terminal
	return nil
}

// View returns the rendering view of the cell.
func (c *TerrainCell) View() TerrainView {
	v := TerrainView{
		Kind:         c.Kind,
		HealthImpact: c.HealthImpact,
		DangerMarked: c.DangerMarked,
	}
	if c.Kind == TerrainFoodPatch {
		stock := c.Stock
		v.RemainingStock = &stock
	}
	return v
}

// TerrainView is a read-only copy of a cell for renderers.
type TerrainView struct {
	Kind           TerrainKind
	HealthImpact   int
	DangerMarked   bool
	RemainingStock *int // nil unless the cell is a FoodPatch
}
