package systems

import (
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/ecosim/components"
)

// SeedSwamps places the initial swamp clusters. A cell starts as swamp where
// normalized simplex noise at (x*scale, y*scale) exceeds threshold. Danger is
// propagated only after every swamp is in place. A threshold of 0 or less
// disables seeding.
func (g *Grid) SeedSwamps(seed int64, scale, threshold float64, rng *rand.Rand) int {
	if threshold <= 0 {
		return 0
	}
	noise := opensimplex.NewNormalized(seed)

	var cells []components.Position
	for _, p := range g.Bounds().Positions() {
		if noise.Eval2(float64(p.X)*scale, float64(p.Y)*scale) > threshold {
			cells = append(cells, p)
		}
	}
	return g.ConvertToSwamps(cells, rng)
}

// ScatterFood turns n random grassland cells into food patches. Cells
// already malused by a nearby swamp keep their malus.
func (g *Grid) ScatterFood(n int, rng *rand.Rand) int {
	var candidates []components.Position
	for _, p := range g.Bounds().Positions() {
		if g.TerrainAt(p).Kind == TerrainGrassland {
			candidates = append(candidates, p)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	n = min(n, len(candidates))
	for _, p := range candidates[:n] {
		old := g.TerrainAt(p)
		g.swap(old, NewTerrainCell(TerrainFoodPatch, p, g.rules.rollStock(rng)))
	}
	return n
}
