package systems

import (
	"math/rand"

	"github.com/pthm-cable/ecosim/components"
)

// PropagateDanger spreads the swamp at p onto its neighborhood. A neighbor
// is malused only while it is not a swamp and still sits at its default
// impact, so repeated calls and overlapping swamps never stack. It returns
// the number of cells marked. Calling it on a non-swamp cell does nothing.
func (g *Grid) PropagateDanger(p components.Position, radius int) int {
	src := g.TerrainAt(p)
	if src.Kind != TerrainSwamp {
		return 0
	}
	marked := 0
	for _, q := range g.Neighborhood(src.coords, radius).Positions() {
		if q == src.coords {
			continue
		}
		c := g.TerrainAt(q)
		if c.Kind == TerrainSwamp || c.HealthImpact != c.DefaultImpact() {
			continue
		}
		c.DangerMarked = true
		c.HealthImpact += DangerMalus
		marked++
	}
	return marked
}

// ConvertToSwamps turns every listed cell into a swamp, then propagates
// danger from each. All conversions happen before any propagation so that
// already-converted neighbors are never malused.
func (g *Grid) ConvertToSwamps(cells []components.Position, rng *rand.Rand) int {
	converted := make([]components.Position, 0, len(cells))
	for _, p := range cells {
		if g.TerrainAt(p).Kind == TerrainSwamp {
			continue
		}
		converted = append(converted, g.SetTerrain(p, TerrainSwamp, rng).coords)
	}
	for _, p := range converted {
		g.PropagateDanger(p, g.rules.DangerRadius)
	}
	return len(converted)
}

// Rampage converts the radius-1 square around p, p included, into swamp.
func (g *Grid) Rampage(p components.Position, rng *rand.Rand) int {
	return g.ConvertToSwamps(g.Neighborhood(p, 1).Positions(), rng)
}

// MassDanger converts a random subset of between half and all of the grid's
// cells to swamp. It returns how many cells were picked; cells that were
// already swamp count towards the pick but are not re-propagated.
func (g *Grid) MassDanger(rng *rand.Rand) int {
	n := g.width * g.height
	lo := (n + 1) / 2
	k := lo + rng.Intn(n-lo+1)

	all := g.Bounds().Positions()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	g.ConvertToSwamps(all[:k], rng)
	return k
}
