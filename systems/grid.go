package systems

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ecosim/components"
)

// OccupiedError is returned by Grid.Place when another agent holds the cell.
type OccupiedError struct {
	At       components.Position
	Occupant ecs.Entity
}

func (e *OccupiedError) Error() string {
	return fmt.Sprintf("cell (%d,%d) is occupied", e.At.X, e.At.Y)
}

// Rect is a clipped sub-rectangle of the grid. Min is inclusive, Max exclusive.
type Rect struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Contains reports whether p lies inside the rectangle.
func (r Rect) Contains(p components.Position) bool {
	return p.X >= r.MinX && p.X < r.MaxX && p.Y >= r.MinY && p.Y < r.MaxY
}

// Area returns the number of cells covered.
func (r Rect) Area() int {
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
}

// Positions lists the covered cells column by column.
func (r Rect) Positions() []components.Position {
	out := make([]components.Position, 0, r.Area())
	for x := r.MinX; x < r.MaxX; x++ {
		for y := r.MinY; y < r.MaxY; y++ {
			out = append(out, components.Position{X: x, Y: y})
		}
	}
	return out
}

// Grid holds the two co-indexed layers: at most one agent per cell, and
// exactly one terrain cell per coordinate.
type Grid struct {
	width, height int
	agents        []ecs.Entity // zero entity = empty
	terrain       []*TerrainCell
	rules         TerrainRules
}

// NewGrid creates a grid covered in grassland with an empty agent layer.
func NewGrid(width, height int, rules TerrainRules) *Grid {
	g := &Grid{
		width:   width,
		height:  height,
		agents:  make([]ecs.Entity, width*height),
		terrain: make([]*TerrainCell, width*height),
		rules:   rules,
	}
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			p := components.Position{X: x, Y: y}
			g.terrain[g.index(p)] = NewTerrainCell(TerrainGrassland, p, 0)
		}
	}
	return g
}

func (g *Grid) index(p components.Position) int {
	return p.Y*g.width + p.X
}

// Dimensions returns the grid width and height in cells.
func (g *Grid) Dimensions() (width, height int) {
	return g.width, g.height
}

// Rules returns the terrain rules the grid was built with.
func (g *Grid) Rules() TerrainRules {
	return g.rules
}

// InBounds reports whether p is a valid coordinate.
func (g *Grid) InBounds(p components.Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Clamp moves p onto the grid. There is no wraparound.
func (g *Grid) Clamp(p components.Position) components.Position {
	return components.Position{
		X: min(max(p.X, 0), g.width-1),
		Y: min(max(p.Y, 0), g.height-1),
	}
}

// AgentAt returns the agent on the cell, if any.
func (g *Grid) AgentAt(p components.Position) (ecs.Entity, bool) {
	p = g.Clamp(p)
	e := g.agents[g.index(p)]
	return e, e != noAgent
}

// Place puts e on the (clamped) cell. It fails with *OccupiedError when a
// different agent is already there. The caller is responsible for vacating
// the agent's previous cell.
func (g *Grid) Place(e ecs.Entity, p components.Position) (components.Position, error) {
	p = g.Clamp(p)
	idx := g.index(p)
	if cur := g.agents[idx]; cur != noAgent && cur != e {
		return p, &OccupiedError{At: p, Occupant: cur}
	}
	g.agents[idx] = e
	return p, nil
}

// Vacate clears the agent layer at p.
func (g *Grid) Vacate(p components.Position) {
	g.agents[g.index(g.Clamp(p))] = noAgent
}

// TerrainAt returns the terrain cell at the (clamped) coordinate.
func (g *Grid) TerrainAt(p components.Position) *TerrainCell {
	return g.terrain[g.index(g.Clamp(p))]
}

// Neighborhood returns the Chebyshev square of the given radius around p,
// clipped to the grid. Rectangles at edges and corners are asymmetric.
func (g *Grid) Neighborhood(p components.Position, radius int) Rect {
	p = g.Clamp(p)
	return Rect{
		MinX: max(0, p.X-radius),
		MinY: max(0, p.Y-radius),
		MaxX: min(g.width, p.X+radius+1),
		MaxY: min(g.height, p.Y+radius+1),
	}
}

// Bounds returns the rectangle covering the whole grid.
func (g *Grid) Bounds() Rect {
	return Rect{MaxX: g.width, MaxY: g.height}
}

// EmptyCells lists the cells of r with no agent.
func (g *Grid) EmptyCells(r Rect) []components.Position {
	var out []components.Position
	for _, p := range r.Positions() {
		if g.agents[g.index(p)] == noAgent {
			out = append(out, p)
		}
	}
	return out
}

// replaceTerrain swaps in a new cell at its own coordinates.
func (g *Grid) replaceTerrain(c *TerrainCell) {
	g.terrain[g.index(c.coords)] = c
}

// SetTerrain replaces the cell at p with a fresh cell of the given kind.
// FoodPatch stock is rolled from the grid's rules.
func (g *Grid) SetTerrain(p components.Position, kind TerrainKind, rng *rand.Rand) *TerrainCell {
	p = g.Clamp(p)
	stock := 0
	if kind == TerrainFoodPatch {
		stock = g.rules.rollStock(rng)
	}
	c := NewTerrainCell(kind, p, stock)
	g.replaceTerrain(c)
	return c
}

// AdvanceTerrain runs the deferred transition for the cell at p. The malus
// carried by the old cell is re-applied on top of the new kind's default.
// It reports whether the cell changed.
func (g *Grid) AdvanceTerrain(p components.Position, rng *rand.Rand) bool {
	old := g.TerrainAt(p)
	next := old.advance(g.rules, rng)
	if next == nil {
		return false
	}
	g.swap(old, next)
	return true
}

// swap replaces old with next, carrying the danger malus over.
func (g *Grid) swap(old, next *TerrainCell) {
	next.HealthImpact = next.DefaultImpact() + old.Malus()
	next.DangerMarked = old.DangerMarked
	g.replaceTerrain(next)
}

// TerrainCounts returns the number of cells of each kind.
func (g *Grid) TerrainCounts() [NumTerrainKinds]int {
	var counts [NumTerrainKinds]int
	for _, c := range g.terrain {
		counts[c.Kind]++
	}
	return counts
}

// Occupants returns every occupied cell and its agent, in layer order.
func (g *Grid) Occupants() map[components.Position]ecs.Entity {
	out := make(map[components.Position]ecs.Entity)
	for i, e := range g.agents {
		if e != noAgent {
			out[components.Position{X: i % g.width, Y: i / g.width}] = e
		}
	}
	return out
}

// CheckTerrain verifies that every coordinate holds exactly its own cell.
func (g *Grid) CheckTerrain() error {
	for i, c := range g.terrain {
		want := components.Position{X: i % g.width, Y: i / g.width}
		if c == nil {
			return fmt.Errorf("no terrain at (%d,%d)", want.X, want.Y)
		}
		if c.coords != want {
			return fmt.Errorf("terrain at (%d,%d) claims coordinates (%d,%d)", want.X, want.Y, c.coords.X, c.coords.Y)
		}
	}
	return nil
}

var noAgent ecs.Entity
