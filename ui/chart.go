package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/renderer"
	"github.com/pthm-cable/ecosim/telemetry"
)

// PopulationChart plots per-species population over the last turns.
type PopulationChart struct {
	renderer      *Renderer
	width, height int32
}

// NewPopulationChart creates a chart of the given size.
func NewPopulationChart(width, height int32) *PopulationChart {
	return &PopulationChart{renderer: NewRenderer(), width: width, height: height}
}

// Draw renders the chart and returns the Y position below it.
func (c *PopulationChart) Draw(x, y int32, history []telemetry.PopulationSnapshot) int32 {
	r := c.renderer
	y = r.DrawSectionHeader(x, y, "History")
	r.DrawPanel(x, y, c.width, c.height)

	// One pixel column per turn, newest on the right
	n := int(c.width) - 2
	if len(history) > n {
		history = history[len(history)-n:]
	}
	if len(history) < 2 {
		return y + c.height + 6
	}

	peak := 1
	for _, snap := range history {
		for _, sp := range components.AllSpecies() {
			peak = max(peak, snap.Count(sp))
		}
	}

	bottom := float32(y + c.height - 2)
	scaleY := float32(c.height-4) / float32(peak)
	for _, sp := range components.AllSpecies() {
		color := renderer.SpeciesColors[sp]
		for i := 1; i < len(history); i++ {
			x0 := float32(x + 1 + int32(i-1))
			x1 := float32(x + 1 + int32(i))
			y0 := bottom - float32(history[i-1].Count(sp))*scaleY
			y1 := bottom - float32(history[i].Count(sp))*scaleY
			rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, color)
		}
	}
	return y + c.height + 6
}
