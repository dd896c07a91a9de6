// Package renderer draws the grid and its agents with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/camera"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/game"
)

// SpeciesColors maps each species to its marker color.
var SpeciesColors = [components.NumSpecies]rl.Color{
	components.SpeciesAnt:    {R: 150, G: 70, B: 40, A: 255},
	components.SpeciesCicada: {R: 70, G: 170, B: 210, A: 255},
	components.SpeciesMogwai: {R: 235, G: 235, B: 235, A: 255},
}

// AgentRenderer draws agents as discs with a health ring.
type AgentRenderer struct {
	cellSize float32
}

// NewAgentRenderer creates an agent renderer for cells of the given size.
func NewAgentRenderer(cellSize int) *AgentRenderer {
	return &AgentRenderer{cellSize: float32(cellSize)}
}

// Draw renders every visible agent. The selected cell, if any, is outlined.
func (r *AgentRenderer) Draw(agents []game.AgentView, cam *camera.Camera, selected *components.Position) {
	half := r.cellSize / 2
	radius := half * 0.7 * cam.Zoom

	for _, a := range agents {
		cx := float32(a.Coords.X)*r.cellSize + half
		cy := float32(a.Coords.Y)*r.cellSize + half
		if !cam.IsVisible(cx, cy, half) {
			continue
		}
		sx, sy := cam.WorldToScreen(cx, cy)
		center := rl.Vector2{X: sx, Y: sy}

		color := SpeciesColors[a.Species]
		if a.Newborn {
			color = rl.ColorBrightness(color, 0.3)
		}
		rl.DrawCircleV(center, radius, color)

		// Health ring, clockwise from the top
		if a.MaxHealth > 0 {
			ratio := float32(a.Health) / float32(a.MaxHealth)
			rl.DrawRing(center, radius, radius+2*cam.Zoom, -90, -90+360*ratio, 24, healthColor(ratio))
		}
	}

	if selected != nil {
		sx, sy := cam.WorldToScreen(float32(selected.X)*r.cellSize, float32(selected.Y)*r.cellSize)
		size := r.cellSize * cam.Zoom
		rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: size, Height: size}, 2, rl.White)
	}
}

func healthColor(ratio float32) rl.Color {
	switch {
	case ratio < 0.3:
		return rl.Color{R: 200, G: 60, B: 60, A: 255}
	case ratio < 0.6:
		return rl.Color{R: 210, G: 180, B: 80, A: 255}
	default:
		return rl.Color{R: 90, G: 200, B: 90, A: 255}
	}
}
