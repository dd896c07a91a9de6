package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/renderer"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// HUDData holds all the data needed to render the status section.
type HUDData struct {
	Turn           int
	TurnsRemaining int
	Population     telemetry.PopulationSnapshot
	Terrain        [systems.NumTerrainKinds]int
	Modes          [components.NumSpecies]systems.BehaviorMode
	TurnsPerSecond float32
	FPS            int32
	Paused         bool
}

// HUD renders run status and species counts.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD and returns the Y position below it.
func (h *HUD) Draw(x, y int32, data HUDData) int32 {
	r := h.renderer

	rl.DrawText("Ecosim", x, y, 20, rl.White)
	y += 26

	status := "Running"
	statusColor := rl.Green
	if data.Paused {
		status, statusColor = "PAUSED", rl.Yellow
	}
	if data.TurnsRemaining == 0 {
		status, statusColor = "Finished", rl.Orange
	}
	rl.DrawText(status, x, y, r.Theme.HeaderFontSize, statusColor)
	y += r.Theme.LineHeight + 2

	y = r.DrawLabelValue(x, y, "Turn", fmt.Sprintf("%d (%d left)", data.Turn, data.TurnsRemaining))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.0f t/s | %d fps", data.TurnsPerSecond, data.FPS))
	y += 6

	y = r.DrawSectionHeader(x, y, "Population")
	for _, sp := range components.AllSpecies() {
		value := fmt.Sprintf("%d", data.Population.Count(sp))
		if data.Modes[sp] == systems.ModeDestructive {
			value += " !"
		}
		y = r.DrawSwatchValue(x, y, renderer.SpeciesColors[sp], sp.String(), value)
	}
	y = r.DrawLabelValue(x, y, "Total", fmt.Sprintf("%d", data.Population.Total()))
	y += 6

	y = r.DrawSectionHeader(x, y, "Terrain")
	for k := systems.TerrainKind(0); k < systems.NumTerrainKinds; k++ {
		y = r.DrawLabelValue(x, y, k.String(), fmt.Sprintf("%d", data.Terrain[k]))
	}
	return y + 6
}

// DrawControls renders the key legend at the bottom of the panel.
func (h *HUD) DrawControls(x, screenHeight int32, controls string) {
	rl.DrawText(controls, x, screenHeight-20, 10, rl.Gray)
}

// CellPanel shows the terrain and occupant of the hovered cell.
type CellPanel struct {
	renderer *Renderer
	width    int32
}

// NewCellPanel creates a new cell panel.
func NewCellPanel(width int32) *CellPanel {
	return &CellPanel{renderer: NewRenderer(), width: width}
}

// Draw renders the panel and returns the Y position below it.
func (c *CellPanel) Draw(x, y int32, at components.Position, terrain systems.TerrainView, agent *game.AgentView) int32 {
	r := c.renderer

	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Cell (%d, %d)", at.X, at.Y))
	y = r.DrawLabelValue(x, y, "Terrain", terrain.Kind.String())
	y = r.DrawLabelValue(x, y, "Impact", fmt.Sprintf("%+d", terrain.HealthImpact))
	if terrain.RemainingStock != nil {
		y = r.DrawLabelValue(x, y, "Stock", fmt.Sprintf("%d", *terrain.RemainingStock))
	}
	if terrain.DangerMarked {
		rl.DrawText("danger marked", x, y, r.Theme.FontSize, rl.Red)
		y += r.Theme.LineHeight
	}

	if agent == nil {
		return y + 6
	}
	y += 4
	y = r.DrawLabelValue(x, y, "Agent", fmt.Sprintf("#%d %s", agent.ID, agent.Species))
	y = r.DrawHealthBar(x, y, "Health", agent.Health, agent.MaxHealth, c.width)
	if agent.Newborn {
		rl.DrawText("newborn", x, y, r.Theme.FontSize, rl.SkyBlue)
		y += r.Theme.LineHeight
	}
	return y + 6
}
