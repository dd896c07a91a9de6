// Package viewer runs the ecosystem in a raylib window.
package viewer

import (
	"errors"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/camera"
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/renderer"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/ui"
)

const controlsLegend = "SPACE pause  N step  M danger  wheel zoom  RMB pan  R reset"

// Viewer draws the grid and advances turns at a fixed rate.
type Viewer struct {
	eco      *game.Ecosystem
	schedule *game.EventSchedule
	cfg      *config.Config

	cam             *camera.Camera
	terrainRenderer *renderer.TerrainRenderer
	agentRenderer   *renderer.AgentRenderer

	hud        *ui.HUD
	cellPanel  *ui.CellPanel
	chart      *ui.PopulationChart
	eventPanel *ui.EventPanel

	paused         bool
	stepOnce       bool
	turnsPerSecond float32
	accum          float32
	hovered        *components.Position
}

// New creates a viewer. The raylib window must already be open.
func New(eco *game.Ecosystem, schedule *game.EventSchedule, cfg *config.Config) *Viewer {
	cell := cfg.Screen.CellSize
	gridW := float32(cfg.World.Width * cell)
	gridH := float32(cfg.World.Height * cell)
	panel := cfg.Screen.PanelWidth - 20

	return &Viewer{
		eco:      eco,
		schedule: schedule,
		cfg:      cfg,

		cam:             camera.New(gridW, gridH, gridW, gridH),
		terrainRenderer: renderer.NewTerrainRenderer(cell, eco.Seed()),
		agentRenderer:   renderer.NewAgentRenderer(cell),

		hud:        ui.NewHUD(),
		cellPanel:  ui.NewCellPanel(int32(panel)),
		chart:      ui.NewPopulationChart(int32(panel), 80),
		eventPanel: ui.NewEventPanel(int32(panel)),

		turnsPerSecond: float32(cfg.Screen.TargetFPS),
	}
}

// Run loops until the window is closed.
func (v *Viewer) Run() {
	for !rl.WindowShouldClose() {
		v.handleInput()
		v.update(rl.GetFrameTime())
		v.draw()
		v.eco.PerfCollector().RecordFrame()
	}
}

// update advances as many turns as the speed setting allows this frame.
func (v *Viewer) update(dt float32) {
	if v.stepOnce {
		v.stepOnce = false
		v.advance()
		return
	}
	if v.paused {
		return
	}
	v.accum += dt * v.turnsPerSecond
	for v.accum >= 1 {
		v.accum--
		if !v.advance() {
			v.accum = 0
			return
		}
	}
}

// advance fires due events and runs one turn. It reports whether a turn ran.
func (v *Viewer) advance() bool {
	v.schedule.Fire(v.eco)
	if _, err := v.eco.AdvanceOneTurn(); err != nil {
		if errors.Is(err, game.ErrTurnBudgetExhausted) && !v.paused {
			slog.Info("turn budget exhausted", "turn", v.eco.Turn())
			v.paused = true
		}
		return false
	}
	return true
}

func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyM) {
		v.eco.TriggerMassDangerEvent()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.cam.Reset()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + 0.1*wheel)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}

	mouse := rl.GetMousePosition()
	v.hovered = nil
	if x, y, ok := v.cam.CellAt(mouse.X, mouse.Y, float32(v.cfg.Screen.CellSize)); ok {
		v.hovered = &components.Position{X: x, Y: y}
	}
}

func (v *Viewer) draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Color{R: 15, G: 18, B: 22, A: 255})

	v.terrainRenderer.Draw(v.eco, v.cam)
	v.agentRenderer.Draw(v.eco.LiveAgents(), v.cam, v.hovered)

	x := int32(v.cfg.World.Width*v.cfg.Screen.CellSize) + 10
	y := int32(10)

	var modes [components.NumSpecies]systems.BehaviorMode
	for _, sp := range components.AllSpecies() {
		modes[sp] = v.eco.BehaviorMode(sp)
	}

	y = v.hud.Draw(x, y, ui.HUDData{
		Turn:           v.eco.Turn(),
		TurnsRemaining: v.eco.TurnsRemaining(),
		Population:     v.eco.Population(),
		Terrain:        v.eco.TerrainCounts(),
		Modes:          modes,
		TurnsPerSecond: v.turnsPerSecond,
		FPS:            rl.GetFPS(),
		Paused:         v.paused,
	})

	if v.hovered != nil {
		var agent *game.AgentView
		if a, ok := v.eco.AgentAt(*v.hovered); ok {
			agent = &a
		}
		y = v.cellPanel.Draw(x, y, *v.hovered, v.eco.TerrainAt(*v.hovered), agent)
	}

	y = v.chart.Draw(x, y, v.eco.PopulationHistory())

	actions := v.eventPanel.Draw(x, y, v.paused, v.turnsPerSecond, modes, v.eco.RecentEvents())
	v.apply(actions)

	v.hud.DrawControls(10, v.cfg.Derived.ScreenHeight, controlsLegend)
}

// apply executes the panel actions from the last frame.
func (v *Viewer) apply(a ui.EventActions) {
	if a.TogglePause {
		v.paused = !v.paused
	}
	if a.Step {
		v.stepOnce = true
	}
	if a.MassDanger {
		v.eco.TriggerMassDangerEvent()
	}
	if a.FlipSpecies != nil {
		sp := *a.FlipSpecies
		v.eco.SetBehaviorMode(sp, v.eco.BehaviorMode(sp) != systems.ModeDestructive)
	}
	v.turnsPerSecond = a.Speed
}
