package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// EventActions reports which controls were used this frame.
type EventActions struct {
	TogglePause bool
	Step        bool
	MassDanger  bool
	// FlipSpecies is set when a species' behavior button was pressed
	FlipSpecies *components.Species
	Speed       float32
}

// EventPanel holds the run controls and the recent event log.
type EventPanel struct {
	renderer *Renderer
	width    int32
}

// NewEventPanel creates a new event panel.
func NewEventPanel(width int32) *EventPanel {
	return &EventPanel{renderer: NewRenderer(), width: width}
}

// Draw renders the controls and returns what was clicked.
func (p *EventPanel) Draw(x, y int32, paused bool, speed float32, modes [components.NumSpecies]systems.BehaviorMode, events []telemetry.Event) EventActions {
	r := p.renderer
	actions := EventActions{Speed: speed}

	fx, fy := float32(x), float32(y)
	half := float32(p.width-6) / 2

	y = r.DrawSectionHeader(x, y, "Controls")
	fy = float32(y)

	pauseText := "Pause"
	if paused {
		pauseText = "Resume"
	}
	actions.TogglePause = gui.Button(rl.Rectangle{X: fx, Y: fy, Width: half, Height: 22}, pauseText)
	actions.Step = gui.Button(rl.Rectangle{X: fx + half + 6, Y: fy, Width: half, Height: 22}, "Step")
	fy += 28

	actions.Speed = gui.SliderBar(
		rl.Rectangle{X: fx + 40, Y: fy, Width: float32(p.width) - 80, Height: 16},
		"slow", fmt.Sprintf("%.0f", speed),
		speed, 1, 60,
	)
	fy += 24

	actions.MassDanger = gui.Button(rl.Rectangle{X: fx, Y: fy, Width: float32(p.width), Height: 22}, "Mass danger")
	fy += 28

	for _, sp := range components.AllSpecies() {
		label := fmt.Sprintf("%s: %s", sp, modes[sp])
		if gui.Button(rl.Rectangle{X: fx, Y: fy, Width: float32(p.width), Height: 20}, label) {
			flipped := sp
			actions.FlipSpecies = &flipped
		}
		fy += 24
	}

	y = int32(fy) + 6
	y = r.DrawSectionHeader(x, y, "Events")
	for i := len(events) - 1; i >= 0; i-- {
		rl.DrawText(events[i].String(), x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}
	return actions
}
