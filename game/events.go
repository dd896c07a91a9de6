package game

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/config"
	"github.com/pthm-cable/ecosim/systems"
	"github.com/pthm-cable/ecosim/telemetry"
)

// TriggerMassDangerEvent converts between half and all of the grid to swamp
// and propagates danger from every converted cell. It returns the number of
// cells picked, including any that were already swamp.
func (e *Ecosystem) TriggerMassDangerEvent() int {
	converted := e.grid.MassDanger(e.rng)
	e.events.Add(telemetry.NewMassDangerEvent(e.turn, converted))
	slog.Info("mass danger", "turn", e.turn, "picked", converted, "cells", e.cfg.Derived.Cells)
	return converted
}

// SetBehaviorMode switches a species between peaceful and destructive
// movement. Destructive agents turn their surroundings to swamp after every
// move, starting with the next turn.
func (e *Ecosystem) SetBehaviorMode(sp components.Species, destructive bool) {
	mode := systems.ModePeaceful
	if destructive {
		mode = systems.ModeDestructive
	}
	if e.modes[sp] == mode {
		return
	}
	e.modes[sp] = mode
	e.events.Add(telemetry.NewBehaviorModeEvent(e.turn, sp, destructive))
	slog.Info("behavior mode", "turn", e.turn, "species", sp.String(), "mode", mode.String())
}

// BehaviorMode returns the current mode of a species.
func (e *Ecosystem) BehaviorMode(sp components.Species) systems.BehaviorMode {
	return e.modes[sp]
}

// EventSchedule fires the configured one-shot events when their turn comes.
type EventSchedule struct {
	MassDangerTurn   int // 0 = never
	BehaviorFlipTurn int // 0 = never
	FlipSpecies      components.Species

	massDangerFired bool
	flipFired       bool
}

// NewEventSchedule converts the config's budget fractions into turn numbers.
func NewEventSchedule(cfg *config.Config) (*EventSchedule, error) {
	s := &EventSchedule{
		MassDangerTurn:   fractionTurn(cfg.Events.MassDangerAt, cfg.Simulation.Turns),
		BehaviorFlipTurn: fractionTurn(cfg.Events.BehaviorFlipAt, cfg.Simulation.Turns),
	}
	if s.BehaviorFlipTurn > 0 {
		sp, err := components.ParseSpecies(cfg.Events.BehaviorFlipSpecies)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		s.FlipSpecies = sp
	}
	return s, nil
}

func fractionTurn(frac float64, turns int) int {
	if frac <= 0 || turns <= 0 {
		return 0
	}
	return max(1, int(math.Round(frac*float64(turns))))
}

// Fire triggers every event whose turn has been reached and not yet fired.
// Call it between turns.
func (s *EventSchedule) Fire(e *Ecosystem) {
	if s.MassDangerTurn > 0 && !s.massDangerFired && e.Turn() >= s.MassDangerTurn {
		s.massDangerFired = true
		e.TriggerMassDangerEvent()
	}
	if s.BehaviorFlipTurn > 0 && !s.flipFired && e.Turn() >= s.BehaviorFlipTurn {
		s.flipFired = true
		e.SetBehaviorMode(s.FlipSpecies, true)
	}
}
