// Package telemetry provides ecosystem health tracking, bookmarking, and CSV output.
package telemetry

import (
	"fmt"

	"github.com/pthm-cable/ecosim/components"
)

// EventType identifies global simulation events.
type EventType uint8

const (
	EventMassDanger EventType = iota
	EventBehaviorMode
	EventExtinction
)

// Event is a notable global event shown in the HUD log.
type Event struct {
	Type    EventType
	Turn    int
	Species components.Species // behavior mode and extinction only
	Count   int                // cells converted, or 1/0 for mode on/off
}

// NewMassDangerEvent creates a mass danger event.
func NewMassDangerEvent(turn, converted int) Event {
	return Event{Type: EventMassDanger, Turn: turn, Count: converted}
}

// NewBehaviorModeEvent creates a behavior mode change event.
func NewBehaviorModeEvent(turn int, sp components.Species, destructive bool) Event {
	e := Event{Type: EventBehaviorMode, Turn: turn, Species: sp}
	if destructive {
		e.Count = 1
	}
	return e
}

// NewExtinctionEvent creates a species extinction event.
func NewExtinctionEvent(turn int, sp components.Species) Event {
	return Event{Type: EventExtinction, Turn: turn, Species: sp}
}

// String renders the event as a single log line.
func (e Event) String() string {
	switch e.Type {
	case EventMassDanger:
		return fmt.Sprintf("t%d mass danger: %d cells", e.Turn, e.Count)
	case EventBehaviorMode:
		mode := "peaceful"
		if e.Count == 1 {
			mode = "destructive"
		}
		return fmt.Sprintf("t%d %s now %s", e.Turn, e.Species, mode)
	case EventExtinction:
		return fmt.Sprintf("t%d %s extinct", e.Turn, e.Species)
	}
	return fmt.Sprintf("t%d event", e.Turn)
}

// EventLog keeps the most recent events in a ring buffer.
type EventLog struct {
	events []Event
	next   int
	full   bool
}

// NewEventLog creates a log holding up to size events.
func NewEventLog(size int) *EventLog {
	if size < 1 {
		size = 1
	}
	return &EventLog{events: make([]Event, size)}
}

// Add appends an event, evicting the oldest when full.
func (l *EventLog) Add(e Event) {
	l.events[l.next] = e
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns the stored events, oldest first.
func (l *EventLog) Recent() []Event {
	if !l.full {
		return append([]Event(nil), l.events[:l.next]...)
	}
	out := make([]Event, 0, len(l.events))
	out = append(out, l.events[l.next:]...)
	return append(out, l.events[:l.next]...)
}
