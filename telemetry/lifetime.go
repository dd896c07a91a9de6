package telemetry

import "github.com/pthm-cable/ecosim/components"

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	Species   components.Species
	BirthTurn int
	Founder   bool // placed at initialization rather than born

	// Lineage
	ParentA, ParentB uint32
	Generation       int

	// Reproduction
	Children int

	PeakHealth int
}

// LifetimeTracker manages per-agent lifetime statistics, keyed by organism ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// RegisterFounder creates lifetime stats for an agent placed at initialization.
func (lt *LifetimeTracker) RegisterFounder(id uint32, sp components.Species, health int) {
	lt.stats[id] = &LifetimeStats{
		Species:    sp,
		Founder:    true,
		PeakHealth: health,
	}
}

// RegisterBirth creates lifetime stats for a newborn and credits both parents.
func (lt *LifetimeTracker) RegisterBirth(id uint32, sp components.Species, turn int, parentA, parentB uint32, health int) {
	gen := 0
	for _, pid := range []uint32{parentA, parentB} {
		if p := lt.stats[pid]; p != nil {
			p.Children++
			gen = max(gen, p.Generation)
		}
	}
	lt.stats[id] = &LifetimeStats{
		Species:    sp,
		BirthTurn:  turn,
		ParentA:    parentA,
		ParentB:    parentB,
		Generation: gen + 1,
		PeakHealth: health,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// UpdateHealth tracks peak health.
func (lt *LifetimeTracker) UpdateHealth(id uint32, health int) {
	if s := lt.stats[id]; s != nil && health > s.PeakHealth {
		s.PeakHealth = health
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// MaxGeneration returns the deepest generation among living agents.
func (lt *LifetimeTracker) MaxGeneration() int {
	g := 0
	for _, s := range lt.stats {
		g = max(g, s.Generation)
	}
	return g
}
