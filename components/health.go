package components

// Health tracks an agent's hit points. Value stays within [0, Max].
type Health struct {
	Value int
	Max   int
}

// Add applies delta, clamping into [0, Max]. It reports whether this call
// brought the agent to zero, so a death is signalled exactly once.
func (h *Health) Add(delta int) (died bool) {
	wasAlive := h.Value > 0
	h.Value = min(max(h.Value+delta, 0), h.Max)
	return wasAlive && h.Value == 0
}

// Dead reports whether health has run out.
func (h *Health) Dead() bool {
	return h.Value <= 0
}

// Ratio returns Value/Max for display.
func (h *Health) Ratio() float32 {
	if h.Max <= 0 {
		return 0
	}
	return float32(h.Value) / float32(h.Max)
}
