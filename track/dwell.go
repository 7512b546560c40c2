package track

import (
	"time"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// ClearReason identifies why an active dwell anchor was dropped.
type ClearReason string

const (
	ClearScroll     ClearReason = "scroll"
	ClearOverlay    ClearReason = "overlay"
	ClearInputFocus ClearReason = "input_focus"
	ClearFired      ClearReason = "fired"
	ClearReset      ClearReason = "reset"
)

// Machine is the two-state dwell state machine: NoAnchor and Anchored.
// Anchoring happens on sample arrival, firing on the evaluation poll; the
// two are decoupled by design. Machine is not safe for concurrent use; the
// owning Tracker serializes access.
type Machine struct {
	cfg    config.TrackerConfig
	anchor *types.DwellAnchor
}

// NewMachine creates a dwell machine with the given thresholds.
func NewMachine(cfg config.TrackerConfig) *Machine {
	return &Machine{cfg: cfg}
}

// Observe feeds one smoothed position into the machine. With no anchor the
// position becomes the new anchor; with an anchor the position re-anchors
// when it exits the dwell radius, which restarts the dwell timer.
func (m *Machine) Observe(pos types.Point, now time.Time) {
	if m.anchor == nil {
		m.anchor = &types.DwellAnchor{Anchor: pos, StartedAt: now}
		return
	}
	if pos.DistanceTo(m.anchor.Anchor) > m.cfg.DwellRadius {
		// Replaced, not mutated: a fresh anchor means a fresh dwell episode.
		m.anchor = &types.DwellAnchor{Anchor: pos, StartedAt: now}
	}
}

// Evaluate is the poll-tick check. It fires when the anchor has held for at
// least the dwell duration and the decayed velocity is below the rest
// threshold. Firing consumes the anchor, so an event can never fire twice
// for the same anchor.
func (m *Machine) Evaluate(state types.SmoothedState, now time.Time) (types.Point, bool) {
	if m.anchor == nil {
		return types.Point{}, false
	}
	if state.Position.DistanceTo(m.anchor.Anchor) > m.cfg.DwellRadius {
		m.anchor = &types.DwellAnchor{Anchor: state.Position, StartedAt: now}
		return types.Point{}, false
	}
	if now.Sub(m.anchor.StartedAt) < m.cfg.DwellDuration {
		return types.Point{}, false
	}
	if state.VelocityMagnitude >= m.cfg.RestVelocity {
		return types.Point{}, false
	}

	point := state.Position
	m.anchor = nil
	return point, true
}

// Clear drops the active anchor regardless of position. Scroll, overlay
// hover and input focus all force the machine back to NoAnchor.
func (m *Machine) Clear() {
	m.anchor = nil
}

// Anchor returns the active anchor, or nil when the machine is in NoAnchor.
func (m *Machine) Anchor() *types.DwellAnchor {
	return m.anchor
}
