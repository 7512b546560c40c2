package track

import (
	"math"
	"time"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Smoother applies an exponential moving average to raw sample positions
// and a separate EMA to instantaneous speed. When samples stop arriving the
// velocity estimate decays exponentially toward zero; without the decay a
// stationary cursor would hold its last speed forever and never read as at
// rest. Smoother is not safe for concurrent use; the owning Tracker
// serializes access.
type Smoother struct {
	cfg config.TrackerConfig

	havePrev  bool
	prevRaw   types.Point
	state     types.SmoothedState
	lastDecay time.Time
}

// NewSmoother creates a smoother with the given tracker thresholds.
func NewSmoother(cfg config.TrackerConfig) *Smoother {
	return &Smoother{cfg: cfg}
}

// Update consumes one raw sample and returns the new smoothed state.
// It never blocks and has no side effects beyond internal state.
func (s *Smoother) Update(rawX, rawY float64, now time.Time) types.SmoothedState {
	raw := types.Point{X: rawX, Y: rawY}

	if !s.havePrev {
		s.havePrev = true
		s.prevRaw = raw
		s.state = types.SmoothedState{
			Position:          raw,
			VelocityMagnitude: 0,
			LastSampleTime:    now,
		}
		s.lastDecay = now
		return s.state
	}

	dt := now.Sub(s.state.LastSampleTime).Seconds()
	if dt <= 0 {
		// Out-of-order or duplicate timestamp; keep position fresh, skip speed.
		s.prevRaw = raw
		return s.state
	}

	speed := s.prevRaw.DistanceTo(raw) / dt

	a1 := s.cfg.PositionAlpha
	a2 := s.cfg.VelocityAlpha
	s.state.Position = types.Point{
		X: s.state.Position.X + a1*(raw.X-s.state.Position.X),
		Y: s.state.Position.Y + a1*(raw.Y-s.state.Position.Y),
	}
	s.state.VelocityMagnitude += a2 * (speed - s.state.VelocityMagnitude)
	s.state.LastSampleTime = now
	s.lastDecay = now
	s.prevRaw = raw

	return s.state
}

// Decay applies the exponential velocity decay for the time elapsed since
// the last sample or decay step. It only acts once the sample interval has
// passed without a fresh sample; a live stream is decayed by Update itself
// through genuinely small speeds.
func (s *Smoother) Decay(now time.Time) types.SmoothedState {
	if !s.havePrev {
		return s.state
	}
	if now.Sub(s.state.LastSampleTime) <= s.cfg.SampleInterval {
		return s.state
	}

	elapsed := now.Sub(s.lastDecay)
	if elapsed <= 0 {
		return s.state
	}

	halfLife := s.cfg.VelocityHalfLife.Seconds()
	if halfLife <= 0 {
		s.state.VelocityMagnitude = 0
	} else {
		factor := math.Pow(0.5, elapsed.Seconds()/halfLife)
		s.state.VelocityMagnitude *= factor
	}
	s.lastDecay = now

	return s.state
}

// State returns the current smoothed state.
func (s *Smoother) State() types.SmoothedState {
	return s.state
}

// Reset discards all accumulated signal state.
func (s *Smoother) Reset() {
	s.havePrev = false
	s.prevRaw = types.Point{}
	s.state = types.SmoothedState{}
	s.lastDecay = time.Time{}
}
