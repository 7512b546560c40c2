package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hufamily/ThirdEye-sub000/config"
)

func testTrackerConfig() config.TrackerConfig {
	return config.TrackerConfig{
		PositionAlpha:      0.35,
		VelocityAlpha:      0.3,
		VelocityHalfLife:   300 * time.Millisecond,
		SampleInterval:     100 * time.Millisecond,
		DwellRadius:        50,
		DwellDuration:      2 * time.Second,
		RestVelocity:       15,
		PollInterval:       200 * time.Millisecond,
		Cooldown:           30 * time.Second,
		CooldownGrid:       100,
		SessionIdleTimeout: 10 * time.Minute,
	}
}

func TestSmoother_FirstSample(t *testing.T) {
	s := NewSmoother(testTrackerConfig())
	now := time.Now()

	state := s.Update(100, 200, now)

	assert.Equal(t, 100.0, state.Position.X)
	assert.Equal(t, 200.0, state.Position.Y)
	assert.Zero(t, state.VelocityMagnitude)
	assert.Equal(t, now, state.LastSampleTime)
}

func TestSmoother_PositionEMA(t *testing.T) {
	cfg := testTrackerConfig()
	s := NewSmoother(cfg)
	now := time.Now()

	s.Update(0, 0, now)
	state := s.Update(100, 0, now.Add(100*time.Millisecond))

	// One EMA step toward the new sample.
	assert.InDelta(t, cfg.PositionAlpha*100, state.Position.X, 1e-9)
	assert.Zero(t, state.Position.Y)
}

func TestSmoother_VelocityEMA(t *testing.T) {
	cfg := testTrackerConfig()
	s := NewSmoother(cfg)
	now := time.Now()

	s.Update(0, 0, now)
	// 100 px in 100 ms is 1000 px/s raw.
	state := s.Update(100, 0, now.Add(100*time.Millisecond))

	assert.InDelta(t, cfg.VelocityAlpha*1000, state.VelocityMagnitude, 1e-6)
}

func TestSmoother_OutOfOrderSampleKeepsState(t *testing.T) {
	s := NewSmoother(testTrackerConfig())
	now := time.Now()

	s.Update(0, 0, now)
	before := s.Update(100, 0, now.Add(100*time.Millisecond))
	after := s.Update(500, 500, now.Add(50*time.Millisecond))

	assert.Equal(t, before.Position, after.Position)
	assert.Equal(t, before.VelocityMagnitude, after.VelocityMagnitude)
}

func TestSmoother_DecayHalvesVelocityPerHalfLife(t *testing.T) {
	cfg := testTrackerConfig()
	s := NewSmoother(cfg)
	now := time.Now()

	s.Update(0, 0, now)
	state := s.Update(100, 0, now.Add(100*time.Millisecond))
	v0 := state.VelocityMagnitude
	require.Positive(t, v0)

	// One half-life past the sample interval threshold.
	decayed := s.Decay(now.Add(100*time.Millisecond + 300*time.Millisecond))

	assert.InDelta(t, v0/2, decayed.VelocityMagnitude, v0*0.01)
}

func TestSmoother_DecaySkippedWhileStreamLive(t *testing.T) {
	cfg := testTrackerConfig()
	s := NewSmoother(cfg)
	now := time.Now()

	s.Update(0, 0, now)
	state := s.Update(100, 0, now.Add(100*time.Millisecond))
	v0 := state.VelocityMagnitude

	// Within the sample interval, decay is a no-op.
	unchanged := s.Decay(now.Add(150 * time.Millisecond))
	assert.Equal(t, v0, unchanged.VelocityMagnitude)
}

func TestSmoother_DecayAccumulates(t *testing.T) {
	cfg := testTrackerConfig()
	s := NewSmoother(cfg)
	now := time.Now()

	s.Update(0, 0, now)
	state := s.Update(100, 0, now.Add(100*time.Millisecond))
	v0 := state.VelocityMagnitude

	// Two successive decay steps of one half-life each.
	s.Decay(now.Add(100*time.Millisecond + 300*time.Millisecond))
	final := s.Decay(now.Add(100*time.Millisecond + 600*time.Millisecond))

	assert.InDelta(t, v0/4, final.VelocityMagnitude, v0*0.01)
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(testTrackerConfig())
	now := time.Now()

	s.Update(100, 100, now)
	s.Update(200, 200, now.Add(100*time.Millisecond))
	s.Reset()

	state := s.State()
	assert.Zero(t, state.Position.X)
	assert.Zero(t, state.Position.Y)
	assert.Zero(t, state.VelocityMagnitude)

	// After reset the next sample is treated as the first again.
	state = s.Update(500, 500, now.Add(time.Second))
	assert.Equal(t, 500.0, state.Position.X)
	assert.Zero(t, state.VelocityMagnitude)
}
