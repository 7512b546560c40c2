package track

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// EventHandler consumes attention events. The tracker invokes it on a
// dedicated dispatch goroutine, one event at a time in epoch order, so
// slow downstream resolution never stalls the dwell evaluation poll and a
// later epoch can never overtake an earlier one.
type EventHandler func(ev types.AttentionEvent)

// eventBuffer bounds the dispatch backlog. Dwell episodes are seconds
// apart, so the buffer only fills when the consumer has stalled outright.
const eventBuffer = 16

// Tracker owns all mutable tracking state of one page/session: the signal
// smoother, the dwell machine, the cooldown registry, the overlay and
// input-focus flags, and the event epoch. It replaces what would otherwise
// be ambient module-level state with one constructible object carrying an
// explicit Reset and Close.
type Tracker struct {
	id      string
	cfg     config.TrackerConfig
	handler EventHandler
	logger  *zap.Logger

	mu            sync.Mutex
	smoother      *Smoother
	machine       *Machine
	cooldown      *Cooldown
	overlayActive bool
	inputFocused  bool
	lastExternal  time.Time
	lastActivity  time.Time
	epoch         uint64
	closed        bool

	cancel       context.CancelFunc
	done         chan struct{}
	events       chan types.AttentionEvent
	dispatchDone chan struct{}
}

// NewTracker creates a tracker for one session. A nil handler drops events;
// a nil logger is replaced with a nop logger.
func NewTracker(id string, cfg config.TrackerConfig, handler EventHandler, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		id:           id,
		cfg:          cfg,
		handler:      handler,
		logger:       logger.With(zap.String("component", "tracker"), zap.String("session", id)),
		smoother:     NewSmoother(cfg),
		machine:      NewMachine(cfg),
		cooldown:     NewCooldown(cfg.Cooldown),
		lastActivity: time.Now(),
	}
	if handler != nil {
		t.events = make(chan types.AttentionEvent, eventBuffer)
		t.dispatchDone = make(chan struct{})
		go t.dispatchLoop()
	}
	return t
}

func (t *Tracker) dispatchLoop() {
	defer close(t.dispatchDone)
	for ev := range t.events {
		t.handler(ev)
	}
}

// Start launches the dwell evaluation poll. The poll runs at a fixed
// interval independent of sample arrival until ctx is canceled or Close is
// called.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})

	go t.pollLoop(ctx)
}

func (t *Tracker) pollLoop(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Tick(now)
		}
	}
}

// OfferSample feeds one raw position sample into the pipeline. Sampling is
// event-driven and never blocks. While an external gaze source is fresh,
// pointer samples are ignored so the stronger signal wins; while the
// pointer rests on the result overlay or a text input has focus, samples
// update the smoothed signal but never anchor a dwell.
func (t *Tracker) OfferSample(p types.AttentionPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	now := p.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	t.lastActivity = now

	if p.Source == types.SourceExternal {
		t.lastExternal = now
	} else if !t.lastExternal.IsZero() && now.Sub(t.lastExternal) < 3*t.cfg.SampleInterval {
		return
	}

	state := t.smoother.Update(p.X, p.Y, now)

	if t.overlayActive || t.inputFocused {
		return
	}
	t.machine.Observe(state.Position, now)
}

// Tick runs one dwell evaluation step. The poll loop calls it on every
// ticker fire; tests call it directly with a synthetic clock.
func (t *Tracker) Tick(now time.Time) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	state := t.smoother.Decay(now)

	if t.overlayActive || t.inputFocused {
		t.mu.Unlock()
		return
	}

	point, fired := t.machine.Evaluate(state, now)
	if !fired {
		t.mu.Unlock()
		return
	}

	t.epoch++
	ev := types.AttentionEvent{
		X:           point.X,
		Y:           point.Y,
		TriggeredAt: now,
		SessionID:   t.id,
		Epoch:       t.epoch,
	}
	if t.events != nil {
		select {
		case t.events <- ev:
		default:
			t.logger.Warn("attention event dropped, dispatch backlog full",
				zap.Uint64("epoch", ev.Epoch))
		}
	}
	t.mu.Unlock()

	t.logger.Debug("attention event",
		zap.Float64("x", ev.X),
		zap.Float64("y", ev.Y),
		zap.Uint64("epoch", ev.Epoch))
}

// NotifyScroll clears the dwell anchor: content shifted under the point,
// so the hypothesis no longer holds. Clearing happens synchronously, before
// the next poll tick can observe the stale anchor.
func (t *Tracker) NotifyScroll() {
	t.clearAnchor(ClearScroll)
}

// NotifyOverlayEnter suspends dwell detection while the pointer is over the
// result overlay.
func (t *Tracker) NotifyOverlayEnter() {
	t.mu.Lock()
	t.overlayActive = true
	t.machine.Clear()
	t.mu.Unlock()
	t.logger.Debug("anchor cleared", zap.String("reason", string(ClearOverlay)))
}

// NotifyOverlayLeave resumes dwell detection.
func (t *Tracker) NotifyOverlayLeave() {
	t.mu.Lock()
	t.overlayActive = false
	t.mu.Unlock()
}

// NotifyInputFocus suspends dwell detection while the user is typing.
func (t *Tracker) NotifyInputFocus() {
	t.mu.Lock()
	t.inputFocused = true
	t.machine.Clear()
	t.mu.Unlock()
	t.logger.Debug("anchor cleared", zap.String("reason", string(ClearInputFocus)))
}

// NotifyInputBlur resumes dwell detection.
func (t *Tracker) NotifyInputBlur() {
	t.mu.Lock()
	t.inputFocused = false
	t.mu.Unlock()
}

func (t *Tracker) clearAnchor(reason ClearReason) {
	t.mu.Lock()
	t.machine.Clear()
	t.mu.Unlock()
	t.logger.Debug("anchor cleared", zap.String("reason", string(reason)))
}

// Cooldown returns the session's region cooldown registry. The resolver
// consults it once a region identity is known.
func (t *Tracker) Cooldown() *Cooldown {
	return t.cooldown
}

// CurrentEpoch returns the epoch of the most recent attention event. A
// resolver compares it against the epoch it started with and discards stale
// results; in-flight work carries no cancellation token.
func (t *Tracker) CurrentEpoch() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.epoch
}

// LastActivity returns the time of the most recent sample or control
// signal, for idle eviction.
func (t *Tracker) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

// ID returns the session ID.
func (t *Tracker) ID() string {
	return t.id
}

// Reset discards all signal and dwell state but keeps the session alive.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.smoother.Reset()
	t.machine.Clear()
	t.cooldown.Reset()
	t.overlayActive = false
	t.inputFocused = false
	t.lastExternal = time.Time{}
	t.mu.Unlock()
	t.logger.Debug("tracker reset")
}

// Close stops the poll loop and rejects further samples. Safe to call more
// than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if t.events != nil {
		close(t.events)
		<-t.dispatchDone
	}
	t.logger.Debug("tracker closed")
}
