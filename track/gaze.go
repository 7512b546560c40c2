package track

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// GazeReading is the wire format of the external gaze coordinate source.
type GazeReading struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// SampleSink receives position samples produced by a poller.
type SampleSink func(types.AttentionPoint)

// GazePoller polls an external gaze endpoint and feeds confident readings
// into a sample sink. The source is a black box: a low-confidence reading
// means "no gaze available" and is skipped without counting as a failure,
// while timeouts and malformed responses count toward a consecutive-failure
// limit after which the source is disabled for the rest of the session.
type GazePoller struct {
	cfg    config.GazeConfig
	client *http.Client
	sink   SampleSink
	logger *zap.Logger

	mu        sync.Mutex
	failures  int
	disabled  bool
	onDisable func()

	cancel context.CancelFunc
	done   chan struct{}
}

// OnDisable registers a callback invoked once if the source is written
// off. Must be called before Start.
func (g *GazePoller) OnDisable(fn func()) {
	g.onDisable = fn
}

// NewGazePoller creates a poller. A nil logger is replaced with a nop
// logger.
func NewGazePoller(cfg config.GazeConfig, sink SampleSink, logger *zap.Logger) *GazePoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GazePoller{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		sink:   sink,
		logger: logger.With(zap.String("component", "gaze_poller")),
	}
}

// Start launches the poll loop. With an empty endpoint the poller does
// nothing; pointer samples remain the only signal.
func (g *GazePoller) Start(ctx context.Context) {
	if g.cfg.Endpoint == "" {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.done = make(chan struct{})

	go g.pollLoop(ctx)
}

func (g *GazePoller) pollLoop(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if g.Disabled() {
				return
			}
			g.pollOnce(ctx)
		}
	}
}

func (g *GazePoller) pollOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.Endpoint, nil)
	if err != nil {
		g.recordFailure(err)
		return
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.recordFailure(err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.recordFailure(types.NewError(types.ErrSignalUnavailable, "gaze endpoint returned non-200").
			WithHTTPStatus(resp.StatusCode))
		return
	}

	var reading GazeReading
	if err := json.NewDecoder(resp.Body).Decode(&reading); err != nil {
		g.recordFailure(err)
		return
	}

	g.mu.Lock()
	g.failures = 0
	g.mu.Unlock()

	if reading.Confidence != nil && *reading.Confidence < g.cfg.MinConfidence {
		// No gaze available right now; pointer samples carry the session.
		return
	}

	g.sink(types.AttentionPoint{
		X:         reading.X,
		Y:         reading.Y,
		Timestamp: time.Now(),
		Source:    types.SourceExternal,
	})
}

func (g *GazePoller) recordFailure(err error) {
	g.mu.Lock()
	g.failures++
	failures := g.failures
	disable := failures >= g.cfg.MaxFailures && !g.disabled
	if disable {
		g.disabled = true
	}
	g.mu.Unlock()

	if disable {
		g.logger.Warn("gaze source disabled for this session",
			zap.Int("consecutive_failures", failures),
			zap.Error(err))
		if g.onDisable != nil {
			g.onDisable()
		}
		return
	}
	g.logger.Debug("gaze poll failed", zap.Int("consecutive_failures", failures), zap.Error(err))
}

// Disabled reports whether the source has been written off for the
// session.
func (g *GazePoller) Disabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabled
}

// Close stops the poll loop.
func (g *GazePoller) Close() {
	if g.cancel != nil {
		g.cancel()
		<-g.done
	}
}
