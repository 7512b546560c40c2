package track

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

func gazeConfig(endpoint string) config.GazeConfig {
	return config.GazeConfig{
		Endpoint:      endpoint,
		Timeout:       time.Second,
		PollInterval:  10 * time.Millisecond,
		MinConfidence: 0.5,
		MaxFailures:   3,
	}
}

type sampleCollector struct {
	mu      sync.Mutex
	samples []types.AttentionPoint
}

func (c *sampleCollector) sink(p types.AttentionPoint) {
	c.mu.Lock()
	c.samples = append(c.samples, p)
	c.mu.Unlock()
}

func (c *sampleCollector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.samples)
}

func (c *sampleCollector) first() types.AttentionPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples[0]
}

func TestGazePoller_DeliversSamples(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"x": 320.5, "y": 240.25, "confidence": 0.9}`))
	}))
	defer srv.Close()

	col := &sampleCollector{}
	g := NewGazePoller(gazeConfig(srv.URL), col.sink, zap.NewNop())
	g.Start(context.Background())
	defer g.Close()

	require.Eventually(t, func() bool { return col.len() > 0 }, time.Second, 5*time.Millisecond)

	p := col.first()
	assert.Equal(t, 320.5, p.X)
	assert.Equal(t, 240.25, p.Y)
	assert.Equal(t, types.SourceExternal, p.Source)
	assert.False(t, g.Disabled())
}

func TestGazePoller_LowConfidenceSkipped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"x": 1, "y": 2, "confidence": 0.2}`))
	}))
	defer srv.Close()

	col := &sampleCollector{}
	g := NewGazePoller(gazeConfig(srv.URL), col.sink, zap.NewNop())
	g.Start(context.Background())
	defer g.Close()

	// Low confidence is not a failure, just silence.
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, col.len())
	assert.False(t, g.Disabled())
}

func TestGazePoller_MissingConfidenceAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"x": 7, "y": 8}`))
	}))
	defer srv.Close()

	col := &sampleCollector{}
	g := NewGazePoller(gazeConfig(srv.URL), col.sink, zap.NewNop())
	g.Start(context.Background())
	defer g.Close()

	require.Eventually(t, func() bool { return col.len() > 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 7.0, col.first().X)
}

func TestGazePoller_DisabledAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	col := &sampleCollector{}
	g := NewGazePoller(gazeConfig(srv.URL), col.sink, zap.NewNop())
	var hookFired atomic.Bool
	g.OnDisable(func() { hookFired.Store(true) })
	g.Start(context.Background())
	defer g.Close()

	require.Eventually(t, g.Disabled, time.Second, 5*time.Millisecond)
	assert.Zero(t, col.len())
	assert.True(t, hookFired.Load())
}

func TestGazePoller_SuccessResetsFailureCount(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		f := fail
		fail = !fail
		mu.Unlock()
		if f {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"x": 1, "y": 1, "confidence": 0.9}`))
	}))
	defer srv.Close()

	col := &sampleCollector{}
	g := NewGazePoller(gazeConfig(srv.URL), col.sink, zap.NewNop())
	g.Start(context.Background())
	defer g.Close()

	// Alternating failures never reach the consecutive threshold.
	time.Sleep(150 * time.Millisecond)
	assert.False(t, g.Disabled())
	assert.Positive(t, col.len())
}

func TestGazePoller_EmptyEndpointNeverPolls(t *testing.T) {
	col := &sampleCollector{}
	g := NewGazePoller(gazeConfig(""), col.sink, zap.NewNop())
	g.Start(context.Background())

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, col.len())
	assert.NotPanics(t, g.Close)
}
