package fusion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/internal/cache"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

func richDOM() string {
	return strings.Repeat("structurally attributed dom text. ", 3)
}

func TestCache_Resolve(t *testing.T) {
	c := NewCache(testFusionConfig(), nil, nil)
	ctx := context.Background()

	var calls atomic.Int64
	visionFn := func(ctx context.Context) (*types.VisionResult, error) {
		calls.Add(1)
		return &types.VisionResult{Text: "ocr only line", Confidence: 0.8}, nil
	}

	entry, hit, err := c.Resolve(ctx, "fp1", richDOM(), visionFn)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, types.FusionSourceHybrid, entry.SourceLabel)
	assert.Contains(t, entry.MergedText, "ocr only line")
	assert.EqualValues(t, 1, calls.Load())

	again, hit, err := c.Resolve(ctx, "fp1", richDOM(), visionFn)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, entry, again, "hit returns the prior decision")
	assert.EqualValues(t, 1, calls.Load(), "vision skipped on a hit")
}

func TestCache_VisionFailureDegradesToDOM(t *testing.T) {
	c := NewCache(testFusionConfig(), nil, nil)

	entry, hit, err := c.Resolve(context.Background(), "fp1", richDOM(),
		func(ctx context.Context) (*types.VisionResult, error) {
			return nil, types.NewError(types.ErrVisionFailed, "endpoint down")
		})
	require.NoError(t, err, "vision failure is absorbed")
	assert.False(t, hit)
	assert.Equal(t, types.FusionSourceDOM, entry.SourceLabel)
	assert.Equal(t, strings.TrimSpace(richDOM()), entry.MergedText)
	assert.Empty(t, entry.VisionText)
}

func TestCache_NilVisionFn(t *testing.T) {
	c := NewCache(testFusionConfig(), nil, nil)

	entry, _, err := c.Resolve(context.Background(), "fp1", richDOM(), nil)
	require.NoError(t, err)
	assert.Equal(t, types.FusionSourceDOM, entry.SourceLabel)
}

func TestCache_VisionFnRunsAtMostOncePerFingerprint(t *testing.T) {
	c := NewCache(testFusionConfig(), nil, nil)

	var calls atomic.Int64
	visionFn := func(ctx context.Context) (*types.VisionResult, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return &types.VisionResult{Text: "slow ocr", Confidence: 0.9}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Resolve(context.Background(), "fp1", richDOM(), visionFn)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsOldestPastCapacity(t *testing.T) {
	cfg := testFusionConfig()
	cfg.CacheCapacity = 3
	c := NewCache(cfg, nil, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _, err := c.Resolve(ctx, fmt.Sprintf("fp%d", i), richDOM(), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, c.Len())
	_, ok := c.Lookup(ctx, "fp0")
	assert.False(t, ok, "oldest entry evicted")
	_, ok = c.Lookup(ctx, "fp3")
	assert.True(t, ok)
}

func TestCache_SharedRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	mgrCfg := cache.DefaultConfig()
	mgrCfg.Addr = mr.Addr()
	mgrCfg.HealthCheckInterval = 0
	shared, err := cache.NewManager(mgrCfg, zap.NewNop())
	require.NoError(t, err)
	defer shared.Close()

	cfg := testFusionConfig()
	cfg.SharedTTL = time.Hour

	ctx := context.Background()

	var calls atomic.Int64
	visionFn := func(ctx context.Context) (*types.VisionResult, error) {
		calls.Add(1)
		return &types.VisionResult{Text: "shared ocr", Confidence: 0.85}, nil
	}

	first := NewCache(cfg, shared, nil)
	entry, hit, err := first.Resolve(ctx, "fp1", richDOM(), visionFn)
	require.NoError(t, err)
	assert.False(t, hit)

	// A second instance sharing the same Redis sees the decision without
	// re-running vision.
	second := NewCache(cfg, shared, nil)
	got, hit, err := second.Resolve(ctx, "fp1", richDOM(), visionFn)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, entry.MergedText, got.MergedText)
	assert.Equal(t, entry.SourceLabel, got.SourceLabel)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCache_SharedRedisDownIsNotFatal(t *testing.T) {
	mr := miniredis.RunT(t)
	mgrCfg := cache.DefaultConfig()
	mgrCfg.Addr = mr.Addr()
	mgrCfg.HealthCheckInterval = 0
	shared, err := cache.NewManager(mgrCfg, zap.NewNop())
	require.NoError(t, err)
	defer shared.Close()

	mr.SetError("connection refused")

	c := NewCache(testFusionConfig(), shared, nil)
	entry, hit, err := c.Resolve(context.Background(), "fp1", richDOM(), nil)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, entry)
}
