package fusion

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/internal/cache"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// sharedKeyPrefix namespaces fusion entries in the shared Redis cache.
const sharedKeyPrefix = "thirdeye:fusion:"

// Cache stores fusion decisions keyed by content fingerprint. Entries are
// immutable once written; past capacity the oldest entry is evicted.
// Check-then-insert is atomic per fingerprint: concurrent requests for one
// fingerprint collapse into a single computation.
type Cache struct {
	policy   *Policy
	capacity int
	ttl      time.Duration
	shared   *cache.Manager
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]*types.VisionCacheEntry
	order   []string

	group singleflight.Group
}

// NewCache creates a fusion cache. shared may be nil for a process-local
// cache; a nil logger is replaced with a nop logger.
func NewCache(cfg config.FusionConfig, shared *cache.Manager, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		policy:   NewPolicy(cfg),
		capacity: cfg.CacheCapacity,
		ttl:      cfg.SharedTTL,
		shared:   shared,
		logger:   logger.With(zap.String("component", "fusion_cache")),
		entries:  make(map[string]*types.VisionCacheEntry),
	}
}

// Lookup returns the cached decision for a fingerprint, if any.
func (c *Cache) Lookup(ctx context.Context, fingerprint string) (*types.VisionCacheEntry, bool) {
	c.mu.Lock()
	entry, ok := c.entries[fingerprint]
	c.mu.Unlock()
	if ok {
		return entry, true
	}

	if c.shared != nil {
		var stored types.VisionCacheEntry
		err := c.shared.GetJSON(ctx, sharedKeyPrefix+fingerprint, &stored)
		if err == nil {
			c.store(&stored)
			return &stored, true
		}
		if !cache.IsCacheMiss(err) {
			// Treat a broken shared cache like a cold one, never as fatal.
			c.logger.Warn("shared cache lookup failed", zap.Error(err))
		}
	}

	return nil, false
}

// Resolve returns the fusion decision for a fingerprint, computing and
// caching it on first sight. visionFn runs at most once per fingerprint
// regardless of concurrency; a cache hit skips it entirely. The returned
// bool is true on a cache hit.
func (c *Cache) Resolve(
	ctx context.Context,
	fingerprint string,
	domText string,
	visionFn func(ctx context.Context) (*types.VisionResult, error),
) (*types.VisionCacheEntry, bool, error) {
	if entry, ok := c.Lookup(ctx, fingerprint); ok {
		return entry, true, nil
	}

	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		// Re-check under the flight: another caller may have just stored it.
		if entry, ok := c.Lookup(ctx, fingerprint); ok {
			return entry, nil
		}

		var vr *types.VisionResult
		if visionFn != nil {
			var verr error
			vr, verr = visionFn(ctx)
			if verr != nil {
				// Degrade to DOM-only; the failure is logged, not propagated.
				c.logger.Debug("vision pass failed, fusing DOM only",
					zap.String("fingerprint", fingerprint[:min(12, len(fingerprint))]),
					zap.Error(verr))
				vr = nil
			}
		}

		decision := c.policy.Fuse(domText, vr)
		entry := &types.VisionCacheEntry{
			Fingerprint: fingerprint,
			DOMText:     domText,
			MergedText:  decision.Text,
			SourceLabel: decision.Source,
			Confidence:  decision.Confidence,
			CreatedAt:   time.Now(),
		}
		if vr != nil {
			entry.VisionText = vr.Text
			entry.ContentTypes = vr.ContentTypes
		}

		c.store(entry)
		if c.shared != nil {
			if err := c.shared.SetJSON(ctx, sharedKeyPrefix+fingerprint, entry, c.ttl); err != nil {
				c.logger.Warn("shared cache store failed", zap.Error(err))
			}
		}
		return entry, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*types.VisionCacheEntry), false, nil
}

// store inserts an entry, evicting the oldest past capacity. Existing
// entries are never overwritten; decisions are immutable.
func (c *Cache) store(entry *types.VisionCacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.Fingerprint]; exists {
		return
	}

	c.entries[entry.Fingerprint] = entry
	c.order = append(c.order, entry.Fingerprint)

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of locally cached decisions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
