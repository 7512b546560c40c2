package track

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

// RegionKey identifies the content region an attention event resolved to,
// for de-duplication purposes. Ordinary pages use a stable node reference;
// canvas and PDF renderers have no stable node identity, so the key is a
// quantized position plus a text prefix.
type RegionKey string

// NodeRegionKey builds a key from a stable DOM node reference.
func NodeRegionKey(nodeID string) RegionKey {
	return RegionKey("node:" + nodeID)
}

// QuantizedRegionKey builds a key for renderers without stable node
// references by snapping the point to a grid and attaching a text prefix.
func QuantizedRegionKey(p types.Point, grid float64, text string) RegionKey {
	if grid <= 0 {
		grid = 1
	}
	cx := int(math.Floor(p.X / grid))
	cy := int(math.Floor(p.Y / grid))
	const prefixLen = 24
	if len(text) > prefixLen {
		text = text[:prefixLen]
	}
	return RegionKey(fmt.Sprintf("grid:%d:%d:%s", cx, cy, text))
}

// Cooldown suppresses repeat attention events for the same region within a
// cooldown window. Safe for concurrent use.
type Cooldown struct {
	window time.Duration

	mu   sync.Mutex
	seen map[RegionKey]time.Time
}

// NewCooldown creates a cooldown registry with the given window.
func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		seen:   make(map[RegionKey]time.Time),
	}
}

// Allow reports whether an event for the region may proceed, and records
// the attempt when it may. Expired entries are pruned opportunistically.
func (c *Cooldown) Allow(key RegionKey, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.seen[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.seen[key] = now

	for k, ts := range c.seen {
		if now.Sub(ts) >= c.window {
			delete(c.seen, k)
		}
	}
	return true
}

// Reset forgets all recorded regions.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = make(map[RegionKey]time.Time)
}
