package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

func TestCooldown_AllowOncePerWindow(t *testing.T) {
	c := NewCooldown(30 * time.Second)
	now := time.Now()
	key := NodeRegionKey("h42")

	assert.True(t, c.Allow(key, now))
	assert.False(t, c.Allow(key, now.Add(time.Second)))
	assert.False(t, c.Allow(key, now.Add(29*time.Second)))
	assert.True(t, c.Allow(key, now.Add(30*time.Second)))
}

func TestCooldown_IndependentKeys(t *testing.T) {
	c := NewCooldown(30 * time.Second)
	now := time.Now()

	assert.True(t, c.Allow(NodeRegionKey("a"), now))
	assert.True(t, c.Allow(NodeRegionKey("b"), now))
	assert.False(t, c.Allow(NodeRegionKey("a"), now.Add(time.Second)))
}

func TestCooldown_Reset(t *testing.T) {
	c := NewCooldown(30 * time.Second)
	now := time.Now()
	key := NodeRegionKey("a")

	assert.True(t, c.Allow(key, now))
	c.Reset()
	assert.True(t, c.Allow(key, now.Add(time.Second)))
}

func TestQuantizedRegionKey_GridSnap(t *testing.T) {
	// Points in the same 100px cell with the same text share a key.
	a := QuantizedRegionKey(types.Point{X: 110, Y: 220}, 100, "hello world")
	b := QuantizedRegionKey(types.Point{X: 190, Y: 299}, 100, "hello world")
	assert.Equal(t, a, b)

	// A neighboring cell differs.
	c := QuantizedRegionKey(types.Point{X: 210, Y: 220}, 100, "hello world")
	assert.NotEqual(t, a, c)

	// Same cell, different content.
	d := QuantizedRegionKey(types.Point{X: 110, Y: 220}, 100, "other text")
	assert.NotEqual(t, a, d)
}

func TestQuantizedRegionKey_TruncatesPrefix(t *testing.T) {
	long := "aaaaaaaaaaaaaaaaaaaaaaaaXXXX"
	a := QuantizedRegionKey(types.Point{}, 100, long)
	b := QuantizedRegionKey(types.Point{}, 100, long[:24]+"YYYY")
	assert.Equal(t, a, b, "only the first 24 characters participate")
}

func TestQuantizedRegionKey_ZeroGrid(t *testing.T) {
	assert.NotPanics(t, func() {
		QuantizedRegionKey(types.Point{X: 5, Y: 5}, 0, "t")
	})
}
