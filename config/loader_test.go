package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 50.0, cfg.Tracker.DwellRadius)
	assert.Equal(t, 2*time.Second, cfg.Tracker.DwellDuration)
	assert.Equal(t, 15.0, cfg.Tracker.RestVelocity)
	assert.Equal(t, 4000, cfg.Extract.MaxTextLength)
	assert.Equal(t, 1.5, cfg.Fusion.VisionRatio)
	assert.Equal(t, 100, cfg.Fusion.CacheCapacity)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/thirdeye.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Tracker, cfg.Tracker)
}

func TestLoader_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
tracker:
  dwell_radius: 75
  dwell_duration: 1500ms
fusion:
  vision_ratio: 2.0
  cache_capacity: 50
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 75.0, cfg.Tracker.DwellRadius)
	assert.Equal(t, 1500*time.Millisecond, cfg.Tracker.DwellDuration)
	assert.Equal(t, 2.0, cfg.Fusion.VisionRatio)
	assert.Equal(t, 50, cfg.Fusion.CacheCapacity)
	// untouched values keep defaults
	assert.Equal(t, 15.0, cfg.Tracker.RestVelocity)
}

func TestLoader_EnvOverridesYAML(t *testing.T) {
	t.Setenv("THIRDEYE_TRACKER_DWELL_RADIUS", "120")
	t.Setenv("THIRDEYE_TRACKER_POLL_INTERVAL", "50ms")
	t.Setenv("THIRDEYE_FUSION_SHARED_CACHE", "true")
	t.Setenv("THIRDEYE_LOG_OUTPUT_PATHS", "stdout, /var/log/thirdeye.log")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 120.0, cfg.Tracker.DwellRadius)
	assert.Equal(t, 50*time.Millisecond, cfg.Tracker.PollInterval)
	assert.True(t, cfg.Fusion.SharedCache)
	assert.Equal(t, []string{"stdout", "/var/log/thirdeye.log"}, cfg.Log.OutputPaths)
}

func TestLoader_Validator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error {
			c.Tracker.DwellRadius = -1
			return c.Validate()
		}).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dwell_radius")
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero poll interval", func(c *Config) { c.Tracker.PollInterval = 0 }},
		{"alpha above one", func(c *Config) { c.Tracker.PositionAlpha = 1.5 }},
		{"ratio below one", func(c *Config) { c.Fusion.VisionRatio = 0.9 }},
		{"zero text cap", func(c *Config) { c.Extract.MaxTextLength = 0 }},
		{"bad port", func(c *Config) { c.Server.HTTPPort = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
