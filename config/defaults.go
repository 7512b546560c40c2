package config

import "time"

// DefaultConfig returns the built-in defaults. The dwell and fusion values
// match the empirically tuned production settings; deployments override
// them per environment through YAML or THIRDEYE_* variables.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:           8980,
			MetricsPort:        9980,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       0,
			ShutdownTimeout:    15 * time.Second,
			CORSAllowedOrigins: nil,
			RateLimitRPS:       50,
			RateLimitBurst:     100,
		},
		Tracker: TrackerConfig{
			PositionAlpha:      0.35,
			VelocityAlpha:      0.3,
			VelocityHalfLife:   300 * time.Millisecond,
			SampleInterval:     100 * time.Millisecond,
			DwellRadius:        50,
			DwellDuration:      2000 * time.Millisecond,
			RestVelocity:       15,
			PollInterval:       200 * time.Millisecond,
			Cooldown:           30 * time.Second,
			CooldownGrid:       100,
			SessionIdleTimeout: 10 * time.Minute,
		},
		Gaze: GazeConfig{
			Endpoint:      "",
			Timeout:       3 * time.Second,
			PollInterval:  250 * time.Millisecond,
			MinConfidence: 0.5,
			MaxFailures:   3,
		},
		Extract: ExtractConfig{
			MaxTextLength:    4000,
			MinVisibleLength: 80,
			MinUsableLength:  60,
			ParagraphWindow:  2,
			LineWindow:       10,
		},
		Snapshot: SnapshotConfig{
			CropSize: 400,
		},
		Vision: VisionConfig{
			Endpoint:    "",
			Timeout:     10 * time.Second,
			RateLimit:   2,
			RateBurst:   4,
			MaxFailures: 5,
		},
		Fusion: FusionConfig{
			MinDOMLength:  50,
			VisionRatio:   1.5,
			CacheCapacity: 100,
			SharedCache:   false,
			SharedTTL:     time.Hour,
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Password:     "",
			DB:           0,
			PoolSize:     10,
			MinIdleConns: 2,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			OutputPaths: []string{"stdout"},
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "thirdeye",
			SampleRate:   1.0,
		},
	}
}
