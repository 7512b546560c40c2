// Package config provides unified configuration loading for ThirdEye.
// Precedence: built-in defaults, then YAML file, then environment variables
// prefixed with THIRDEYE.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the ThirdEye daemon.
type Config struct {
	// Server configures the HTTP and metrics listeners.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Tracker configures the per-session dwell detection pipeline.
	Tracker TrackerConfig `yaml:"tracker" env:"TRACKER"`

	// Gaze configures the optional external gaze coordinate source.
	Gaze GazeConfig `yaml:"gaze" env:"GAZE"`

	// Extract configures the content assembler.
	Extract ExtractConfig `yaml:"extract" env:"EXTRACT"`

	// Snapshot configures the raster crop fallback.
	Snapshot SnapshotConfig `yaml:"snapshot" env:"SNAPSHOT"`

	// Vision configures the OCR/vision endpoint client.
	Vision VisionConfig `yaml:"vision" env:"VISION"`

	// Fusion configures the hybrid fusion decision and its cache.
	Fusion FusionConfig `yaml:"fusion" env:"FUSION"`

	// Redis configures the optional shared fusion cache backend.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Log configures zap logging.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry configures OpenTelemetry export.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	// HTTP port for the capture and tracking endpoints
	HTTPPort int `yaml:"http_port" env:"HTTP_PORT"`
	// Prometheus metrics port
	MetricsPort int `yaml:"metrics_port" env:"METRICS_PORT"`
	// Read timeout
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	// Write timeout; zero disables it so the tracking WebSocket can hold
	// its connection open
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// Origins allowed to call the API from a browser context
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	// Per-client request rate limit
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// Burst allowance of the per-client limiter
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// TrackerConfig holds the dwell detection thresholds. All values are tuned
// empirically; tests parameterize them rather than relying on the defaults.
type TrackerConfig struct {
	// EMA smoothing factor applied to position
	PositionAlpha float64 `yaml:"position_alpha" env:"POSITION_ALPHA"`
	// EMA smoothing factor applied to instantaneous speed
	VelocityAlpha float64 `yaml:"velocity_alpha" env:"VELOCITY_ALPHA"`
	// Half-life of the velocity decay applied when samples stop arriving
	VelocityHalfLife time.Duration `yaml:"velocity_half_life" env:"VELOCITY_HALF_LIFE"`
	// Expected interval between raw samples; decay kicks in past this
	SampleInterval time.Duration `yaml:"sample_interval" env:"SAMPLE_INTERVAL"`
	// Radius in px the smoothed position may wander without re-anchoring
	DwellRadius float64 `yaml:"dwell_radius" env:"DWELL_RADIUS"`
	// Time the position must stay inside the radius before an event fires
	DwellDuration time.Duration `yaml:"dwell_duration" env:"DWELL_DURATION"`
	// Velocity in px/s below which the cursor counts as at rest
	RestVelocity float64 `yaml:"rest_velocity" env:"REST_VELOCITY"`
	// Fixed interval of the dwell evaluation poll
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// Cooldown window during which one region key fires at most once
	Cooldown time.Duration `yaml:"cooldown" env:"COOLDOWN"`
	// Grid cell size in px for canvas/PDF cooldown keys
	CooldownGrid float64 `yaml:"cooldown_grid" env:"COOLDOWN_GRID"`
	// Idle duration after which a tracking session is evicted
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout" env:"SESSION_IDLE_TIMEOUT"`
}

// GazeConfig configures the external gaze source.
type GazeConfig struct {
	// Endpoint URL; empty disables gaze entirely
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// Per-request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Poll interval
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
	// Minimum confidence to treat a reading as valid
	MinConfidence float64 `yaml:"min_confidence" env:"MIN_CONFIDENCE"`
	// Consecutive failures after which the source is disabled for the session
	MaxFailures int `yaml:"max_failures" env:"MAX_FAILURES"`
}

// ExtractConfig configures the content assembler.
type ExtractConfig struct {
	// Hard cap on assembled text length in characters
	MaxTextLength int `yaml:"max_text_length" env:"MAX_TEXT_LENGTH"`
	// Below this visible-text length, page metadata is appended
	MinVisibleLength int `yaml:"min_visible_length" env:"MIN_VISIBLE_LENGTH"`
	// Below this marker-stripped length, the snapshot fallback triggers
	MinUsableLength int `yaml:"min_usable_length" env:"MIN_USABLE_LENGTH"`
	// Paragraph neighbors gathered either side of the match for canvas docs
	ParagraphWindow int `yaml:"paragraph_window" env:"PARAGRAPH_WINDOW"`
	// Text-layer lines gathered either side of the match for PDF pages
	LineWindow int `yaml:"line_window" env:"LINE_WINDOW"`
}

// SnapshotConfig configures the raster crop fallback.
type SnapshotConfig struct {
	// Square crop edge length in logical pixels
	CropSize int `yaml:"crop_size" env:"CROP_SIZE"`
}

// VisionConfig configures the OCR/vision endpoint client.
type VisionConfig struct {
	// Endpoint URL; empty disables vision, extraction stays DOM-only
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
	// Per-request timeout
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// Requests per second allowed against the endpoint
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	// Burst allowance of the rate limiter
	RateBurst int `yaml:"rate_burst" env:"RATE_BURST"`
	// Consecutive failures after which vision is disabled for the session
	MaxFailures int `yaml:"max_failures" env:"MAX_FAILURES"`
}

// FusionConfig configures the hybrid fusion decision and cache.
type FusionConfig struct {
	// Minimum DOM text length for the DOM side to count at all
	MinDOMLength int `yaml:"min_dom_length" env:"MIN_DOM_LENGTH"`
	// Vision text must exceed DOM text by this factor to win outright
	VisionRatio float64 `yaml:"vision_ratio" env:"VISION_RATIO"`
	// Bounded cache capacity; oldest entries are evicted past it
	CacheCapacity int `yaml:"cache_capacity" env:"CACHE_CAPACITY"`
	// Use the shared Redis cache in addition to the in-process one
	SharedCache bool `yaml:"shared_cache" env:"SHARED_CACHE"`
	// TTL of shared cache entries
	SharedTTL time.Duration `yaml:"shared_ttl" env:"SHARED_TTL"`
}

// RedisConfig configures the shared cache backend.
type RedisConfig struct {
	// Address
	Addr string `yaml:"addr" env:"ADDR"`
	// Password
	Password string `yaml:"password" env:"PASSWORD"`
	// Database number
	DB int `yaml:"db" env:"DB"`
	// Connection pool size
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
	// Minimum idle connections
	MinIdleConns int `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
}

// LogConfig configures zap logging.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// Output paths
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	// Enabled toggles the OTel SDK; disabled keeps noop providers
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP gRPC endpoint
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// Service name reported in resource attributes
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// Trace sample rate
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Loader loads configuration with builder-style options.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "THIRDEYE",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator adds a config validator run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads the configuration.
// Precedence: defaults, then YAML file, then environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file. A missing file is
// not an error; defaults stay in effect.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks struct fields recursively, applying env overrides.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration parses as a duration string
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// comma-separated string slices
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads configuration, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Tracker.PositionAlpha <= 0 || c.Tracker.PositionAlpha > 1 {
		errs = append(errs, "position_alpha must be in (0, 1]")
	}
	if c.Tracker.VelocityAlpha <= 0 || c.Tracker.VelocityAlpha > 1 {
		errs = append(errs, "velocity_alpha must be in (0, 1]")
	}
	if c.Tracker.DwellRadius <= 0 {
		errs = append(errs, "dwell_radius must be positive")
	}
	if c.Tracker.DwellDuration <= 0 {
		errs = append(errs, "dwell_duration must be positive")
	}
	if c.Tracker.PollInterval <= 0 {
		errs = append(errs, "poll_interval must be positive")
	}
	if c.Extract.MaxTextLength <= 0 {
		errs = append(errs, "max_text_length must be positive")
	}
	if c.Fusion.VisionRatio <= 1 {
		errs = append(errs, "vision_ratio must exceed 1")
	}
	if c.Fusion.CacheCapacity <= 0 {
		errs = append(errs, "cache_capacity must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
