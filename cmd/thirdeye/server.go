package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/api/handlers"
	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/fusion"
	"github.com/Hufamily/ThirdEye-sub000/internal/cache"
	"github.com/Hufamily/ThirdEye-sub000/internal/metrics"
	"github.com/Hufamily/ThirdEye-sub000/internal/server"
	"github.com/Hufamily/ThirdEye-sub000/resolve"
	"github.com/Hufamily/ThirdEye-sub000/track"
	"github.com/Hufamily/ThirdEye-sub000/types"
	"github.com/Hufamily/ThirdEye-sub000/vision"
)

// Server assembles the attention pipeline behind the HTTP surface.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	healthHandler  *handlers.HealthHandler
	captureHandler *handlers.CaptureHandler
	trackHandler   *handlers.TrackHandler

	metricsCollector *metrics.Collector

	sessions    *track.Manager
	gazePoller  *track.GazePoller
	sharedCache *cache.Manager
	fusionCache *fusion.Cache
	resolver    *resolve.Resolver

	rateLimiterCancel context.CancelFunc
	sessionsCancel    context.CancelFunc
}

// NewServer creates a server from loaded configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Start wires the pipeline and launches the listeners.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("thirdeye", s.logger)

	if err := s.initPipeline(); err != nil {
		return fmt.Errorf("failed to init pipeline: %w", err)
	}

	s.initHandlers()

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("all servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("vision_enabled", s.cfg.Vision.Endpoint != ""),
		zap.Bool("gaze_enabled", s.cfg.Gaze.Endpoint != ""),
	)

	return nil
}

// initPipeline builds the resolution pipeline: shared cache, fusion
// cache, vision client, resolver, and the session manager.
func (s *Server) initPipeline() error {
	if s.cfg.Fusion.SharedCache {
		shared, err := cache.NewManager(cache.Config{
			Addr:         s.cfg.Redis.Addr,
			Password:     s.cfg.Redis.Password,
			DB:           s.cfg.Redis.DB,
			DefaultTTL:   s.cfg.Fusion.SharedTTL,
			PoolSize:     s.cfg.Redis.PoolSize,
			MinIdleConns: s.cfg.Redis.MinIdleConns,
		}, s.logger)
		if err != nil {
			s.logger.Warn("shared cache unavailable, continuing with in-process cache only",
				zap.Error(err))
		} else {
			s.sharedCache = shared
		}
	}

	s.fusionCache = fusion.NewCache(s.cfg.Fusion, s.sharedCache, s.logger)

	var visionClient vision.Client = vision.Nop{}
	if s.cfg.Vision.Endpoint != "" {
		visionClient = vision.NewHTTPClient(s.cfg.Vision, s.logger)
		s.logger.Info("vision client initialized", zap.String("endpoint", s.cfg.Vision.Endpoint))
	} else {
		s.logger.Info("vision endpoint not configured, extraction stays DOM-only")
	}

	s.resolver = resolve.NewResolver(s.cfg, visionClient, s.fusionCache, s.metricsCollector, s.logger)

	sessionsCtx, cancel := context.WithCancel(context.Background())
	s.sessionsCancel = cancel
	s.sessions = track.NewManager(s.cfg.Tracker, func(ev types.AttentionEvent) {
		s.trackHandler.PushEvent(ev)
	}, s.logger)
	s.sessions.Start(sessionsCtx)

	if s.cfg.Gaze.Endpoint != "" {
		s.gazePoller = track.NewGazePoller(s.cfg.Gaze, s.sessions.Broadcast, s.logger)
		s.gazePoller.OnDisable(func() { s.metricsCollector.SetGazeDisabled(true) })
		s.gazePoller.Start(sessionsCtx)
		s.logger.Info("gaze poller started", zap.String("endpoint", s.cfg.Gaze.Endpoint))
	}

	return nil
}

func (s *Server) initHandlers() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	if s.sharedCache != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingHealthCheck("redis", s.sharedCache.Ping))
	}

	s.trackHandler = handlers.NewTrackHandler(s.sessions, s.metricsCollector, s.logger)
	s.captureHandler = handlers.NewCaptureHandler(s.resolver, s.sessions, s.trackHandler, s.metricsCollector, s.logger)

	s.logger.Info("handlers initialized")
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/ready", s.healthHandler.HandleReady)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("/v1/capture", s.captureHandler.HandleCapture)
	mux.HandleFunc("/v1/track", s.trackHandler.HandleTrack)

	rateLimiterCtx, rateLimiterCancel := context.WithCancel(context.Background())
	s.rateLimiterCancel = rateLimiterCancel
	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(s.metricsCollector),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(rateLimiterCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
	)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)

	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.ReadTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)

	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// WaitForShutdown blocks until a shutdown signal, then tears down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}

	s.Shutdown()
}

// Shutdown stops every component in dependency order.
func (s *Server) Shutdown() {
	s.logger.Info("starting graceful shutdown")

	ctx := context.Background()

	if s.rateLimiterCancel != nil {
		s.rateLimiterCancel()
	}

	if s.gazePoller != nil {
		s.gazePoller.Close()
	}

	if s.sessionsCancel != nil {
		s.sessionsCancel()
	}
	if s.sessions != nil {
		s.sessions.Close()
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("metrics server shutdown error", zap.Error(err))
		}
	}

	if s.sharedCache != nil {
		if err := s.sharedCache.Close(); err != nil {
			s.logger.Error("shared cache close error", zap.Error(err))
		}
	}

	s.logger.Info("graceful shutdown completed")
}
