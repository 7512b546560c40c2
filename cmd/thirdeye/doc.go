/*
Package main is the ThirdEye daemon entry point.

# Core types

  - Server          assembles the pipeline and both listeners
  - Middleware      func(http.Handler) http.Handler
  - responseWriter  wraps http.ResponseWriter to capture status codes

# Subcommands

serve starts the daemon, version prints build metadata, health probes a
running instance. The serve command loads YAML configuration plus
THIRDEYE_* environment overrides, initializes zap logging and optional
OpenTelemetry export, and runs the HTTP surface on one port with
Prometheus metrics on a second.

# Middleware chain

Recovery, RequestID, SecurityHeaders, OTelTracing, MetricsMiddleware,
RequestLogger, CORS, RateLimiter (per IP, tracking socket exempt).
*/
package main
