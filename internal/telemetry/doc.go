// Package telemetry wraps OpenTelemetry SDK initialization. It sets up
// OTLP gRPC trace and metric exporters behind a single Init call; when
// telemetry is disabled the global providers stay noop and no external
// connection is made.
package telemetry
