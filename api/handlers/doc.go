/*
Package handlers implements the HTTP and WebSocket endpoints of the
attention service.

# Core types

  - CaptureHandler  resolves attention points against page snapshots
  - TrackHandler    owns tracking WebSocket sessions and event pushes
  - HealthHandler   liveness and readiness probes (/health, /ready)
  - Response        uniform JSON envelope (success + data + error)
  - ResponseWriter  wraps http.ResponseWriter to capture status codes

All handlers follow the standard net/http interface. Errors cross the
wire as ErrorInfo built from *types.Error, with codes mapped to HTTP
status by mapErrorCodeToHTTPStatus.
*/
package handlers
