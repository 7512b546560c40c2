// Package api defines the wire contract of the attention service.
//
// Two surfaces share these types:
//
//   - POST /v1/capture resolves one attention point against a serialized
//     page snapshot and returns attributed text (CaptureRequest,
//     CaptureResponse).
//   - GET /v1/track upgrades to a WebSocket carrying Frame envelopes:
//     sample and control frames inbound, event and search frames
//     outbound.
//
// The default base URL is http://localhost:8980.
package api
