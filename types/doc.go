// Package types defines the shared domain types of the ThirdEye pipeline:
// raw attention samples, smoothed signal state, dwell anchors and events,
// renderer kinds, extraction and vision results, and the unified Error type
// used across packages and the HTTP API.
package types
