package api

import (
	"time"

	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// CursorPosition is a point in logical page pixels.
type CursorPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CaptureRequest is the body of POST /v1/capture. The client sends the
// serialized page state, the attention point, and optionally a viewport
// screenshot for the OCR fallback.
type CaptureRequest struct {
	SessionID      string            `json:"session_id,omitempty"`
	URL            string            `json:"url"`
	CursorPosition CursorPosition    `json:"cursor_position"`
	Snapshot       document.Snapshot `json:"snapshot"`
	// Screenshot is a base64 data URL of the visible viewport; empty
	// disables the vision path for this capture.
	Screenshot string `json:"screenshot,omitempty"`
	// HTML is raw page markup for clients that cannot serialize a node
	// tree. Ignored when the snapshot already carries nodes.
	HTML string `json:"html,omitempty"`
	// TextExtraction is a client-side extraction used when the node
	// snapshot is absent or yields too little text.
	TextExtraction string `json:"text_extraction,omitempty"`
	// ContextLines overrides the neighbor-window sizes for this capture.
	ContextLines int `json:"context_lines,omitempty"`
	// Epoch echoes the attention event this capture answers. When the
	// session has since fired a newer event the result is stale and the
	// outbound search is dropped.
	Epoch uint64 `json:"epoch,omitempty"`
}

// CaptureResponse reports the resolved text and its provenance.
type CaptureResponse struct {
	ExtractedText        string             `json:"extracted_text"`
	TextSource           types.FusionSource `json:"text_source"`
	ScreenshotUsed       bool               `json:"screenshot_used"`
	VisionConfidence     float64            `json:"vision_confidence,omitempty"`
	ContentTypesDetected []string           `json:"content_types_detected,omitempty"`
	RendererKind         types.RendererKind `json:"renderer_kind"`
	Metadata             CaptureMetadata    `json:"metadata"`
}

// CaptureMetadata carries provenance details alongside the text.
type CaptureMetadata struct {
	SourceURL  string    `json:"source_url"`
	Title      string    `json:"title,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
	CacheHit   bool      `json:"cache_hit"`
	Suppressed bool      `json:"suppressed"`
	// Stale marks a capture superseded by a newer attention event in the
	// same session.
	Stale bool `json:"stale,omitempty"`
}

// Frame types carried on the tracking WebSocket. Every frame is a JSON
// object with a "type" discriminator.
const (
	FrameSample  = "sample"
	FrameControl = "control"
	FrameEvent   = "event"
	FrameSearch  = "search"
	FrameError   = "error"
)

// Frame is the envelope for all WebSocket traffic in both directions.
type Frame struct {
	Type    string        `json:"type"`
	Sample  *SampleFrame  `json:"sample,omitempty"`
	Control *ControlFrame `json:"control,omitempty"`
	Event   *EventFrame   `json:"event,omitempty"`
	Search  *SearchFrame  `json:"search,omitempty"`
	Error   *ErrorFrame   `json:"error,omitempty"`
}

// SampleFrame is one attention sample from the client.
type SampleFrame struct {
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	Timestamp time.Time          `json:"timestamp"`
	Source    types.SampleSource `json:"source,omitempty"`
}

// Control actions the client sends when page state invalidates the
// current dwell.
const (
	ControlScroll     = "scroll"
	ControlOverlay    = "overlay"
	ControlInputFocus = "input_focus"
	ControlReset      = "reset"
)

// ControlFrame is a page state change from the client.
type ControlFrame struct {
	Action string `json:"action"`
	// Active applies to overlay and input_focus: true on open, false on
	// close.
	Active bool `json:"active,omitempty"`
}

// EventFrame notifies the client that a dwell fired. The client answers
// with a capture request carrying the page snapshot.
type EventFrame struct {
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	TriggeredAt time.Time `json:"triggered_at"`
	Epoch       uint64    `json:"epoch"`
}

// SearchFrame pushes a resolved capture result to the client.
type SearchFrame struct {
	Query                string             `json:"query"`
	TextSource           types.FusionSource `json:"text_source"`
	ScreenshotUsed       bool               `json:"screenshot_used"`
	VisionConfidence     float64            `json:"vision_confidence,omitempty"`
	ContentTypesDetected []string           `json:"content_types_detected,omitempty"`
	SourceURL            string             `json:"source_url,omitempty"`
}

// ErrorFrame reports a per-frame failure without closing the socket.
type ErrorFrame struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
