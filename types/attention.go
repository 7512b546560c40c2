package types

import (
	"math"
	"time"
)

// SampleSource identifies where a raw position sample came from.
type SampleSource string

const (
	// SourcePointer marks samples produced by pointer movement.
	SourcePointer SampleSource = "pointer"
	// SourceExternal marks samples produced by an external gaze estimator.
	SourceExternal SampleSource = "external"
)

// Point is a position in logical page pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points.
func (p Point) DistanceTo(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AttentionPoint is a single raw position sample. Samples are produced
// continuously and never persisted.
type AttentionPoint struct {
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Timestamp time.Time    `json:"timestamp"`
	Source    SampleSource `json:"source"`
}

// Position returns the sample position as a Point.
func (p AttentionPoint) Position() Point {
	return Point{X: p.X, Y: p.Y}
}

// SmoothedState is the output of the signal smoother: an exponentially
// averaged position and a decaying velocity magnitude in px/s.
type SmoothedState struct {
	Position          Point     `json:"position"`
	VelocityMagnitude float64   `json:"velocity_magnitude"`
	LastSampleTime    time.Time `json:"last_sample_time"`
}

// DwellAnchor is the hypothesis "the user has been resting near Anchor
// since StartedAt". It exists only while the smoothed position stays within
// the dwell radius of Anchor; it is replaced, never mutated, when the
// position exits the radius.
type DwellAnchor struct {
	Anchor    Point     `json:"anchor"`
	StartedAt time.Time `json:"started_at"`
}

// AttentionEvent is emitted exactly once per qualifying dwell episode.
// Epoch increases monotonically per tracking session so that stale
// in-flight resolution results can be discarded.
type AttentionEvent struct {
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	TriggeredAt time.Time `json:"triggered_at"`
	SessionID   string    `json:"session_id,omitempty"`
	Epoch       uint64    `json:"epoch"`
}

// Position returns the event position as a Point.
func (e AttentionEvent) Position() Point {
	return Point{X: e.X, Y: e.Y}
}

// RendererKind is the structural family of the document under the point.
// Each kind requires a distinct region-location strategy.
type RendererKind string

const (
	RendererGenericHTML    RendererKind = "generic-html"
	RendererCanvasDocument RendererKind = "canvas-document"
	RendererVectorSlides   RendererKind = "vector-slides"
	RendererPDFTextLayer   RendererKind = "pdf-textlayer"
)

// Valid reports whether the kind is one of the known renderer families.
func (k RendererKind) Valid() bool {
	switch k {
	case RendererGenericHTML, RendererCanvasDocument, RendererVectorSlides, RendererPDFTextLayer:
		return true
	}
	return false
}
