package types

import "time"

// ExtractionResult is the bounded text blob assembled around a resolved
// region. Text never exceeds TruncatedAt characters.
type ExtractionResult struct {
	Text        string `json:"text"`
	TruncatedAt int    `json:"truncated_at"`
	SourceURL   string `json:"source_url"`
}

// Empty reports whether the extraction carries no text at all.
func (r ExtractionResult) Empty() bool {
	return r.Text == ""
}

// VisionResult is the output of an OCR/vision pass over a snapshot crop.
type VisionResult struct {
	Text         string   `json:"text"`
	Confidence   float64  `json:"confidence"`
	ContentTypes []string `json:"content_types,omitempty"`
}

// FusionSource labels which extraction path produced the final text.
type FusionSource string

const (
	FusionSourceDOM    FusionSource = "dom"
	FusionSourceVision FusionSource = "vision"
	FusionSourceHybrid FusionSource = "hybrid"
)

// FusionDecision is the attributed result of merging DOM text with vision
// text for one content fingerprint.
type FusionDecision struct {
	Text       string       `json:"text"`
	Source     FusionSource `json:"source"`
	Confidence float64      `json:"confidence"`
}

// VisionCacheEntry is one cached fusion decision. Entries are immutable
// once written; a bounded cache evicts the oldest entry past capacity.
type VisionCacheEntry struct {
	Fingerprint  string       `json:"fingerprint"`
	DOMText      string       `json:"dom_text"`
	VisionText   string       `json:"vision_text"`
	MergedText   string       `json:"merged_text"`
	SourceLabel  FusionSource `json:"source_label"`
	Confidence   float64      `json:"confidence"`
	ContentTypes []string     `json:"content_types,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
