package fusion

import (
	"strings"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Policy is the hybrid fusion decision function. It is pure; the cache
// wraps it.
type Policy struct {
	cfg config.FusionConfig
}

// NewPolicy creates a fusion policy with the given thresholds.
func NewPolicy(cfg config.FusionConfig) *Policy {
	return &Policy{cfg: cfg}
}

// Fuse decides which text to return and attributes its source.
//
// With usable DOM text: vision wins outright when its text exceeds the DOM
// text by more than the configured ratio, which is the signature of
// canvas-rendered content the DOM only partially reflects; otherwise the
// two are merged span-wise. Without usable DOM text, whichever side exists
// wins; with neither, the decision is explicitly empty, never an error.
func (p *Policy) Fuse(domText string, vr *types.VisionResult) types.FusionDecision {
	domText = strings.TrimSpace(domText)
	visionText := ""
	if vr != nil {
		visionText = strings.TrimSpace(vr.Text)
	}

	if len(domText) >= p.cfg.MinDOMLength {
		if visionText != "" && float64(len(visionText)) > float64(len(domText))*p.cfg.VisionRatio {
			return types.FusionDecision{
				Text:       visionText,
				Source:     types.FusionSourceVision,
				Confidence: vr.Confidence,
			}
		}
		if visionText != "" {
			return types.FusionDecision{
				Text:       mergeSpans(domText, visionText),
				Source:     types.FusionSourceHybrid,
				Confidence: (1.0 + vr.Confidence) / 2,
			}
		}
		return types.FusionDecision{
			Text:       domText,
			Source:     types.FusionSourceDOM,
			Confidence: 1.0,
		}
	}

	if visionText != "" {
		return types.FusionDecision{
			Text:       visionText,
			Source:     types.FusionSourceVision,
			Confidence: vr.Confidence,
		}
	}

	// domText is below the usable minimum but may still be all we have.
	conf := 0.0
	if domText != "" {
		conf = 0.5
	}
	return types.FusionDecision{
		Text:       domText,
		Source:     types.FusionSourceDOM,
		Confidence: conf,
	}
}

// mergeSpans appends vision lines the DOM text does not already contain.
// The DOM side leads: its text is structurally attributed, vision fills
// the gaps.
func mergeSpans(domText, visionText string) string {
	var sb strings.Builder
	sb.WriteString(domText)

	seen := make(map[string]struct{})
	for _, line := range strings.Split(domText, "\n") {
		seen[strings.TrimSpace(line)] = struct{}{}
	}

	for _, line := range strings.Split(visionText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		if strings.Contains(domText, line) {
			continue
		}
		seen[line] = struct{}{}
		sb.WriteString("\n")
		sb.WriteString(line)
	}

	return sb.String()
}
