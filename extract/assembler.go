package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/config"
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/locate"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Assembler builds extraction results from located regions.
type Assembler struct {
	cfg    config.ExtractConfig
	logger *zap.Logger
}

// NewAssembler creates an assembler. A nil logger is replaced with a nop
// logger.
func NewAssembler(cfg config.ExtractConfig, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "assembler")),
	}
}

// Assemble produces the bounded text blob for the region. It never fails:
// an empty page degrades to title and URL. Segments are de-duplicated by
// exact match and the final blob is truncated to the configured cap.
func (a *Assembler) Assemble(s *document.Snapshot, region *locate.Region, p types.Point) types.ExtractionResult {
	var segments []string

	visible := a.visibleText(s, region, p)
	segments = append(segments, visible...)

	if region.Node != nil {
		segments = append(segments, a.annotations(s, region.Node)...)
	}

	if totalLength(visible) < a.cfg.MinVisibleLength {
		segments = append(segments, pageMetadata(s)...)
	}

	if len(segments) == 0 {
		if s.Title != "" {
			segments = append(segments, s.Title)
		}
		if s.URL != "" {
			segments = append(segments, s.URL)
		}
	}

	text := truncate(strings.Join(dedupe(segments), "\n"), a.cfg.MaxTextLength)

	a.logger.Debug("assembled extraction",
		zap.String("kind", string(region.Kind)),
		zap.Bool("whole_page", region.WholePage),
		zap.Int("length", len(text)))

	return types.ExtractionResult{
		Text:        text,
		TruncatedAt: a.cfg.MaxTextLength,
		SourceURL:   s.URL,
	}
}

// visibleText collects the region's own text. Canvas and PDF regions get a
// fixed window of neighboring paragraphs or lines around the point, which
// recreates a centered context window even though no single contiguous
// text node exists there.
func (a *Assembler) visibleText(s *document.Snapshot, region *locate.Region, p types.Point) []string {
	switch {
	case region.WholePage:
		return normalizeLines(allText(s))
	case region.Kind == types.RendererCanvasDocument:
		return a.canvasWindow(s, region.Node, p)
	case region.Kind == types.RendererPDFTextLayer:
		return a.pdfWindow(s, region.Node, p)
	default:
		return normalizeLines(subtreeText(s, region.Node))
	}
}

// UsableLength returns the length of the text once bracketed annotation
// markers are stripped. The snapshot fallback triggers on this value, not
// on the raw length, so marker-only extractions still count as thin.
func UsableLength(text string) int {
	return len(strings.TrimSpace(markerPattern.ReplaceAllString(text, "")))
}

var markerPattern = regexp.MustCompile(`\[[a-z-]+(?::[^\]]*)?\]\s?`)

// allText walks every node of the snapshot in document order.
func allText(s *document.Snapshot) []string {
	var out []string
	for i := range s.Nodes {
		if t := strings.TrimSpace(s.Nodes[i].Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// subtreeText collects the node's own text plus its descendants'.
func subtreeText(s *document.Snapshot, n *document.Node) []string {
	var out []string
	if t := strings.TrimSpace(n.Text); t != "" {
		out = append(out, t)
	}
	for _, d := range s.Descendants(n) {
		if t := strings.TrimSpace(d.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeLines collapses internal whitespace and drops blank lines.
func normalizeLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		norm := strings.Join(strings.Fields(line), " ")
		if norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

func totalLength(segments []string) int {
	n := 0
	for _, s := range segments {
		n += len(s)
	}
	return n
}

// dedupe removes exact duplicates, keeping first occurrence order.
func dedupe(segments []string) []string {
	seen := make(map[string]struct{}, len(segments))
	var out []string
	for _, s := range segments {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func truncate(text string, limit int) string {
	if limit > 0 && len(text) > limit {
		return text[:limit]
	}
	return text
}
