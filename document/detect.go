package document

import (
	"strings"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Class prefixes probed to tell renderer families apart. Canvas word
// processors and PDF viewers keep stable structural class namespaces even
// as their inner markup churns.
const (
	canvasParagraphClass = "kix-paragraphrenderer"
	canvasEditorClass    = "kix-appview-editor"
	slideContainerClass  = "punch-viewer-content"
	pdfTextLayerClass    = "textLayer"
	pdfPageClass         = "page"
)

// DetectKind resolves the renderer family of a snapshot from its URL
// pattern and node probes. Detection runs once at snapshot arrival and is
// re-run lazily when a later snapshot's probes disagree, which covers PDF
// viewers that finish initializing their text layer after first paint.
func DetectKind(s *Snapshot) types.RendererKind {
	if s == nil {
		return types.RendererGenericHTML
	}
	if s.Kind.Valid() {
		return s.Kind
	}

	url := strings.ToLower(s.URL)

	switch {
	case strings.Contains(url, "docs.google.com/document"):
		return types.RendererCanvasDocument
	case strings.Contains(url, "docs.google.com/presentation"):
		return types.RendererVectorSlides
	case strings.HasSuffix(strings.SplitN(url, "?", 2)[0], ".pdf"):
		return types.RendererPDFTextLayer
	}

	// URL was inconclusive; probe the node tree.
	hasCanvas := false
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.HasClassPrefix("kix-") {
			return types.RendererCanvasDocument
		}
		if n.HasClassPrefix("punch-") {
			return types.RendererVectorSlides
		}
		if n.HasClass(pdfTextLayerClass) {
			return types.RendererPDFTextLayer
		}
		if n.Tag == "canvas" {
			hasCanvas = true
		}
	}

	// A page dominated by a single large canvas and near-empty DOM text is
	// treated as a canvas document so the OCR fallback engages.
	if hasCanvas && visibleTextLength(s) < 40 {
		return types.RendererCanvasDocument
	}

	return types.RendererGenericHTML
}

func visibleTextLength(s *Snapshot) int {
	total := 0
	for i := range s.Nodes {
		total += len(strings.TrimSpace(s.Nodes[i].Text))
	}
	return total
}
