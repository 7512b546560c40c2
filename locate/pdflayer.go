package locate

import (
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// PDFLocator handles PDF viewers with a text layer. The strategy finds the
// page whose vertical bounds contain the point, then that page's text
// layer. A viewer without a text layer (plugin rendering) produces nil and
// the page is treated as OCR-only.
type PDFLocator struct {
	// PageClass marks per-page containers.
	PageClass string
	// TextLayerClass marks the selectable text layer inside a page.
	TextLayerClass string
}

// NewPDFLocator returns the PDF text-layer strategy with default classes.
func NewPDFLocator() *PDFLocator {
	return &PDFLocator{
		PageClass:      "page",
		TextLayerClass: "textLayer",
	}
}

// Kind implements Locator.
func (l *PDFLocator) Kind() types.RendererKind {
	return types.RendererPDFTextLayer
}

// Locate matches pages on vertical bounds only: horizontally the viewer
// centers pages, and a point in the margin still attends to that page.
func (l *PDFLocator) Locate(s *document.Snapshot, p types.Point) *Region {
	var page *document.Node
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if !n.HasClass(l.PageClass) {
			continue
		}
		if p.Y >= n.Bounds.Y && p.Y <= n.Bounds.Y+n.Bounds.Height {
			page = n
			break
		}
	}
	if page == nil {
		return nil
	}

	for _, c := range s.Descendants(page) {
		if c.HasClass(l.TextLayerClass) {
			return &Region{Node: c, Kind: types.RendererPDFTextLayer}
		}
	}

	// Page exists but no text layer has materialized; OCR-only.
	return nil
}
