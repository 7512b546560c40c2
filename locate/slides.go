package locate

import (
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// SlidesLocator handles vector-rendered slide decks. Text lives in
// embedded vector text nodes and label-bearing divs rather than ordinary
// DOM text, so the strategy walks up to the nearest slide or shape
// container.
type SlidesLocator struct {
	// ContainerPrefix namespaces the deck's structural classes.
	ContainerPrefix string
	// ViewerClass is the outer slide viewer container class.
	ViewerClass string
}

// NewSlidesLocator returns the vector-slides strategy with default
// thresholds.
func NewSlidesLocator() *SlidesLocator {
	return &SlidesLocator{
		ContainerPrefix: "punch-",
		ViewerClass:     "punch-viewer-content",
	}
}

// Kind implements Locator.
func (l *SlidesLocator) Kind() types.RendererKind {
	return types.RendererVectorSlides
}

// Locate walks up from the hit element to the nearest shape or slide
// container: an svg group carrying text, a label-bearing div, or any
// namespaced structural container. Failing that, the viewer container
// holding the point wins.
func (l *SlidesLocator) Locate(s *document.Snapshot, p types.Point) *Region {
	if hit := s.ElementAt(p); hit != nil {
		for _, n := range append([]*document.Node{hit}, s.Ancestors(hit)...) {
			if l.isShapeContainer(s, n) {
				return &Region{Node: n, Kind: types.RendererVectorSlides}
			}
		}
	}

	for _, n := range s.NodesWithClassPrefix(l.ViewerClass) {
		if n.Bounds.Contains(p) {
			return &Region{Node: n, Kind: types.RendererVectorSlides}
		}
	}

	return nil
}

func (l *SlidesLocator) isShapeContainer(s *document.Snapshot, n *document.Node) bool {
	switch n.Tag {
	case "g", "svg":
		return subtreeHasText(s, n)
	case "div":
		if n.Attr("aria-label") != "" {
			return true
		}
	}
	return n.HasClassPrefix(l.ContainerPrefix)
}

func subtreeHasText(s *document.Snapshot, n *document.Node) bool {
	if n.Text != "" {
		return true
	}
	for _, d := range s.Descendants(n) {
		if d.Tag == "text" || d.Text != "" {
			return true
		}
	}
	return false
}
