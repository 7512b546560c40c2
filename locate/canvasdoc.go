package locate

import (
	"math"

	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// CanvasLocator handles canvas-rendered word processors. elementFromPoint
// frequently lands on a non-semantic canvas or rendering node there, so
// after the upward walk fails the strategy falls back to a geometric scan
// over all paragraph containers.
type CanvasLocator struct {
	// ParagraphClass is the paragraph-level container class.
	ParagraphClass string
	// EditorClass is the root editor container class.
	EditorClass string
	// Tolerance is the maximum point-to-rect distance for the geometric
	// nearest-match fallback.
	Tolerance float64
}

// NewCanvasLocator returns the canvas-document strategy with default
// thresholds.
func NewCanvasLocator() *CanvasLocator {
	return &CanvasLocator{
		ParagraphClass: "kix-paragraphrenderer",
		EditorClass:    "kix-appview-editor",
		Tolerance:      200,
	}
}

// Kind implements Locator.
func (l *CanvasLocator) Kind() types.RendererKind {
	return types.RendererCanvasDocument
}

// Locate tries, in order: an upward walk from the hit element to a
// paragraph container; a paragraph whose rect contains the point; the
// paragraph nearest the point within the tolerance; the root editor
// container.
func (l *CanvasLocator) Locate(s *document.Snapshot, p types.Point) *Region {
	if hit := s.ElementAt(p); hit != nil {
		for _, n := range append([]*document.Node{hit}, s.Ancestors(hit)...) {
			if n.HasClass(l.ParagraphClass) {
				return &Region{Node: n, Kind: types.RendererCanvasDocument}
			}
		}
	}

	paragraphs := s.NodesWithClassPrefix(l.ParagraphClass)

	var nearest *document.Node
	nearestDist := math.Inf(1)
	for _, n := range paragraphs {
		if n.Bounds.Contains(p) {
			return &Region{Node: n, Kind: types.RendererCanvasDocument}
		}
		if d := n.Bounds.DistanceTo(p); d < nearestDist {
			nearest = n
			nearestDist = d
		}
	}
	if nearest != nil && nearestDist <= l.Tolerance {
		return &Region{Node: nearest, Kind: types.RendererCanvasDocument}
	}

	for i := range s.Nodes {
		if s.Nodes[i].HasClass(l.EditorClass) {
			return &Region{Node: &s.Nodes[i], Kind: types.RendererCanvasDocument}
		}
	}

	return nil
}
