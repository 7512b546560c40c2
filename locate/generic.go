package locate

import (
	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// GenericLocator handles ordinary HTML pages: start at the element under
// the point and walk up to the nearest semantic container.
type GenericLocator struct {
	// MinBlockHeight is the minimum height for a div to count as a content
	// block rather than an inline wrapper.
	MinBlockHeight float64
}

// NewGenericLocator returns the generic strategy with default thresholds.
func NewGenericLocator() *GenericLocator {
	return &GenericLocator{MinBlockHeight: 100}
}

// Kind implements Locator.
func (l *GenericLocator) Kind() types.RendererKind {
	return types.RendererGenericHTML
}

// Locate walks up from the element at the point, preferring section,
// article and main containers, then the nearest sufficiently tall div,
// then the element itself.
func (l *GenericLocator) Locate(s *document.Snapshot, p types.Point) *Region {
	hit := s.ElementAt(p)
	if hit == nil {
		return nil
	}

	chain := append([]*document.Node{hit}, s.Ancestors(hit)...)

	for _, n := range chain {
		switch n.Tag {
		case "section", "article", "main":
			return &Region{Node: n, Kind: types.RendererGenericHTML}
		}
	}

	for _, n := range chain {
		if n.Tag == "div" && n.Bounds.Height >= l.MinBlockHeight {
			return &Region{Node: n, Kind: types.RendererGenericHTML}
		}
	}

	return &Region{Node: hit, Kind: types.RendererGenericHTML}
}
