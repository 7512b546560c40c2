package locate

import (
	"go.uber.org/zap"

	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Region is the concrete content region located for an attention point.
// It is owned transiently by the extraction call and never cached.
type Region struct {
	// Node is the located container; nil only for whole-page regions.
	Node *document.Node
	// Kind is the renderer family the region was located under.
	Kind types.RendererKind
	// WholePage marks the terminal fallback: no strategy found a region,
	// extraction uses page text or title.
	WholePage bool
}

// Locator locates the content region at a point for one renderer family.
// A nil result means the strategy failed and the caller should fall back.
type Locator interface {
	Kind() types.RendererKind
	Locate(s *document.Snapshot, p types.Point) *Region
}

// Chain dispatches on the detected renderer kind and applies the fallback
// policy: the family strategy first, then the generic strategy for
// non-generic families, then the whole page.
type Chain struct {
	generic *GenericLocator
	byKind  map[types.RendererKind]Locator
	logger  *zap.Logger
}

// NewChain builds the standard strategy chain.
func NewChain(logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	generic := NewGenericLocator()
	byKind := map[types.RendererKind]Locator{
		types.RendererGenericHTML:    generic,
		types.RendererCanvasDocument: NewCanvasLocator(),
		types.RendererVectorSlides:   NewSlidesLocator(),
		types.RendererPDFTextLayer:   NewPDFLocator(),
	}
	return &Chain{
		generic: generic,
		byKind:  byKind,
		logger:  logger.With(zap.String("component", "locator")),
	}
}

// Resolve locates the region at the point. It always returns a non-nil
// region; the terminal fallback is the whole page.
func (c *Chain) Resolve(s *document.Snapshot, p types.Point) *Region {
	kind := document.DetectKind(s)

	if loc, ok := c.byKind[kind]; ok {
		if region := loc.Locate(s, p); region != nil {
			return region
		}
		c.logger.Debug("family strategy found no region",
			zap.String("kind", string(kind)),
			zap.Float64("x", p.X),
			zap.Float64("y", p.Y))
	}

	// Weaker strategy: treat the page as ordinary markup.
	if kind != types.RendererGenericHTML {
		if region := c.generic.Locate(s, p); region != nil {
			region.Kind = kind
			return region
		}
	}

	return &Region{Kind: kind, WholePage: true}
}
