package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

func TestDetectKind_ClientHintWins(t *testing.T) {
	s := &Snapshot{
		URL:  "https://docs.google.com/document/d/abc",
		Kind: types.RendererPDFTextLayer,
	}
	assert.Equal(t, types.RendererPDFTextLayer, DetectKind(s))
}

func TestDetectKind_URLPatterns(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want types.RendererKind
	}{
		{"google docs", "https://docs.google.com/document/d/abc/edit", types.RendererCanvasDocument},
		{"google slides", "https://docs.google.com/presentation/d/abc/edit", types.RendererVectorSlides},
		{"pdf suffix", "https://example.com/paper.pdf", types.RendererPDFTextLayer},
		{"pdf with query", "https://example.com/paper.PDF?page=3", types.RendererPDFTextLayer},
		{"plain page", "https://example.com/article", types.RendererGenericHTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(&Snapshot{URL: tt.url}))
		})
	}
}

func TestDetectKind_NodeProbes(t *testing.T) {
	t.Run("kix classes", func(t *testing.T) {
		s := &Snapshot{
			URL:   "https://internal.example.com/editor",
			Nodes: []Node{{ID: "n1", Tag: "div", Classes: []string{"kix-paragraphrenderer"}}},
		}
		assert.Equal(t, types.RendererCanvasDocument, DetectKind(s))
	})

	t.Run("punch classes", func(t *testing.T) {
		s := &Snapshot{
			URL:   "https://internal.example.com/deck",
			Nodes: []Node{{ID: "n1", Tag: "div", Classes: []string{"punch-viewer-content"}}},
		}
		assert.Equal(t, types.RendererVectorSlides, DetectKind(s))
	})

	t.Run("text layer", func(t *testing.T) {
		s := &Snapshot{
			URL:   "https://example.com/viewer",
			Nodes: []Node{{ID: "n1", Tag: "div", Classes: []string{"textLayer"}}},
		}
		assert.Equal(t, types.RendererPDFTextLayer, DetectKind(s))
	})
}

func TestDetectKind_BareCanvasWithThinText(t *testing.T) {
	s := &Snapshot{
		URL: "https://app.example.com/draw",
		Nodes: []Node{
			{ID: "n1", Tag: "canvas"},
			{ID: "n2", Tag: "div", Text: "toolbar"},
		},
	}
	assert.Equal(t, types.RendererCanvasDocument, DetectKind(s))
}

func TestDetectKind_CanvasWithRichTextStaysGeneric(t *testing.T) {
	s := &Snapshot{
		URL: "https://example.com/chart-article",
		Nodes: []Node{
			{ID: "n1", Tag: "canvas"},
			{ID: "n2", Tag: "p", Text: "A long explanatory paragraph that provides plenty of visible text."},
		},
	}
	assert.Equal(t, types.RendererGenericHTML, DetectKind(s))
}

func TestDetectKind_NilSnapshot(t *testing.T) {
	assert.Equal(t, types.RendererGenericHTML, DetectKind(nil))
}
