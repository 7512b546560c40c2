package extract

import (
	"sort"
	"strings"

	"github.com/Hufamily/ThirdEye-sub000/document"
	"github.com/Hufamily/ThirdEye-sub000/types"
)

const (
	canvasParagraphClass = "kix-paragraphrenderer"
	pdfTextLayerClass    = "textLayer"
)

// canvasWindow returns the matched paragraph plus a fixed number of
// neighboring paragraphs before and after, ordered by vertical position.
// When the region is the whole editor container rather than a paragraph,
// the paragraph nearest the point anchors the window.
func (a *Assembler) canvasWindow(s *document.Snapshot, region *document.Node, p types.Point) []string {
	paragraphs := s.NodesWithClassPrefix(canvasParagraphClass)
	if len(paragraphs) == 0 {
		return normalizeLines(subtreeText(s, region))
	}

	sort.SliceStable(paragraphs, func(i, j int) bool {
		return paragraphs[i].Bounds.CenterY() < paragraphs[j].Bounds.CenterY()
	})

	center := indexOfNode(paragraphs, region)
	if center < 0 {
		center = nearestByY(paragraphs, p.Y)
	}

	lo := center - a.cfg.ParagraphWindow
	hi := center + a.cfg.ParagraphWindow
	if lo < 0 {
		lo = 0
	}
	if hi > len(paragraphs)-1 {
		hi = len(paragraphs) - 1
	}

	var out []string
	for _, n := range paragraphs[lo : hi+1] {
		out = append(out, normalizeLines(subtreeText(s, n))...)
	}
	return out
}

// pdfWindow returns the text-layer lines nearest the point, a fixed count
// before and after, selected by vertical proximity.
func (a *Assembler) pdfWindow(s *document.Snapshot, textLayer *document.Node, p types.Point) []string {
	var lines []*document.Node
	for _, c := range s.Descendants(textLayer) {
		if strings.TrimSpace(c.Text) != "" {
			lines = append(lines, c)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Bounds.CenterY() < lines[j].Bounds.CenterY()
	})

	center := nearestByY(lines, p.Y)
	lo := center - a.cfg.LineWindow
	hi := center + a.cfg.LineWindow
	if lo < 0 {
		lo = 0
	}
	if hi > len(lines)-1 {
		hi = len(lines) - 1
	}

	var out []string
	for _, n := range lines[lo : hi+1] {
		if t := strings.Join(strings.Fields(n.Text), " "); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func indexOfNode(nodes []*document.Node, target *document.Node) int {
	if target == nil {
		return -1
	}
	for i, n := range nodes {
		if n.ID == target.ID {
			return i
		}
	}
	return -1
}

func nearestByY(nodes []*document.Node, y float64) int {
	best := 0
	bestDist := -1.0
	for i, n := range nodes {
		d := n.Bounds.CenterY() - y
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
