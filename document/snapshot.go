package document

import (
	"math"
	"strings"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

// Rect is an axis-aligned bounding box in logical page pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(p types.Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// DistanceTo returns the distance from the point to the nearest edge of
// the rect, zero when the point is inside.
func (r Rect) DistanceTo(p types.Point) float64 {
	dx := math.Max(math.Max(r.X-p.X, 0), p.X-(r.X+r.Width))
	dy := math.Max(math.Max(r.Y-p.Y, 0), p.Y-(r.Y+r.Height))
	return math.Sqrt(dx*dx + dy*dy)
}

// CenterY returns the vertical center of the rect.
func (r Rect) CenterY() float64 {
	return r.Y + r.Height/2
}

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Node is one element of the serialized page tree.
type Node struct {
	ID       string            `json:"id"`
	ParentID string            `json:"parent_id,omitempty"`
	Tag      string            `json:"tag"`
	Classes  []string          `json:"classes,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	// Text is the node's own visible text, not including descendants.
	Text   string `json:"text,omitempty"`
	Bounds Rect   `json:"bounds"`
}

// HasClass reports whether the node carries the exact class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// HasClassPrefix reports whether any class starts with the prefix.
// Canvas editors and PDF viewers namespace their structural classes.
func (n *Node) HasClassPrefix(prefix string) bool {
	for _, c := range n.Classes {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// Attr returns an attribute value, empty when absent.
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Snapshot is the serialized state of one page at one moment, captured by
// the client extension and shipped alongside samples or a capture request.
type Snapshot struct {
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	ViewportWidth  float64           `json:"viewport_width"`
	ViewportHeight float64           `json:"viewport_height"`
	// Meta holds page-level metadata: meta description, Open Graph tags,
	// JSON-LD name/description. Used only as a last-resort text signal.
	Meta map[string]string `json:"meta,omitempty"`
	// Kind is the renderer family when the client already detected it;
	// empty means the server detects it from URL and node probes.
	Kind  types.RendererKind `json:"kind,omitempty"`
	Nodes []Node             `json:"nodes"`

	byID     map[string]*Node
	children map[string][]*Node
}

// index builds the lookup maps lazily. Snapshots are decoded from JSON and
// then treated as read-only, so a single build is enough.
func (s *Snapshot) index() {
	if s.byID != nil {
		return
	}
	s.byID = make(map[string]*Node, len(s.Nodes))
	s.children = make(map[string][]*Node)
	for i := range s.Nodes {
		n := &s.Nodes[i]
		s.byID[n.ID] = n
		if n.ParentID != "" {
			s.children[n.ParentID] = append(s.children[n.ParentID], n)
		}
	}
}

// NodeByID returns the node with the given ID, or nil.
func (s *Snapshot) NodeByID(id string) *Node {
	s.index()
	return s.byID[id]
}

// Parent returns the parent of a node, or nil at the root.
func (s *Snapshot) Parent(n *Node) *Node {
	if n == nil || n.ParentID == "" {
		return nil
	}
	s.index()
	return s.byID[n.ParentID]
}

// Children returns the direct children of a node in document order.
func (s *Snapshot) Children(n *Node) []*Node {
	s.index()
	return s.children[n.ID]
}

// ElementAt returns the deepest node whose bounds contain the point,
// mirroring elementFromPoint: among containing nodes the one with the
// smallest area wins, ties broken by depth in the tree.
func (s *Snapshot) ElementAt(p types.Point) *Node {
	s.index()

	var best *Node
	bestArea := math.Inf(1)
	bestDepth := -1
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.Bounds.Empty() || !n.Bounds.Contains(p) {
			continue
		}
		area := n.Bounds.Width * n.Bounds.Height
		depth := s.depth(n)
		if area < bestArea || (area == bestArea && depth > bestDepth) {
			best = n
			bestArea = area
			bestDepth = depth
		}
	}
	return best
}

func (s *Snapshot) depth(n *Node) int {
	d := 0
	for p := s.Parent(n); p != nil; p = s.Parent(p) {
		d++
	}
	return d
}

// Ancestors returns the chain from the node's parent up to the root.
func (s *Snapshot) Ancestors(n *Node) []*Node {
	var chain []*Node
	for p := s.Parent(n); p != nil; p = s.Parent(p) {
		chain = append(chain, p)
	}
	return chain
}

// Descendants returns every node in the subtree rooted at n, in document
// order, excluding n itself.
func (s *Snapshot) Descendants(n *Node) []*Node {
	s.index()
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, c := range s.children[cur.ID] {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// NodesWithClassPrefix returns every node carrying a class with the given
// prefix, in document order.
func (s *Snapshot) NodesWithClassPrefix(prefix string) []*Node {
	var out []*Node
	for i := range s.Nodes {
		if s.Nodes[i].HasClassPrefix(prefix) {
			out = append(out, &s.Nodes[i])
		}
	}
	return out
}

// Root returns the first node without a parent, or nil for an empty
// snapshot.
func (s *Snapshot) Root() *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ParentID == "" {
			return &s.Nodes[i]
		}
	}
	return nil
}
