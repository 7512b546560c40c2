package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hufamily/ThirdEye-sub000/types"
)

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}

	assert.True(t, r.Contains(types.Point{X: 60, Y: 45}))
	assert.True(t, r.Contains(types.Point{X: 10, Y: 20}), "top-left corner is inclusive")
	assert.True(t, r.Contains(types.Point{X: 110, Y: 70}), "bottom-right corner is inclusive")
	assert.False(t, r.Contains(types.Point{X: 9, Y: 45}))
	assert.False(t, r.Contains(types.Point{X: 60, Y: 71}))
}

func TestRect_DistanceTo(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	assert.Zero(t, r.DistanceTo(types.Point{X: 5, Y: 5}))
	assert.InDelta(t, 5.0, r.DistanceTo(types.Point{X: 15, Y: 5}), 1e-9)
	assert.InDelta(t, 5.0, r.DistanceTo(types.Point{X: 13, Y: 14}), 1e-9, "3-4-5 diagonal")
}

func TestRect_Empty(t *testing.T) {
	assert.True(t, Rect{Width: 0, Height: 10}.Empty())
	assert.True(t, Rect{Width: 10, Height: -1}.Empty())
	assert.False(t, Rect{Width: 1, Height: 1}.Empty())
}

func TestNode_Classes(t *testing.T) {
	n := &Node{Classes: []string{"kix-paragraphrenderer", "docs-text"}}

	assert.True(t, n.HasClass("docs-text"))
	assert.False(t, n.HasClass("docs"))
	assert.True(t, n.HasClassPrefix("kix-"))
	assert.False(t, n.HasClassPrefix("punch-"))
}

func TestNode_Attr(t *testing.T) {
	n := &Node{Attrs: map[string]string{"href": "/about"}}
	assert.Equal(t, "/about", n.Attr("href"))
	assert.Empty(t, n.Attr("src"))
	assert.Empty(t, (&Node{}).Attr("href"))
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		URL: "https://example.com/article",
		Nodes: []Node{
			{ID: "root", Tag: "body", Bounds: Rect{Width: 1280, Height: 2000}},
			{ID: "main", ParentID: "root", Tag: "main", Bounds: Rect{X: 100, Y: 0, Width: 1080, Height: 2000}},
			{ID: "p1", ParentID: "main", Tag: "p", Text: "first paragraph", Bounds: Rect{X: 120, Y: 40, Width: 1040, Height: 60}},
			{ID: "p2", ParentID: "main", Tag: "p", Text: "second paragraph", Bounds: Rect{X: 120, Y: 120, Width: 1040, Height: 60}},
			{ID: "em1", ParentID: "p2", Tag: "em", Text: "emphasis", Bounds: Rect{X: 120, Y: 120, Width: 200, Height: 60}},
			{ID: "aside", ParentID: "root", Tag: "aside", Classes: []string{"sidebar-nav"}, Bounds: Rect{X: 0, Y: 0, Width: 100, Height: 2000}},
		},
	}
}

func TestSnapshot_NodeByID(t *testing.T) {
	s := testSnapshot()

	n := s.NodeByID("p1")
	require.NotNil(t, n)
	assert.Equal(t, "first paragraph", n.Text)
	assert.Nil(t, s.NodeByID("missing"))
}

func TestSnapshot_ParentAndChildren(t *testing.T) {
	s := testSnapshot()

	p2 := s.NodeByID("p2")
	parent := s.Parent(p2)
	require.NotNil(t, parent)
	assert.Equal(t, "main", parent.ID)

	assert.Nil(t, s.Parent(s.NodeByID("root")))
	assert.Nil(t, s.Parent(nil))

	kids := s.Children(s.NodeByID("main"))
	require.Len(t, kids, 2)
	assert.Equal(t, "p1", kids[0].ID)
	assert.Equal(t, "p2", kids[1].ID)
}

func TestSnapshot_ElementAt(t *testing.T) {
	s := testSnapshot()

	t.Run("deepest smallest node wins", func(t *testing.T) {
		// Point inside root, main, p2 and em1; em1 has the smallest area.
		n := s.ElementAt(types.Point{X: 150, Y: 140})
		require.NotNil(t, n)
		assert.Equal(t, "em1", n.ID)
	})

	t.Run("falls back to enclosing paragraph", func(t *testing.T) {
		n := s.ElementAt(types.Point{X: 600, Y: 140})
		require.NotNil(t, n)
		assert.Equal(t, "p2", n.ID)
	})

	t.Run("nothing at point", func(t *testing.T) {
		assert.Nil(t, s.ElementAt(types.Point{X: 5000, Y: 5000}))
	})

	t.Run("equal area breaks tie by depth", func(t *testing.T) {
		s := &Snapshot{Nodes: []Node{
			{ID: "a", Tag: "div", Bounds: Rect{Width: 100, Height: 100}},
			{ID: "b", ParentID: "a", Tag: "div", Bounds: Rect{Width: 100, Height: 100}},
		}}
		n := s.ElementAt(types.Point{X: 50, Y: 50})
		require.NotNil(t, n)
		assert.Equal(t, "b", n.ID)
	})
}

func TestSnapshot_Ancestors(t *testing.T) {
	s := testSnapshot()

	chain := s.Ancestors(s.NodeByID("em1"))
	require.Len(t, chain, 3)
	assert.Equal(t, "p2", chain[0].ID)
	assert.Equal(t, "main", chain[1].ID)
	assert.Equal(t, "root", chain[2].ID)

	assert.Empty(t, s.Ancestors(s.NodeByID("root")))
}

func TestSnapshot_Descendants(t *testing.T) {
	s := testSnapshot()

	desc := s.Descendants(s.NodeByID("main"))
	ids := make([]string, len(desc))
	for i, n := range desc {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"p1", "p2", "em1"}, ids)
}

func TestSnapshot_NodesWithClassPrefix(t *testing.T) {
	s := testSnapshot()

	hits := s.NodesWithClassPrefix("sidebar-")
	require.Len(t, hits, 1)
	assert.Equal(t, "aside", hits[0].ID)
	assert.Empty(t, s.NodesWithClassPrefix("kix-"))
}

func TestSnapshot_Root(t *testing.T) {
	s := testSnapshot()
	root := s.Root()
	require.NotNil(t, root)
	assert.Equal(t, "root", root.ID)

	assert.Nil(t, (&Snapshot{}).Root())
}
