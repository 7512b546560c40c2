package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkup = `<!DOCTYPE html>
<html>
<head>
  <title> Quarterly Report </title>
  <meta name="description" content="Numbers for Q2">
  <meta name="viewport" content="width=device-width">
  <meta property="og:title" content="Q2 Report">
  <script type="application/ld+json">{"name":"Q2 Report","description":"Earnings summary"}</script>
  <style>body { margin: 0 }</style>
</head>
<body>
  <main class="content layout-wide">
    <h1 id="headline">Revenue grew</h1>
    <p>Margins held <em>steady</em> through the quarter.</p>
    <a href="/full">Full report</a>
  </main>
  <script>trackPageview()</script>
</body>
</html>`

func TestParseHTML(t *testing.T) {
	snap, err := ParseHTML("https://example.com/q2", strings.NewReader(sampleMarkup))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/q2", snap.URL)
	assert.Equal(t, "Quarterly Report", snap.Title)

	t.Run("metadata", func(t *testing.T) {
		assert.Equal(t, "Numbers for Q2", snap.Meta["description"])
		assert.Equal(t, "Q2 Report", snap.Meta["og:title"])
		assert.Equal(t, "Q2 Report", snap.Meta["ld:name"])
		assert.Equal(t, "Earnings summary", snap.Meta["ld:description"])
		assert.NotContains(t, snap.Meta, "viewport")
	})

	t.Run("scripts and styles dropped", func(t *testing.T) {
		for i := range snap.Nodes {
			assert.NotEqual(t, "script", snap.Nodes[i].Tag)
			assert.NotEqual(t, "style", snap.Nodes[i].Tag)
		}
	})

	t.Run("synthetic ids and parent links", func(t *testing.T) {
		var mainNode *Node
		for i := range snap.Nodes {
			if snap.Nodes[i].Tag == "main" {
				mainNode = &snap.Nodes[i]
			}
		}
		require.NotNil(t, mainNode)
		assert.Regexp(t, `^h\d+$`, mainNode.ID)
		assert.Equal(t, []string{"content", "layout-wide"}, mainNode.Classes)

		kids := snap.Children(mainNode)
		require.Len(t, kids, 3)
		assert.Equal(t, "h1", kids[0].Tag)
		assert.Equal(t, "Revenue grew", kids[0].Text)
	})

	t.Run("own text excludes descendants", func(t *testing.T) {
		var p *Node
		for i := range snap.Nodes {
			if snap.Nodes[i].Tag == "p" {
				p = &snap.Nodes[i]
			}
		}
		require.NotNil(t, p)
		assert.Equal(t, "Margins held through the quarter.", p.Text)

		em := snap.Children(p)
		require.Len(t, em, 1)
		assert.Equal(t, "steady", em[0].Text)
	})

	t.Run("allowlisted attributes kept", func(t *testing.T) {
		var link *Node
		for i := range snap.Nodes {
			if snap.Nodes[i].Tag == "a" {
				link = &snap.Nodes[i]
			}
		}
		require.NotNil(t, link)
		assert.Equal(t, "/full", link.Attr("href"))

		h1 := snap.NodeByID(snap.Children(snap.NodeByID(mainID(snap)))[0].ID)
		assert.Equal(t, "headline", h1.Attr("id"))
	})
}

func mainID(s *Snapshot) string {
	for i := range s.Nodes {
		if s.Nodes[i].Tag == "main" {
			return s.Nodes[i].ID
		}
	}
	return ""
}

func TestParseHTML_MalformedJSONLD(t *testing.T) {
	markup := `<html><head><script type="application/ld+json">{not json</script></head><body><p>ok</p></body></html>`
	snap, err := ParseHTML("https://example.com", strings.NewReader(markup))
	require.NoError(t, err)
	assert.NotContains(t, snap.Meta, "ld:name")
}

func TestParseHTML_EmptyDocument(t *testing.T) {
	snap, err := ParseHTML("https://example.com", strings.NewReader(""))
	require.NoError(t, err)
	// html.Parse synthesizes html/head/body even for empty input.
	assert.NotEmpty(t, snap.Nodes)
	assert.Empty(t, snap.Title)
}
