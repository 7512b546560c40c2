package document

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML ingests raw markup into a Snapshot. Requests that arrive
// without a structured node tree, typically the one-shot capture endpoint,
// still get title, page metadata and visible text this way; node bounds
// stay zero, so geometric strategies degrade and the whole-page fallback
// carries the extraction.
func ParseHTML(url string, r io.Reader) (*Snapshot, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	snap := &Snapshot{
		URL:  url,
		Meta: make(map[string]string),
	}

	seq := 0
	var walk func(n *html.Node, parentID string)
	walk = func(n *html.Node, parentID string) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				if n.Data == "script" && attrVal(n, "type") == "application/ld+json" {
					collectJSONLD(snap, textContent(n))
				}
				return
			case "title":
				snap.Title = strings.TrimSpace(textContent(n))
				return
			case "meta":
				collectMeta(snap, n)
				return
			}

			seq++
			node := Node{
				ID:       fmt.Sprintf("h%d", seq),
				ParentID: parentID,
				Tag:      n.Data,
				Text:     ownText(n),
			}
			if cls := attrVal(n, "class"); cls != "" {
				node.Classes = strings.Fields(cls)
			}
			for _, a := range n.Attr {
				switch a.Key {
				case "class":
				case "href", "src", "alt", "title", "aria-label", "role", "lang", "id":
					if node.Attrs == nil {
						node.Attrs = make(map[string]string)
					}
					node.Attrs[a.Key] = a.Val
				}
			}
			snap.Nodes = append(snap.Nodes, node)

			childParent := node.ID
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, childParent)
			}
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c, parentID)
			}
		}
	}
	walk(root, "")

	return snap, nil
}

func collectMeta(snap *Snapshot, n *html.Node) {
	content := attrVal(n, "content")
	if content == "" {
		return
	}
	if name := attrVal(n, "name"); name == "description" || name == "keywords" || name == "author" {
		snap.Meta[name] = content
	}
	if prop := attrVal(n, "property"); strings.HasPrefix(prop, "og:") {
		snap.Meta[prop] = content
	}
}

// collectJSONLD pulls name/description out of a JSON-LD block. Anything
// malformed is ignored; metadata is a last-resort signal, never an error.
func collectJSONLD(snap *Snapshot, raw string) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return
	}
	if name, ok := data["name"].(string); ok && snap.Meta["ld:name"] == "" {
		snap.Meta["ld:name"] = name
	}
	if desc, ok := data["description"].(string); ok && snap.Meta["ld:description"] == "" {
		snap.Meta["ld:description"] = desc
	}
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// ownText joins the element's direct text children only.
func ownText(n *html.Node) string {
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// textContent joins all text in the subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			sb.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
