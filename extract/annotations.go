package extract

import (
	"strings"

	"github.com/Hufamily/ThirdEye-sub000/document"
)

// annotations collects structured content inside the region, each segment
// tagged with a bracketed type marker so downstream consumers can tell
// content kinds apart.
func (a *Assembler) annotations(s *document.Snapshot, region *document.Node) []string {
	var out []string

	nodes := append([]*document.Node{region}, s.Descendants(region)...)
	for _, n := range nodes {
		switch n.Tag {
		case "img":
			if alt := strings.TrimSpace(n.Attr("alt")); alt != "" {
				out = append(out, "[image: "+alt+"]")
			}
		case "figcaption":
			if t := joinedText(s, n); t != "" {
				out = append(out, "[caption: "+t+"]")
			}
		case "pre", "code":
			if n.Tag == "code" && parentTag(s, n) == "pre" {
				continue // handled via the pre wrapper
			}
			if t := joinedText(s, n); t != "" {
				out = append(out, "[code:"+codeLanguage(s, n)+"] "+t)
			}
		case "table":
			out = append(out, tableRows(s, n)...)
		case "a":
			label := joinedText(s, n)
			if notableLink(label, n.Attr("href")) {
				out = append(out, "[link: "+label+"]")
			}
		}

		if aria := strings.TrimSpace(n.Attr("aria-label")); aria != "" {
			out = append(out, "[aria: "+aria+"]")
		} else if title := strings.TrimSpace(n.Attr("title")); title != "" {
			out = append(out, "[title: "+title+"]")
		}
	}

	return out
}

// codeLanguage detects the language from language-* or lang-* classes on
// the block or its inner code element.
func codeLanguage(s *document.Snapshot, n *document.Node) string {
	candidates := append([]*document.Node{n}, s.Descendants(n)...)
	for _, c := range candidates {
		for _, class := range c.Classes {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				return lang
			}
			if lang, ok := strings.CutPrefix(class, "lang-"); ok {
				return lang
			}
		}
	}
	return "unknown"
}

// tableRows serializes each table row as pipe-joined cells.
func tableRows(s *document.Snapshot, table *document.Node) []string {
	var out []string
	for _, row := range s.Descendants(table) {
		if row.Tag != "tr" {
			continue
		}
		var cells []string
		for _, cell := range s.Children(row) {
			if cell.Tag != "td" && cell.Tag != "th" {
				continue
			}
			if t := joinedText(s, cell); t != "" {
				cells = append(cells, t)
			}
		}
		if len(cells) > 0 {
			out = append(out, "[table] "+strings.Join(cells, " | "))
		}
	}
	return out
}

// notableLink filters out navigation noise: bare fragments, empty labels,
// one-word chrome like "Home".
func notableLink(label, href string) bool {
	if label == "" || href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	return len(label) >= 12
}

func parentTag(s *document.Snapshot, n *document.Node) string {
	if p := s.Parent(n); p != nil {
		return p.Tag
	}
	return ""
}

func joinedText(s *document.Snapshot, n *document.Node) string {
	return strings.Join(normalizeLines(subtreeText(s, n)), " ")
}

// pageMetadata assembles page-level metadata segments: meta description,
// Open Graph tags, JSON-LD name and description.
func pageMetadata(s *document.Snapshot) []string {
	var out []string
	add := func(key, marker string) {
		if v := strings.TrimSpace(s.Meta[key]); v != "" {
			out = append(out, "["+marker+"] "+v)
		}
	}
	add("description", "meta")
	add("og:title", "og")
	add("og:description", "og")
	add("ld:name", "ld")
	add("ld:description", "ld")
	return out
}
