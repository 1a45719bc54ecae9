package content

import (
	"strings"

	"golang.org/x/net/html"
)

// skip these subtrees entirely when collecting article text
var nonContentTags = map[string]struct{}{
	"script": {},
	"style":  {},
	"nav":    {},
	"header": {},
	"footer": {},
	"aside":  {},
}

// blockTags get a paragraph break between their text runs
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "section": {}, "article": {}, "li": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"blockquote": {}, "pre": {}, "br": {}, "tr": {},
}

// stripHTML reduces an HTML document to plain text and extracts its title.
// A parse failure degrades to treating the payload as plain text; articles
// arriving as markdown or text pass through unchanged.
func stripHTML(payload []byte) (text, title string) {
	doc, err := html.Parse(strings.NewReader(string(payload)))
	if err != nil {
		return strings.TrimSpace(string(payload)), ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := nonContentTags[n.Data]; skip {
				return
			}
			if n.Data == "title" && title == "" && n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
				return
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				b.WriteString(trimmed)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, block := blockTags[n.Data]; block {
				b.WriteString("\n\n")
			}
		}
	}
	walk(doc)

	return collapseBlankLines(b.String()), title
}

// collapseBlankLines trims trailing spaces and squeezes blank-line runs.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := true // suppress leading blanks
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
