// Package format converts scraped HTML fragments into the plain-text
// paragraph blocks stored on a chapter.
package format

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var spaceRe = regexp.MustCompile(`[ \t\r\f\x{00a0}]+`)

// FlattenText extracts the text content of an HTML fragment. Entities
// are decoded, <br> elements become single spaces so adjoining words do
// not run together, and runs of whitespace collapse to one space.
// Invalid markup degrades to whatever text the parser can recover.
func FlattenText(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return CollapseSpace(fragment)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return CollapseSpace(b.String())
}

// CollapseSpace trims the string and collapses internal whitespace
// runs (including non-breaking spaces) to single spaces.
func CollapseSpace(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
