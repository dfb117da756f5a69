package scanner

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
	"golang.org/x/net/html"
)

// HTMLScanner extracts headings from static HTML. Visibility is derived from
// markup only: no stylesheet is applied.
type HTMLScanner struct{}

// visibility is inherited from ancestors while walking the document.
type visibility struct {
	onScreen bool
	toAT     bool
}

func (p *HTMLScanner) Scan(r io.Reader, filename string) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := &Page{Title: trimExt(filename)}
	if title := findTitle(doc); title != "" {
		page.Title = title
	}

	var ord ordinals
	var walk func(*html.Node, visibility)
	walk = func(n *html.Node, vis visibility) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "template", "noscript", "head":
				return
			}
			vis = elementVisibility(n, vis)

			if level := headingLevel(n); level > 0 {
				page.Headings = append(page.Headings, heading.Record{
					Level:           level,
					Ordinal:         ord.next(),
					Name:            accessibleName(n),
					VisibleOnScreen: vis.onScreen,
					VisibleToAT:     vis.toAT,
				})
				return // Nested headings are not meaningful.
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, vis)
		}
	}
	walk(doc, visibility{onScreen: true, toAT: true})

	return page, nil
}

// headingLevel returns 1-6 for heading elements, 0 otherwise.
func headingLevel(n *html.Node) int {
	role := strings.ToLower(strings.TrimSpace(attr(n, "role")))
	if role == "presentation" || role == "none" {
		return 0
	}

	level := 0
	switch n.Data {
	case "h1":
		level = 1
	case "h2":
		level = 2
	case "h3":
		level = 3
	case "h4":
		level = 4
	case "h5":
		level = 5
	case "h6":
		level = 6
	}
	if level == 0 && role != "heading" {
		return 0
	}
	if level == 0 {
		level = 2 // ARIA default for role=heading.
	}
	if v, err := strconv.Atoi(strings.TrimSpace(attr(n, "aria-level"))); err == nil && v >= heading.MinLevel && v <= heading.MaxLevel {
		level = v
	}
	return level
}

func elementVisibility(n *html.Node, parent visibility) visibility {
	vis := parent
	if hasAttr(n, "hidden") || styleHides(attr(n, "style")) {
		return visibility{}
	}
	if strings.EqualFold(strings.TrimSpace(attr(n, "aria-hidden")), "true") {
		vis.toAT = false
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		switch class {
		case "sr-only", "visually-hidden", "screen-reader-text":
			vis.onScreen = false
		}
	}
	return vis
}

func styleHides(style string) bool {
	s := strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(s, "display:none") || strings.Contains(s, "visibility:hidden")
}

// accessibleName approximates the computed name: aria-label wins, otherwise
// the text content with image alt text, whitespace collapsed.
func accessibleName(n *html.Node) string {
	if label := strings.TrimSpace(attr(n, "aria-label")); label != "" {
		return label
	}
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "img" {
				buf.WriteString(" " + attr(n, "alt") + " ")
			}
			if hasAttr(n, "hidden") || strings.EqualFold(attr(n, "aria-hidden"), "true") {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extract(c)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		var buf strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
