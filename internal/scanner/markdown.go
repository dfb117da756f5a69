package scanner

import (
	"io"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownScanner extracts ATX and setext headings using goldmark.
// Markdown has no hidden content, so every heading is visible.
type MarkdownScanner struct{}

func (p *MarkdownScanner) Scan(r io.Reader, filename string) (*Page, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	page := &Page{Title: trimExt(filename)}
	var ord ordinals

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		name := strings.Join(strings.Fields(string(h.Text(src))), " ")
		if h.Level == 1 && len(page.Headings) == 0 && name != "" {
			page.Title = name
		}
		page.Headings = append(page.Headings, heading.Record{
			Level:           h.Level,
			Ordinal:         ord.next(),
			Name:            name,
			VisibleOnScreen: true,
			VisibleToAT:     true,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}
