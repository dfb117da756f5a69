package scanner

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFScanner reads the document outline (bookmarks) of a PDF. Bookmark depth
// becomes the heading level; anything deeper than 6 is reported as 6.
type PDFScanner struct{}

func (p *PDFScanner) Scan(r io.Reader, filename string) (*Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	page := &Page{Title: trimExt(filename)}
	var ord ordinals
	appendOutline(page, reader.Outline().Child, 1, &ord)
	return page, nil
}

func appendOutline(page *Page, entries []pdflib.Outline, depth int, ord *ordinals) {
	level := min(depth, heading.MaxLevel)
	for _, e := range entries {
		page.Headings = append(page.Headings, heading.Record{
			Level:           level,
			Ordinal:         ord.next(),
			Name:            strings.TrimSpace(e.Title),
			VisibleOnScreen: true,
			VisibleToAT:     true,
		})
		appendOutline(page, e.Child, depth+1, ord)
	}
}
