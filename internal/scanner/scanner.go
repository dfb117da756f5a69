package scanner

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
)

// Page is the heading list extracted from one document.
type Page struct {
	Title    string
	Headings []heading.Record
}

// Scanner extracts heading records from raw document bytes.
type Scanner interface {
	Scan(r io.Reader, filename string) (*Page, error)
}

// SupportedExtensions lists file extensions this service can scan.
var SupportedExtensions = map[string]bool{
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".docx":     true,
	".pdf":      true,
	".csv":      true,
}

// ForFile returns the appropriate scanner for a filename.
func ForFile(filename string) (Scanner, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return &HTMLScanner{}, nil
	case ".md", ".markdown":
		return &MarkdownScanner{}, nil
	case ".docx":
		return &DOCXScanner{}, nil
	case ".pdf":
		return &PDFScanner{}, nil
	case ".csv":
		return &CSVScanner{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ordinals hands out document-order positions starting at 1.
type ordinals struct{ n int }

func (o *ordinals) next() int {
	o.n++
	return o.n
}

func trimExt(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
