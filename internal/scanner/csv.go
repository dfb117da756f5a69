package scanner

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
)

// CSVScanner imports a heading list exported by a page scan. The first row
// names the columns; "level" and "name" are required, "ordinal",
// "visible_on_screen" and "visible_to_at" are optional.
type CSVScanner struct{}

func (p *CSVScanner) Scan(r io.Reader, filename string) (*Page, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	page := &Page{Title: trimExt(filename)}
	if len(records) == 0 {
		return page, nil
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	levelCol, ok := cols["level"]
	if !ok {
		return nil, fmt.Errorf("parse csv: missing %q column", "level")
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("parse csv: missing %q column", "name")
	}

	var ord ordinals
	for i, row := range records[1:] {
		line := i + 2 // 1-indexed, skip header
		level, err := strconv.Atoi(strings.TrimSpace(cell(row, levelCol)))
		if err != nil {
			return nil, fmt.Errorf("parse csv line %d: level: %w", line, err)
		}
		rec := heading.Record{
			Level:           level,
			Ordinal:         ord.next(),
			Name:            strings.TrimSpace(cell(row, nameCol)),
			VisibleOnScreen: true,
			VisibleToAT:     true,
		}
		if c, ok := cols["ordinal"]; ok {
			if rec.Ordinal, err = strconv.Atoi(strings.TrimSpace(cell(row, c))); err != nil {
				return nil, fmt.Errorf("parse csv line %d: ordinal: %w", line, err)
			}
		}
		if c, ok := cols["visible_on_screen"]; ok {
			rec.VisibleOnScreen = parseFlag(cell(row, c), true)
		}
		if c, ok := cols["visible_to_at"]; ok {
			rec.VisibleToAT = parseFlag(cell(row, c), true)
		}
		page.Headings = append(page.Headings, rec)
	}

	return page, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseFlag(v string, fallback bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		return b
	}
	return fallback
}
