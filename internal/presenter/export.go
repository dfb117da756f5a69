package presenter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/outliner/internal/outline"
)

// WriteCSV exports the forest one row per heading in document order.
func WriteCSV(w io.Writer, nodes []*outline.Node) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ordinal", "level", "name", "descendants", "path"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	var err error
	outline.Walk(nodes, func(v outline.Visit) bool {
		if err != nil {
			return false
		}
		err = cw.Write([]string{
			strconv.Itoa(v.Node.Ordinal),
			strconv.Itoa(v.Node.Level),
			v.Node.Name,
			strconv.Itoa(v.Node.Descendants),
			strings.Join(v.Breadcrumb, " > "),
		})
		return true
	})
	if err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// WriteText writes an indented outline, two spaces per depth.
func WriteText(w io.Writer, nodes []*outline.Node) error {
	var b strings.Builder
	outline.Walk(nodes, func(v outline.Visit) bool {
		b.WriteString(strings.Repeat("  ", v.Depth))
		b.WriteString(v.Node.Label)
		b.WriteByte('\n')
		return true
	})
	_, err := io.WriteString(w, b.String())
	return err
}
