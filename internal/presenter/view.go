package presenter

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/outliner/internal/outline"
)

// ErrUnknownOrdinal is returned for ordinals not present in the forest.
var ErrUnknownOrdinal = errors.New("unknown ordinal")

// Highlight asks the source page to highlight or focus a heading.
type Highlight struct {
	Ordinal int    `json:"ordinal"`
	Label   string `json:"label"`
}

// Highlighter relays activation requests back to the page.
type Highlighter interface {
	Highlight(ctx context.Context, h Highlight) error
}

// View holds presentation state for one built forest. Expansion is tracked
// here keyed by ordinal; the forest itself is never written.
type View struct {
	nodes    []*outline.Node
	expanded map[int]bool
}

// NewView initialises expansion state from each node's Expanded flag.
func NewView(nodes []*outline.Node) *View {
	v := &View{nodes: nodes, expanded: make(map[int]bool)}
	outline.Walk(nodes, func(vis outline.Visit) bool {
		if vis.Node.Expandable {
			v.expanded[vis.Node.Ordinal] = vis.Node.Expanded
		}
		return true
	})
	return v
}

// Nodes returns the forest the view presents.
func (v *View) Nodes() []*outline.Node {
	return v.nodes
}

// IsExpanded reports the current UI state for ordinal. Leaves are never
// expanded.
func (v *View) IsExpanded(ordinal int) bool {
	return v.expanded[ordinal]
}

// Toggle flips an expandable item and returns its new state.
func (v *View) Toggle(ordinal int) (bool, error) {
	cur, ok := v.expanded[ordinal]
	if !ok {
		return false, v.notExpandable(ordinal)
	}
	v.expanded[ordinal] = !cur
	return !cur, nil
}

// Expand opens an expandable item.
func (v *View) Expand(ordinal int) error {
	if _, ok := v.expanded[ordinal]; !ok {
		return v.notExpandable(ordinal)
	}
	v.expanded[ordinal] = true
	return nil
}

// Collapse closes an expandable item.
func (v *View) Collapse(ordinal int) error {
	if _, ok := v.expanded[ordinal]; !ok {
		return v.notExpandable(ordinal)
	}
	v.expanded[ordinal] = false
	return nil
}

// ExpandAll opens every expandable item.
func (v *View) ExpandAll() {
	for k := range v.expanded {
		v.expanded[k] = true
	}
}

// Visible returns the items a tree widget currently shows, in order.
func (v *View) Visible() []outline.Visit {
	var out []outline.Visit
	outline.Walk(v.nodes, func(vis outline.Visit) bool {
		out = append(out, vis)
		return v.expanded[vis.Node.Ordinal]
	})
	return out
}

// Activate emits the node's ordinal and label to h.
func (v *View) Activate(ctx context.Context, h Highlighter, ordinal int) (Highlight, error) {
	n := outline.Find(v.nodes, ordinal)
	if n == nil {
		return Highlight{}, fmt.Errorf("activate %d: %w", ordinal, ErrUnknownOrdinal)
	}
	req := Highlight{Ordinal: n.Ordinal, Label: n.Label}
	if err := h.Highlight(ctx, req); err != nil {
		return req, fmt.Errorf("highlight %d: %w", ordinal, err)
	}
	return req, nil
}

func (v *View) notExpandable(ordinal int) error {
	if outline.Find(v.nodes, ordinal) == nil {
		return fmt.Errorf("toggle %d: %w", ordinal, ErrUnknownOrdinal)
	}
	return fmt.Errorf("toggle %d: item has no children", ordinal)
}

// Summary is the status line shown next to the tree.
func Summary(count int) string {
	switch count {
	case 0:
		return "No headings found"
	case 1:
		return "1 heading"
	default:
		return fmt.Sprintf("%d headings", count)
	}
}
