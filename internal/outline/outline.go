package outline

import (
	"fmt"

	"github.com/dgallion1/outliner/internal/heading"
)

// Node is one heading in the rebuilt outline.
type Node struct {
	Ordinal     int     `json:"ordinal"`
	Level       int     `json:"level"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Children    []*Node `json:"children"`
	Descendants int     `json:"descendants"` // whole subtree, excluding the node itself
	Expandable  bool    `json:"expandable"`
	Expanded    bool    `json:"expanded"`
}

// Result is a built forest plus its total node count.
type Result struct {
	Nodes []*Node `json:"nodes"`
	Count int     `json:"count"`
}

// New filters records with opts and builds the forest.
func New(records []heading.Record, opts heading.Options) Result {
	nodes := Build(heading.Filter(records, opts))
	return Result{Nodes: nodes, Count: Count(nodes)}
}

// Build nests records, which must be in document order, into a forest.
//
// A record's children are the run of following records that are strictly
// deeper than it. A level-1 record always starts a new top-level entry.
// Skipped levels do not produce intermediate nodes.
func Build(records []heading.Record) []*Node {
	nodes, _ := buildScope(records, 0, true)
	if nodes == nil {
		nodes = []*Node{}
	}
	return nodes
}

// buildScope consumes siblings from queue until a record belongs to an
// ancestor scope, and returns them with the unconsumed remainder. At the top
// scope nothing belongs to an ancestor, so the whole queue is consumed.
func buildScope(queue []heading.Record, parentLevel int, top bool) ([]*Node, []heading.Record) {
	var siblings []*Node
	for len(queue) > 0 {
		h := queue[0]
		if !top && (h.Level <= parentLevel || h.Level == 1) {
			break
		}
		var n *Node
		n, queue = buildNode(queue)
		siblings = append(siblings, n)
	}
	return siblings, queue
}

// buildNode consumes queue[0] together with its descendants.
func buildNode(queue []heading.Record) (*Node, []heading.Record) {
	h := queue[0]
	rest := queue[1:]
	children, remaining := buildScope(rest, h.Level, false)

	n := &Node{
		Ordinal:     h.Ordinal,
		Level:       h.Level,
		Name:        h.Name,
		Children:    children,
		Descendants: len(rest) - len(remaining),
	}
	if n.Children == nil {
		n.Children = []*Node{}
	}
	n.Expandable = len(n.Children) > 0
	n.Label = label(n)
	return n, remaining
}

func label(n *Node) string {
	if n.Expandable {
		return fmt.Sprintf("%d: %s (%d)", n.Level, n.Name, n.Descendants)
	}
	return fmt.Sprintf("%d: %s", n.Level, n.Name)
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + n.Descendants
	}
	return total
}
