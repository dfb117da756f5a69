package outline

// Visit describes a node reached during Walk.
type Visit struct {
	Node       *Node
	Depth      int      // 0 for top-level nodes
	Breadcrumb []string // ancestor names, outermost first
	PosInSet   int      // 1-based position among siblings
	SetSize    int      // number of siblings including this node
}

// Walk visits nodes in pre-order, which is the original document order.
// Returning false from fn skips the visited node's children.
func Walk(nodes []*Node, fn func(Visit) bool) {
	walkNodes(nodes, nil, 0, fn)
}

func walkNodes(nodes []*Node, breadcrumb []string, depth int, fn func(Visit) bool) {
	for i, n := range nodes {
		descend := fn(Visit{
			Node:       n,
			Depth:      depth,
			Breadcrumb: copyBreadcrumb(breadcrumb),
			PosInSet:   i + 1,
			SetSize:    len(nodes),
		})
		if !descend || len(n.Children) == 0 {
			continue
		}
		bc := make([]string, 0, len(breadcrumb)+1)
		bc = append(bc, breadcrumb...)
		bc = append(bc, n.Name)
		walkNodes(n.Children, bc, depth+1, fn)
	}
}

// Flatten returns all nodes in pre-order.
func Flatten(nodes []*Node) []*Node {
	out := make([]*Node, 0, Count(nodes))
	Walk(nodes, func(v Visit) bool {
		out = append(out, v.Node)
		return true
	})
	return out
}

// Find returns the node with the given ordinal, or nil.
func Find(nodes []*Node, ordinal int) *Node {
	var found *Node
	Walk(nodes, func(v Visit) bool {
		if found != nil {
			return false
		}
		if v.Node.Ordinal == ordinal {
			found = v.Node
			return false
		}
		return true
	})
	return found
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}
