package presenter

import (
	"io"
	"strconv"

	"github.com/dgallion1/outliner/internal/outline"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render writes the forest as an ARIA tree widget. Each treeitem is
// identified by "heading-<ordinal>" so activation can be relayed back to the
// page. Expansion state comes from view; a nil view renders everything
// collapsed.
func Render(w io.Writer, nodes []*outline.Node, view *View) error {
	if view == nil {
		view = NewView(nodes)
	}
	root := element(atom.Ul,
		html.Attribute{Key: "role", Val: "tree"},
		html.Attribute{Key: "aria-label", Val: "Headings"},
	)
	appendItems(root, nodes, 1, view)
	return html.Render(w, root)
}

func appendItems(parent *html.Node, nodes []*outline.Node, level int, view *View) {
	for i, n := range nodes {
		attrs := []html.Attribute{
			{Key: "role", Val: "treeitem"},
			{Key: "id", Val: "heading-" + strconv.Itoa(n.Ordinal)},
			{Key: "data-ordinal", Val: strconv.Itoa(n.Ordinal)},
			{Key: "aria-level", Val: strconv.Itoa(level)},
			{Key: "aria-setsize", Val: strconv.Itoa(len(nodes))},
			{Key: "aria-posinset", Val: strconv.Itoa(i + 1)},
		}
		if n.Expandable {
			attrs = append(attrs, html.Attribute{Key: "aria-expanded", Val: strconv.FormatBool(view.IsExpanded(n.Ordinal))})
		}
		if level == 1 && i == 0 {
			attrs = append(attrs, html.Attribute{Key: "tabindex", Val: "0"})
		} else {
			attrs = append(attrs, html.Attribute{Key: "tabindex", Val: "-1"})
		}
		item := element(atom.Li, attrs...)

		label := element(atom.Span, html.Attribute{Key: "class", Val: "label"})
		label.AppendChild(&html.Node{Type: html.TextNode, Data: n.Label})
		item.AppendChild(label)

		if n.Expandable {
			group := element(atom.Ul, html.Attribute{Key: "role", Val: "group"})
			appendItems(group, n.Children, level+1, view)
			item.AppendChild(group)
		}
		parent.AppendChild(item)
	}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}
