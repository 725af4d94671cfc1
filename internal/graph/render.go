package graph

import (
	"fmt"
	"strings"
)

// Labeler renders the single line label of a node.
type Labeler func(n *Node) string

// Render draws the tree with box drawing connectors, one node per line.
func Render(root *Node, label Labeler) string {
	var b strings.Builder
	b.WriteString(label(root))
	b.WriteByte('\n')

	type entry struct {
		node   *Node
		prefix string
		last   bool
	}
	var stack []entry
	push := func(children []*Node, prefix string) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, entry{children[i], prefix, i == len(children)-1})
		}
	}
	push(root.Children, "")

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		connector, indent := "├── ", "│   "
		if e.last {
			connector, indent = "└── ", "    "
		}
		b.WriteString(e.prefix)
		b.WriteString(connector)
		b.WriteString(label(e.node))
		b.WriteByte('\n')

		push(e.node.Children, e.prefix+indent)
	}

	return b.String()
}

// PlainLabel labels nodes without styling.
func PlainLabel(n *Node) string {
	switch n.Kind {
	case NoteNode:
		if n.Note.IsTag() {
			return "#" + n.Note.Name
		}
		return n.Note.Name
	case LinkNode:
		return n.Link.Description + " [" + n.Link.Kind.String() + "]"
	case TaskNode:
		return n.Task.Rendered
	case HintNode:
		return fmt.Sprintf("%d unlisted %s", n.Hidden, n.Noun)
	case CycleNode:
		return "cycle to " + n.Note.Name
	default:
		return ""
	}
}
