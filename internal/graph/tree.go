package graph

import (
	"context"
	"fmt"

	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

type NodeKind int

const (
	NoteNode NodeKind = iota
	LinkNode
	TaskNode
	HintNode
	CycleNode
)

// Node is one entry of a display tree. Kind selects which payload is set.
type Node struct {
	Kind NodeKind
	// Note is the payload of NoteNode and the repeated note of CycleNode.
	Note note.Note
	Link parser.Link
	Task parser.TaskItem
	// Hidden counts the entries a HintNode stands for.
	Hidden int
	// Noun names what a HintNode hides, "links" or "tasks".
	Noun     string
	Children []*Node
}

// Content selects which note content is attached below each note.
type Content int

const (
	LinkContent Content = iota
	TaskContent
)

// Builder turns the note graph below a root into a display tree.
type Builder struct {
	Graph     Linker
	Direction note.Direction
	Content   Content
	// UnlistedDepth is the depth from which a note's content collapses into
	// a single hint node.
	UnlistedDepth int
	Links         parser.LinkOptions
	// ReadLinks and ReadTasks default to reading the note file.
	ReadLinks func(note.Note) ([]parser.Link, error)
	ReadTasks func(note.Note) ([]parser.TaskItem, error)
}

type step struct {
	parent *Node
	note   note.Note
	depth  int
	// finish marks the point where every child of node has been placed.
	finish *Node
}

// Build expands root depth first. visited is shared across the whole build
// and updated in place: a note already placed anywhere in the tree becomes
// a cycle leaf instead of being expanded again.
func (b *Builder) Build(ctx context.Context, root note.Note, visited map[string]struct{}) (*Node, error) {
	if visited == nil {
		visited = make(map[string]struct{})
	}

	holder := &Node{}
	work := []step{{parent: holder, note: root}}
	depths := make(map[*Node]int)

	for len(work) > 0 {
		s := work[len(work)-1]
		work = work[:len(work)-1]

		if s.finish != nil {
			if err := b.attachContent(s.finish, depths[s.finish]); err != nil {
				return nil, err
			}
			continue
		}

		if _, seen := visited[s.note.Name]; seen {
			s.parent.Children = append(s.parent.Children, &Node{Kind: CycleNode, Note: s.note})
			continue
		}
		visited[s.note.Name] = struct{}{}

		node := &Node{Kind: NoteNode, Note: s.note}
		s.parent.Children = append(s.parent.Children, node)
		depths[node] = s.depth

		linked, err := b.Graph.Links(ctx, s.note.Name, b.Direction)
		if err != nil {
			return nil, err
		}

		work = append(work, step{finish: node})
		for i := len(linked) - 1; i >= 0; i-- {
			work = append(work, step{parent: node, note: linked[i], depth: s.depth + 1})
		}
	}

	return holder.Children[0], nil
}

func (b *Builder) attachContent(n *Node, depth int) error {
	switch b.Content {
	case TaskContent:
		items, err := b.tasks(n.Note)
		if err != nil {
			return err
		}
		forest := parser.GroupTasks(items)
		if len(forest) == 0 {
			return nil
		}
		if depth >= b.UnlistedDepth {
			n.Children = append(n.Children, &Node{Kind: HintNode, Hidden: parser.CountTasks(forest), Noun: "tasks"})
			return nil
		}
		n.Children = append(n.Children, taskNodes(forest)...)
	default:
		links, err := b.links(n.Note)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		if depth >= b.UnlistedDepth {
			n.Children = append(n.Children, &Node{Kind: HintNode, Hidden: len(links), Noun: "links"})
			return nil
		}
		// links are stored last first.
		for i := len(links) - 1; i >= 0; i-- {
			n.Children = append(n.Children, &Node{Kind: LinkNode, Link: links[i]})
		}
	}
	return nil
}

func (b *Builder) links(n note.Note) ([]parser.Link, error) {
	if n.IsTag() {
		return nil, nil
	}
	if b.ReadLinks != nil {
		return b.ReadLinks(n)
	}
	links, err := parser.ReadLinks(n, b.Links)
	if err != nil {
		return nil, fmt.Errorf("links of %q: %w", n.Name, err)
	}
	return links, nil
}

func (b *Builder) tasks(n note.Note) ([]parser.TaskItem, error) {
	if n.IsTag() {
		return nil, nil
	}
	if b.ReadTasks != nil {
		return b.ReadTasks(n)
	}
	items, _, err := parser.ReadTasks(n.File)
	if err != nil {
		return nil, fmt.Errorf("tasks of %q: %w", n.Name, err)
	}
	return items, nil
}

func taskNodes(forest []*parser.TaskNode) []*Node {
	nodes := make([]*Node, 0, len(forest))
	for _, t := range forest {
		nodes = append(nodes, &Node{Kind: TaskNode, Task: t.Item, Children: taskNodes(t.Children)})
	}
	return nodes
}
