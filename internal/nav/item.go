// Package nav runs single navigation iterations: present a list, wait for
// the user, and decode the terminating key into an action of the mode.
package nav

import (
	"fmt"
	"strings"

	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

type ItemKind int

const (
	NoteItem ItemKind = iota
	LinkItem
	TaskItem
)

// Item is one selectable row. Exactly one payload is set, matching Kind.
type Item struct {
	Kind ItemKind
	Note note.Note
	Link parser.Link
	Task parser.TaskItem
	// Preview is filled in by the iteration before the item reaches the
	// finder.
	Preview string
	// Rank is the position of the item in the presented list. Items reach
	// the finder out of order; finders sort on Rank.
	Rank int

	id      string
	display string
}

func NewNoteItem(n note.Note) Item {
	display := n.Name
	if n.IsTag() {
		display = "#" + n.Name
	}
	return Item{Kind: NoteItem, Note: n, id: n.Name, display: display}
}

func NewLinkItem(l parser.Link) Item {
	return Item{
		Kind:    LinkItem,
		Link:    l,
		id:      fmt.Sprintf("%s@%d:%s", l.Parent.Name, l.Offset, l.Kind),
		display: fmt.Sprintf("%s: %s [%s]", l.Parent.Name, l.Description, l.Kind),
	}
}

func NewTaskItem(t parser.TaskItem) Item {
	return Item{
		Kind:    TaskItem,
		Task:    t,
		id:      fmt.Sprintf("%s:%d", t.File, t.Self),
		display: strings.Repeat("  ", t.Level) + t.Rendered,
	}
}

// ID is unique within one list.
func (i Item) ID() string {
	return i.id
}

// Display is the text the finder filters on.
func (i Item) Display() string {
	return i.display
}

func notesOf(items []Item) []note.Note {
	out := make([]note.Note, 0, len(items))
	for _, it := range items {
		out = append(out, it.Note)
	}
	return out
}

func linksOf(items []Item) []parser.Link {
	out := make([]parser.Link, 0, len(items))
	for _, it := range items {
		out = append(out, it.Link)
	}
	return out
}

func tasksOf(items []Item) []parser.TaskItem {
	out := make([]parser.TaskItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.Task)
	}
	return out
}
