package nav

import (
	"context"
	"fmt"
	"strings"

	"github.com/Paintersrp/mds/internal/keymap"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

// Graph is the store surface the navigation loops read and mutate.
type Graph interface {
	List(ctx context.Context) ([]note.Note, error)
	Get(ctx context.Context, name string) (note.Note, error)
	Links(ctx context.Context, name string, dir note.Direction) ([]note.Note, error)
	Save(ctx context.Context, n note.Note) error
	InsertLink(ctx context.Context, src, dst string) error
	RemoveLink(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, from, to string) error
	Remove(ctx context.Context, name string) error

	Stack(ctx context.Context, stack string) ([]note.Note, error)
	Push(ctx context.Context, stack, name string) error
	Pop(ctx context.Context, stack, name string) error
	MoveToTop(ctx context.Context, stack, name string) error
	SwapWithAbove(ctx context.Context, stack, name string) error
	SwapWithBelow(ctx context.Context, stack, name string) error
}

// Iteration carries what every mode needs to present a list.
type Iteration struct {
	Finder Finder
	Keys   Keys
	// Workers bounds concurrent preview computations. Zero means no bound.
	Workers int
}

func header(mode, detail string) string {
	if detail == "" {
		return mode
	}
	return fmt.Sprintf("%s | %s", mode, detail)
}

// ExploreResult is the outcome of one explore iteration.
type ExploreResult struct {
	Action ExploreAction
	Notes  []note.Note
}

// Explore presents notes. Several notes may be selected.
func (it *Iteration) Explore(ctx context.Context, notes []note.Note, detail string, preview func(context.Context, note.Note) string) (ExploreResult, error) {
	items := make([]Item, 0, len(notes))
	for _, n := range notes {
		items = append(items, NewNoteItem(n))
	}
	selected, action, err := present(ctx, it.Finder, it.Keys.Explore, ExploreAccept,
		header("explore", detail), true, items, notePreview(preview), it.Workers)
	if err != nil {
		return ExploreResult{}, err
	}
	return ExploreResult{Action: action, Notes: notesOf(selected)}, nil
}

// SurfResult is the outcome of one surf iteration.
type SurfResult struct {
	Action SurfAction
	Links  []parser.Link
}

// Surf presents links. Only one link can be selected.
func (it *Iteration) Surf(ctx context.Context, links []parser.Link, detail string, preview func(context.Context, parser.Link) string) (SurfResult, error) {
	items := make([]Item, 0, len(links))
	for _, l := range links {
		items = append(items, NewLinkItem(l))
	}
	var fn PreviewFunc
	if preview != nil {
		fn = func(ctx context.Context, i Item) string { return preview(ctx, i.Link) }
	}
	selected, action, err := present(ctx, it.Finder, it.Keys.Surf, SurfAccept,
		header("surf", detail), false, items, fn, it.Workers)
	if err != nil {
		return SurfResult{}, err
	}
	return SurfResult{Action: action, Links: linksOf(selected)}, nil
}

// CheckmarkResult is the outcome of one checkmark iteration.
type CheckmarkResult struct {
	Action CheckmarkAction
	Tasks  []parser.TaskItem
}

// Checkmark presents task items. Several items may be selected.
func (it *Iteration) Checkmark(ctx context.Context, tasks []parser.TaskItem, detail string, preview func(context.Context, parser.TaskItem) string) (CheckmarkResult, error) {
	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, NewTaskItem(t))
	}
	var fn PreviewFunc
	if preview != nil {
		fn = func(ctx context.Context, i Item) string { return preview(ctx, i.Task) }
	}
	selected, action, err := present(ctx, it.Finder, it.Keys.Checkmark, CheckmarkAccept,
		header("checkmark", detail), true, items, fn, it.Workers)
	if err != nil {
		return CheckmarkResult{}, err
	}
	return CheckmarkResult{Action: action, Tasks: tasksOf(selected)}, nil
}

// StackResult is the outcome of one stack iteration.
type StackResult struct {
	Action StackAction
	Notes  []note.Note
}

// Stack presents the members of a stack, top first. Enter selects.
func (it *Iteration) Stack(ctx context.Context, notes []note.Note, detail string, preview func(context.Context, note.Note) string) (StackResult, error) {
	items := make([]Item, 0, len(notes))
	for _, n := range notes {
		items = append(items, NewNoteItem(n))
	}
	selected, action, err := present(ctx, it.Finder, it.Keys.Stack, StackSelect,
		header("stack", detail), true, items, notePreview(preview), it.Workers)
	if err != nil {
		return StackResult{}, err
	}
	return StackResult{Action: action, Notes: notesOf(selected)}, nil
}

func notePreview(preview func(context.Context, note.Note) string) PreviewFunc {
	if preview == nil {
		return nil
	}
	return func(ctx context.Context, i Item) string { return preview(ctx, i.Note) }
}

// hint renders the bindings of a table as one line under the header.
func hint[A ~string](t *keymap.Table[A]) string {
	bindings := t.Bindings()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, string(b.Chord)+" "+b.Action)
	}
	return strings.Join(parts, "  ")
}
