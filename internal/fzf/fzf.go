package fzf

import (
	"context"
	"errors"
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/mds/internal/cache"
	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/render"
)

// FuzzyFinder picks notes outside of the navigation loop: link targets,
// notes to unlink and command arguments.
type FuzzyFinder struct {
	resources *render.Resources
	rendered  *cache.LRU[string, string]
}

const renderedPreviews = 128

func NewFuzzyFinder(resources *render.Resources) *FuzzyFinder {
	return &FuzzyFinder{
		resources: resources,
		rendered:  cache.NewLRU[string, string](renderedPreviews),
	}
}

// PickNotes lets the user choose one or, with multi, several notes.
func (f *FuzzyFinder) PickNotes(
	ctx context.Context,
	header string,
	notes []note.Note,
	multi bool,
) ([]note.Note, error) {
	if len(notes) == 0 {
		return nil, nav.ErrNoSelection
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return f.preview(notes[i])
		}),
	}
	if header != "" {
		options = append(options, fuzzyfinder.WithHeader(header))
	}

	label := func(i int) string {
		return notes[i].String()
	}

	var picked []int
	var err error
	if multi {
		picked, err = fuzzyfinder.FindMulti(notes, label, options...)
	} else {
		var idx int
		idx, err = fuzzyfinder.Find(notes, label, options...)
		picked = []int{idx}
	}

	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nav.ErrUserAbort
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fuzzy finder: %w", err)
	}

	out := make([]note.Note, 0, len(picked))
	for _, i := range picked {
		if i >= 0 && i < len(notes) {
			out = append(out, notes[i])
		}
	}
	if len(out) == 0 {
		return nil, nav.ErrNoSelection
	}
	return out, nil
}

func (f *FuzzyFinder) preview(n note.Note) string {
	if s, ok := f.rendered.Get(n.Name); ok {
		return s
	}

	var s string
	switch content, err := n.Read(); {
	case n.IsTag():
		s = "tag " + n.Name
	case err != nil:
		s = "Error reading file"
	default:
		if s, err = f.resources.Markdown(string(content)); err != nil {
			s = "Error rendering markdown"
		}
	}

	f.rendered.Put(n.Name, s)
	return s
}
