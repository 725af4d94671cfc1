// Package graph walks the note graph and builds display trees from it.
package graph

import (
	"context"

	"github.com/Paintersrp/mds/internal/note"
)

// Linker answers edge queries for a note.
type Linker interface {
	Links(ctx context.Context, name string, dir note.Direction) ([]note.Note, error)
}

// Reachable returns the roots and every note reachable from them, layer by
// layer. Each note is queried once, so cycles terminate.
func Reachable(ctx context.Context, g Linker, dir note.Direction, roots ...note.Note) ([]note.Note, error) {
	visited := note.NewSet()
	var frontier []note.Note
	for _, root := range roots {
		if visited.Add(root) {
			frontier = append(frontier, root)
		}
	}

	for len(frontier) > 0 {
		candidates := note.NewSet()
		for _, n := range frontier {
			linked, err := g.Links(ctx, n.Name, dir)
			if err != nil {
				return nil, err
			}
			for _, l := range linked {
				candidates.Add(l)
			}
		}

		var next []note.Note
		for _, c := range candidates.Notes() {
			if visited.Add(c) {
				next = append(next, c)
			}
		}
		frontier = next
	}

	return visited.Notes(), nil
}
