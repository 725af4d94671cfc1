package preview

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gosuri/uitable"
	"golang.org/x/sync/errgroup"

	"github.com/Paintersrp/mds/internal/graph"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
	"github.com/Paintersrp/mds/internal/render"
)

// Renderer computes previews from the graph and note files.
type Renderer struct {
	Graph     graph.Linker
	Resources *render.Resources
	Links     parser.LinkOptions
	// UnlistedDepth is passed to the tree builder.
	UnlistedDepth int
}

// Cache returns a fresh session cache backed by r.
func (r *Renderer) Cache() *Cache {
	return NewCache(r.Render)
}

// WithDepth returns a copy of r using another unlisted depth.
func (r *Renderer) WithDepth(depth int) *Renderer {
	c := *r
	c.UnlistedDepth = depth
	return &c
}

func (r *Renderer) Render(ctx context.Context, n note.Note, kind Kind) (string, error) {
	switch kind.View {
	case LinkTree:
		return r.tree(ctx, n, kind.Direction, graph.LinkContent)
	case TaskTree:
		return r.tree(ctx, n, kind.Direction, graph.TaskContent)
	default:
		return r.details(ctx, n)
	}
}

func (r *Renderer) tree(ctx context.Context, n note.Note, dir note.Direction, content graph.Content) (string, error) {
	b := &graph.Builder{
		Graph:         r.Graph,
		Direction:     dir,
		Content:       content,
		UnlistedDepth: r.UnlistedDepth,
		Links:         r.Links,
	}
	root, err := b.Build(ctx, n, make(map[string]struct{}))
	if err != nil {
		return "", err
	}
	return r.Resources.Tree(root), nil
}

// details lists the note's edges in both directions next to its body. The
// two edge lookups are independent and run concurrently.
func (r *Renderer) details(ctx context.Context, n note.Note) (string, error) {
	var forward, backward []note.Note
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forward, err = r.Graph.Links(gctx, n.Name, note.Forward)
		return err
	})
	g.Go(func() error {
		var err error
		backward, err = r.Graph.Links(gctx, n.Name, note.Backward)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	kind, file := "tag", "-"
	if !n.IsTag() {
		kind, file = "note", n.File
	}
	table.AddRow("name:", n.Name)
	table.AddRow("kind:", kind)
	table.AddRow("file:", file)
	table.AddRow("links to:", summary(forward))
	table.AddRow("linked from:", summary(backward))

	var b strings.Builder
	b.WriteString(table.String())
	b.WriteString("\n")

	if n.IsTag() {
		return b.String(), nil
	}

	body, err := os.ReadFile(n.File)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", n.File, err)
	}
	rendered, err := r.Resources.Markdown(string(body))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", n.File, err)
	}
	b.WriteString(rendered)
	return b.String(), nil
}

func summary(notes []note.Note) string {
	if len(notes) == 0 {
		return "(none)"
	}
	return fmt.Sprintf("%d: %s", len(notes), strings.Join(note.Names(notes), ", "))
}
