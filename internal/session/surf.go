package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

// SurfState is the mode state carried between surf iterations.
type SurfState struct {
	Notes int
}

// Surfer is the driving loop over the links of a set of notes.
type Surfer struct {
	*Env
	mu       sync.Mutex
	previews map[string]string
}

func NewSurfer(env *Env) *Surfer {
	return &Surfer{Env: env, previews: make(map[string]string)}
}

// Collect lists the links of notes in document order, note by note.
func (s *Surfer) Collect(notes []note.Note) ([]parser.Link, error) {
	var out []parser.Link
	for _, n := range notes {
		links, err := parser.ReadLinks(n, s.Links)
		if err != nil {
			return nil, fmt.Errorf("links of %s: %w", n.Name, err)
		}
		slices.Reverse(links)
		out = append(out, links...)
	}
	return out, nil
}

// Run surfs the links of notes until a link is accepted or the user
// returns.
func (s *Surfer) Run(ctx context.Context, notes []note.Note) (*Outcome, error) {
	links, err := s.Collect(notes)
	if err != nil {
		return nil, err
	}
	st := SurfState{Notes: len(notes)}
	for {
		var out *Outcome
		links, out, st, err = s.Next(ctx, links, st)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
}

func (s *Surfer) Next(ctx context.Context, links []parser.Link, st SurfState) ([]parser.Link, *Outcome, SurfState, error) {
	detail := fmt.Sprintf("%d links from %d notes", len(links), st.Notes)
	res, err := s.Iteration.Surf(ctx, links, detail, s.preview)
	if err != nil {
		return links, nil, st, err
	}

	out, err := s.apply(ctx, res)
	if err != nil {
		if fatal(err) {
			return links, nil, st, err
		}
		s.report(ctx, "surf", err)
		return links, nil, st, nil
	}
	return links, out, st, nil
}

func (s *Surfer) apply(ctx context.Context, res nav.SurfResult) (*Outcome, error) {
	if res.Action == nav.SurfReturn {
		return &Outcome{Return: true}, nil
	}
	if len(res.Links) == 0 {
		return nil, nav.ErrNoSelection
	}
	l := res.Links[0]

	switch res.Action {
	case nav.SurfAccept:
		return &Outcome{Link: &l}, nil
	case nav.SurfOpen:
		return nil, s.Open.OpenLink(ctx, l)
	case nav.SurfOpenExternal:
		return nil, s.Open.OpenLinkExternal(ctx, l)
	case nav.SurfJump:
		if l.Parent.IsTag() {
			return nil, fmt.Errorf("%s is a tag", l.Parent.Name)
		}
		return nil, s.Open.Jump(ctx, l.Parent.File, l.Line)
	}
	return nil, fmt.Errorf("%w: surf action %q", nav.ErrUnboundKey, res.Action)
}

// preview renders a link and keeps the result for the rest of the surf.
func (s *Surfer) preview(ctx context.Context, l parser.Link) string {
	key := nav.NewLinkItem(l).ID()
	s.mu.Lock()
	out, ok := s.previews[key]
	s.mu.Unlock()
	if ok {
		return out
	}

	out = s.render(ctx, l)
	s.mu.Lock()
	s.previews[key] = out
	s.mu.Unlock()
	return out
}

func (s *Surfer) render(ctx context.Context, l parser.Link) string {
	switch l.Kind {
	case parser.URL:
		return l.Target
	case parser.Broken:
		return "broken link: " + l.Path
	case parser.CodeBlock:
		if s.Resources == nil {
			return l.Code
		}
		out, err := s.Resources.Code(l.Code, l.Syntax)
		if err != nil {
			return l.Code
		}
		return out
	default:
		out, err := s.Open.Preview(ctx, l)
		if err != nil {
			return fmt.Sprintf("preview unavailable: %v", err)
		}
		return out
	}
}
