package session

import (
	"context"
	"fmt"

	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/preview"
)

// StackState names the stack being edited and the preview shown. The
// direction and depth are inherited from the explore session, if any.
type StackState struct {
	Name          string
	View          preview.View
	Direction     note.Direction
	UnlistedDepth int
}

// Stacker is the driving loop over the members of a named stack.
type Stacker struct {
	*Env
	cache *preview.Cache
	depth int
}

func NewStacker(env *Env) *Stacker {
	return &Stacker{Env: env}
}

// Run edits the stack named by st until notes are selected or the user
// returns.
func (s *Stacker) Run(ctx context.Context, st StackState) (*Outcome, error) {
	list, err := s.Graph.Stack(ctx, st.Name)
	if err != nil {
		return nil, err
	}
	for {
		var out *Outcome
		list, out, st, err = s.Next(ctx, list, st)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
}

func (s *Stacker) Next(ctx context.Context, list []note.Note, st StackState) ([]note.Note, *Outcome, StackState, error) {
	if s.cache == nil || s.depth != st.UnlistedDepth {
		s.cache = s.Previews.WithDepth(st.UnlistedDepth).Cache()
		s.depth = st.UnlistedDepth
	}
	cache := s.cache
	kind := preview.Kind{View: st.View, Direction: st.Direction}

	detail := fmt.Sprintf("%s | %d notes | %s | unlisted %d", st.Name, len(list), kind, st.UnlistedDepth)
	res, err := s.Iteration.Stack(ctx, list, detail, func(ctx context.Context, n note.Note) string {
		return cache.Get(ctx, n, kind)
	})
	if err != nil {
		return list, nil, st, err
	}

	next, out, nst, err := s.apply(ctx, list, st, res)
	if err != nil {
		if fatal(err) {
			return list, nil, st, err
		}
		s.report(ctx, "stack", err)
		return list, nil, st, nil
	}
	return next, out, nst, nil
}

func (s *Stacker) apply(ctx context.Context, list []note.Note, st StackState, res nav.StackResult) ([]note.Note, *Outcome, StackState, error) {
	switch res.Action {
	case nav.StackReturn:
		return list, &Outcome{Return: true}, st, nil
	case nav.StackTogglePreview:
		st.View = st.View.Next()
		return list, nil, st, nil
	}

	sel := res.Notes
	if len(sel) == 0 {
		return list, nil, st, nav.ErrNoSelection
	}

	var op func(ctx context.Context, stack, name string) error
	switch res.Action {
	case nav.StackSelect:
		return list, &Outcome{Notes: sel}, st, nil
	case nav.StackPop:
		for _, n := range sel {
			if err := s.Graph.Pop(ctx, st.Name, n.Name); err != nil {
				return list, nil, st, err
			}
		}
	case nav.StackMoveToTop:
		op = s.Graph.MoveToTop
	case nav.StackSwapAbove:
		op = s.Graph.SwapWithAbove
	case nav.StackSwapBelow:
		op = s.Graph.SwapWithBelow
	default:
		return list, nil, st, fmt.Errorf("%w: stack action %q", nav.ErrUnboundKey, res.Action)
	}

	if op != nil {
		if err := op(ctx, st.Name, sel[0].Name); err != nil {
			return list, nil, st, err
		}
	}

	updated, err := s.Graph.Stack(ctx, st.Name)
	if err != nil {
		return list, nil, st, err
	}
	return updated, nil, st, nil
}
