package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Paintersrp/mds/internal/constants"
	"github.com/Paintersrp/mds/internal/graph"
	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/preview"
)

// ExploreState is the mode state carried between explore iterations.
type ExploreState struct {
	View          preview.View
	Direction     note.Direction
	UnlistedDepth int
	Stack         string
}

// Explorer is the driving loop of the explore mode.
type Explorer struct {
	*Env
	cache *preview.Cache
	depth int
}

func NewExplorer(env *Env) *Explorer {
	return &Explorer{Env: env}
}

func (x *Explorer) previews(st ExploreState) *preview.Cache {
	if x.cache == nil || x.depth != st.UnlistedDepth {
		x.cache = x.Previews.WithDepth(st.UnlistedDepth).Cache()
		x.depth = st.UnlistedDepth
	}
	return x.cache
}

// invalidate drops every computed preview after the graph changed.
func (x *Explorer) invalidate() {
	x.cache = nil
}

// Run repeats Next until an outcome is reached.
func (x *Explorer) Run(ctx context.Context, list []note.Note, st ExploreState) (*Outcome, error) {
	for {
		var (
			out *Outcome
			err error
		)
		list, out, st, err = x.Next(ctx, list, st)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
}

// Next runs one explore iteration and applies its action. Failures of the
// action are reported and the previous list is returned unchanged.
func (x *Explorer) Next(ctx context.Context, list []note.Note, st ExploreState) ([]note.Note, *Outcome, ExploreState, error) {
	if st.Stack == "" {
		st.Stack = constants.GlobalStack
	}
	cache := x.previews(st)
	kind := preview.Kind{View: st.View, Direction: st.Direction}
	detail := fmt.Sprintf("%s | unlisted %d | stack %s", kind, st.UnlistedDepth, st.Stack)

	res, err := x.Iteration.Explore(ctx, list, detail, func(ctx context.Context, n note.Note) string {
		return cache.Get(ctx, n, kind)
	})
	if err != nil {
		return list, nil, st, err
	}

	next, out, nst, err := x.apply(ctx, list, st, res)
	if err != nil {
		if fatal(err) {
			return list, nil, st, err
		}
		x.report(ctx, "explore", err)
		return list, nil, st, nil
	}
	return next, out, nst, nil
}

func (x *Explorer) apply(ctx context.Context, list []note.Note, st ExploreState, res nav.ExploreResult) ([]note.Note, *Outcome, ExploreState, error) {
	sel := res.Notes
	needOne := func() (note.Note, error) {
		if len(sel) == 0 {
			return note.Note{}, nav.ErrNoSelection
		}
		return sel[0], nil
	}
	needAny := func() error {
		if len(sel) == 0 {
			return nav.ErrNoSelection
		}
		return nil
	}

	x.logger().Debug("explore action", slog.String("action", string(res.Action)), slog.Int("selected", len(sel)))

	switch res.Action {
	case nav.ExploreAccept:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		return list, &Outcome{Notes: sel}, st, nil

	case nav.ExploreOpen, nav.ExploreOpenExternal:
		n, err := needOne()
		if err != nil {
			return list, nil, st, err
		}
		if res.Action == nav.ExploreOpen {
			err = x.Open.OpenNote(ctx, n)
		} else {
			err = x.Open.OpenNoteExternal(ctx, n)
		}
		if err != nil {
			return list, nil, st, err
		}
		// The body may have changed in the editor.
		x.invalidate()
		return list, nil, st, nil

	case nav.ExploreLink:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		return list, nil, st, x.link(ctx, sel)

	case nav.ExploreUnlink:
		n, err := needOne()
		if err != nil {
			return list, nil, st, err
		}
		return list, nil, st, x.unlink(ctx, n)

	case nav.ExploreRename:
		n, err := needOne()
		if err != nil {
			return list, nil, st, err
		}
		renamed, err := x.rename(ctx, n)
		if err != nil {
			return list, nil, st, err
		}
		for i := range list {
			if list[i].Name == n.Name {
				list[i] = renamed
			}
		}
		return list, nil, st, nil

	case nav.ExploreRemove:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		removed, err := x.remove(ctx, sel)
		if err != nil {
			return list, nil, st, err
		}
		return without(list, removed), nil, st, nil

	case nav.ExploreCreateLinked:
		created, err := x.createLinked(ctx, sel)
		if err != nil || created.Name == "" {
			return list, nil, st, err
		}
		return append(without(list, []note.Note{created}), created), nil, st, nil

	case nav.ExploreSurf:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		reach, err := graph.Reachable(ctx, x.Graph, note.Forward, sel...)
		if err != nil {
			return list, nil, st, err
		}
		out, err := NewSurfer(x.Env).Run(ctx, reach)
		if err != nil {
			return list, nil, st, err
		}
		if out.Return {
			return list, nil, st, nil
		}
		return list, out, st, nil

	case nav.ExploreCheckmark:
		n, err := needOne()
		if err != nil {
			return list, nil, st, err
		}
		if n.IsTag() {
			return list, nil, st, fmt.Errorf("%s is a tag and has no tasks", n.Name)
		}
		out, err := NewCheckmarker(x.Env).Run(ctx, n.File)
		if err != nil {
			return list, nil, st, err
		}
		if out.Return {
			// Toggles rewrote the file.
			x.invalidate()
			return list, nil, st, nil
		}
		return list, out, st, nil

	case nav.ExploreTogglePreview:
		st.View = st.View.Next()
		return list, nil, st, nil

	case nav.ExploreInvertLinks:
		st.Direction = st.Direction.Invert()
		return list, nil, st, nil

	case nav.ExploreSplice:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		reach, err := graph.Reachable(ctx, x.Graph, st.Direction, sel...)
		if err != nil {
			return list, nil, st, err
		}
		return reach, nil, st, nil

	case nav.ExploreNarrow:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		return sel, nil, st, nil

	case nav.ExploreIncreaseUnlisted:
		st.UnlistedDepth++
		return list, nil, st, nil

	case nav.ExploreDecreaseUnlisted:
		if st.UnlistedDepth > 0 {
			st.UnlistedDepth--
		}
		return list, nil, st, nil

	case nav.ExplorePushToStack:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		for _, n := range sel {
			if err := x.Graph.Push(ctx, st.Stack, n.Name); err != nil {
				return list, nil, st, err
			}
		}
		x.notify(ctx, "pushed %d note(s) to %s", len(sel), st.Stack)
		return list, nil, st, nil

	case nav.ExploreSwitchToStack:
		out, err := NewStacker(x.Env).Run(ctx, StackState{
			Name:          st.Stack,
			View:          st.View,
			Direction:     st.Direction,
			UnlistedDepth: st.UnlistedDepth,
		})
		if err != nil {
			return list, nil, st, err
		}
		if out.Return {
			return list, nil, st, nil
		}
		return out.Notes, nil, st, nil

	case nav.ExploreBack, nav.ExploreForward:
		if err := needAny(); err != nil {
			return list, nil, st, err
		}
		dir := note.Backward
		if res.Action == nav.ExploreForward {
			dir = note.Forward
		}
		next, err := union(ctx, x.Graph, sel, dir)
		if err != nil {
			return list, nil, st, err
		}
		return next, nil, st, nil

	case nav.ExploreWiden:
		all, err := x.Graph.List(ctx)
		if err != nil {
			return list, nil, st, err
		}
		return all, nil, st, nil
	}

	return list, nil, st, fmt.Errorf("%w: explore action %q", nav.ErrUnboundKey, res.Action)
}

func (x *Explorer) link(ctx context.Context, sel []note.Note) error {
	all, err := x.Graph.List(ctx)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("link %s to", strings.Join(note.Names(sel), ", "))
	targets, err := x.Picker.PickNotes(ctx, header, without(all, sel), true)
	if err != nil {
		return dismissed(err)
	}
	for _, src := range sel {
		for _, dst := range targets {
			if err := x.Graph.InsertLink(ctx, src.Name, dst.Name); err != nil {
				return err
			}
		}
	}
	x.invalidate()
	x.notify(ctx, "linked %d note(s) to %d target(s)", len(sel), len(targets))
	return nil
}

func (x *Explorer) unlink(ctx context.Context, n note.Note) error {
	linked, err := x.Graph.Links(ctx, n.Name, note.Forward)
	if err != nil {
		return err
	}
	if len(linked) == 0 {
		return fmt.Errorf("%s has no links", n.Name)
	}
	targets, err := x.Picker.PickNotes(ctx, "unlink from "+n.Name, linked, true)
	if err != nil {
		return dismissed(err)
	}
	for _, dst := range targets {
		if err := x.Graph.RemoveLink(ctx, n.Name, dst.Name); err != nil {
			return err
		}
	}
	x.invalidate()
	return nil
}

func (x *Explorer) rename(ctx context.Context, n note.Note) (note.Note, error) {
	name, err := x.Prompt.Input("rename "+n.Name+" to", n.Name)
	if err != nil {
		return n, dismissed(err)
	}
	name = strings.TrimSpace(name)
	if name == "" || name == n.Name {
		return n, nil
	}
	if err := x.Graph.Rename(ctx, n.Name, name); err != nil {
		return note.Note{}, err
	}
	x.invalidate()
	return note.New(name, n.File), nil
}

func (x *Explorer) remove(ctx context.Context, sel []note.Note) ([]note.Note, error) {
	ok, err := x.Prompt.Confirm(fmt.Sprintf("remove %s?", strings.Join(note.Names(sel), ", ")))
	if err != nil {
		return nil, dismissed(err)
	}
	if !ok {
		return nil, nil
	}

	removed := make([]note.Note, 0, len(sel))
	for _, n := range sel {
		if err := x.Graph.Remove(ctx, n.Name); err != nil {
			return removed, err
		}
		removed = append(removed, n)
		if !n.IsTag() && x.Trash != nil {
			if err := x.Trash(n.File); err != nil && !errors.Is(err, os.ErrNotExist) {
				return removed, fmt.Errorf("trash %s: %w", n.File, err)
			}
		}
	}
	x.invalidate()
	return removed, nil
}

// createLinked makes a new note file, registers it and links every
// selected note to it.
func (x *Explorer) createLinked(ctx context.Context, sel []note.Note) (note.Note, error) {
	name, err := x.Prompt.Input("new note name", "")
	if err != nil {
		return note.Note{}, dismissed(err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return note.Note{}, errors.New("note name is empty")
	}

	n := note.New(name, note.FileFor(x.NotesDir, name))
	_, statErr := os.Stat(n.File)
	if err := n.Create(); err != nil {
		return note.Note{}, err
	}
	if err := x.Graph.Save(ctx, n); err != nil {
		// Only a file made by this call is removed.
		if errors.Is(statErr, os.ErrNotExist) {
			_ = os.Remove(n.File)
		}
		return note.Note{}, err
	}
	for _, src := range sel {
		if err := x.Graph.InsertLink(ctx, src.Name, n.Name); err != nil {
			return note.Note{}, err
		}
	}
	x.invalidate()
	return n, nil
}
