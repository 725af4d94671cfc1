package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/parser"
)

// CheckmarkState is the range of task items shown. To is exclusive and
// zero means up to the last item.
type CheckmarkState struct {
	File string
	From int
	To   int
}

func (st CheckmarkState) slice(all []parser.TaskItem) []parser.TaskItem {
	to := st.To
	if to <= 0 || to > len(all) {
		to = len(all)
	}
	from := st.From
	if from < 0 || from > to {
		from = 0
	}
	return all[from:to]
}

// Checkmarker is the driving loop over the task items of one note file.
type Checkmarker struct {
	*Env
}

func NewCheckmarker(env *Env) *Checkmarker {
	return &Checkmarker{Env: env}
}

// Run shows the tasks of file until the user accepts or returns.
func (c *Checkmarker) Run(ctx context.Context, file string) (*Outcome, error) {
	all, _, err := parser.ReadTasks(file)
	if err != nil {
		return nil, err
	}
	st := CheckmarkState{File: file}
	list := st.slice(all)
	for {
		var out *Outcome
		list, out, st, err = c.Next(ctx, list, st)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
}

func (c *Checkmarker) Next(ctx context.Context, list []parser.TaskItem, st CheckmarkState) ([]parser.TaskItem, *Outcome, CheckmarkState, error) {
	content, err := os.ReadFile(st.File)
	if err != nil {
		return list, nil, st, err
	}
	all := parser.Tasks(st.File, content)
	// The file may have been edited since the last iteration.
	list = st.slice(all)

	detail := fmt.Sprintf("%s | %d/%d tasks", filepath.Base(st.File), len(list), len(all))
	res, err := c.Iteration.Checkmark(ctx, list, detail, func(_ context.Context, t parser.TaskItem) string {
		return c.preview(content, all, t)
	})
	if err != nil {
		return list, nil, st, err
	}

	next, out, nst, err := c.apply(ctx, list, st, content, all, res)
	if err != nil {
		if fatal(err) {
			return list, nil, st, err
		}
		c.report(ctx, "checkmark", err)
		return list, nil, st, nil
	}
	return next, out, nst, nil
}

func (c *Checkmarker) apply(
	ctx context.Context,
	list []parser.TaskItem,
	st CheckmarkState,
	content []byte,
	all []parser.TaskItem,
	res nav.CheckmarkResult,
) ([]parser.TaskItem, *Outcome, CheckmarkState, error) {
	sel := res.Tasks
	switch res.Action {
	case nav.CheckmarkReturn:
		return list, &Outcome{Return: true}, st, nil
	case nav.CheckmarkWiden:
		st = CheckmarkState{File: st.File}
		return st.slice(all), nil, st, nil
	}

	if len(sel) == 0 {
		return list, nil, st, nav.ErrNoSelection
	}

	switch res.Action {
	case nav.CheckmarkAccept:
		return list, &Outcome{Tasks: sel}, st, nil

	case nav.CheckmarkToggle:
		updated, err := parser.Toggle(st.File, sel)
		if err != nil {
			return list, nil, st, err
		}
		return st.slice(updated), nil, st, nil

	case nav.CheckmarkOpen:
		return list, nil, st, c.Open.Jump(ctx, st.File, sel[0].Line)

	case nav.CheckmarkYank:
		parts := make([]string, 0, len(sel))
		for _, t := range sel {
			parts = append(parts, parser.Source(content, all, t.Self, t.End()))
		}
		if c.Copy == nil {
			return list, nil, st, fmt.Errorf("clipboard is not available")
		}
		if err := c.Copy(strings.Join(parts, "")); err != nil {
			return list, nil, st, fmt.Errorf("copy to clipboard: %w", err)
		}
		c.notify(ctx, "copied %d task subtree(s)", len(sel))
		return list, nil, st, nil

	case nav.CheckmarkNarrow:
		from, to := sel[0].Self, sel[0].End()
		for _, t := range sel[1:] {
			from = min(from, t.Self)
			to = max(to, t.End())
		}
		st.From, st.To = from, to
		return st.slice(all), nil, st, nil
	}

	return list, nil, st, fmt.Errorf("%w: checkmark action %q", nav.ErrUnboundKey, res.Action)
}

// preview shows the source lines of the subtree rooted at t.
func (c *Checkmarker) preview(content []byte, all []parser.TaskItem, t parser.TaskItem) string {
	src := parser.Source(content, all, t.Self, t.End())
	if c.Resources == nil {
		return src
	}
	out, err := c.Resources.Markdown(src)
	if err != nil {
		return src
	}
	return out
}
