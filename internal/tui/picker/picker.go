// Package picker is the full screen fuzzy filter that presents the items of
// a navigation iteration.
package picker

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/mds/internal/nav"
)

// Picker implements nav.Finder on a bubbletea program.
type Picker struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

func New() *Picker {
	return &Picker{AltScreen: true}
}

func (p *Picker) options(ctx context.Context) []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if p.Input != nil {
		opts = append(opts, tea.WithInput(p.Input))
	}
	if p.Output != nil {
		opts = append(opts, tea.WithOutput(p.Output))
	}
	return opts
}

// Find runs the widget until the user commits or aborts. Items are fed into
// the running program as they arrive.
func (p *Picker) Find(ctx context.Context, req nav.Request) (nav.Result, error) {
	prog := tea.NewProgram(newModel(req), p.options(ctx)...)

	go func() {
		for it := range req.Items {
			prog.Send(itemMsg(it))
		}
		prog.Send(doneMsg{})
	}()

	type outcome struct {
		model tea.Model
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		m, err := prog.Run()
		done <- outcome{model: m, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		prog.Kill()
		<-done
		return nav.Result{}, ctx.Err()
	}

	if out.err != nil {
		if errors.Is(out.err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nav.Result{}, ctx.Err()
		}
		return nav.Result{}, fmt.Errorf("picker: %w", out.err)
	}

	m, ok := out.model.(model)
	if !ok {
		return nav.Result{}, fmt.Errorf("picker: unexpected model %T", out.model)
	}
	if m.aborted || m.result == nil {
		return nav.Result{}, nav.ErrUserAbort
	}
	return *m.result, nil
}
