package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/state"
)

// Loader opens the application state on first use, after flags are parsed.
type Loader struct {
	Options state.Options

	state *state.State
	err   error
}

func NewLoader(opts state.Options) *Loader {
	return &Loader{Options: opts}
}

// Preloaded wraps an existing state, used by command tests.
func Preloaded(s *state.State) *Loader {
	return &Loader{state: s}
}

func (l *Loader) State(ctx context.Context) (*state.State, error) {
	if l.state == nil && l.err == nil {
		l.state, l.err = state.NewState(ctx, l.Options)
	}
	return l.state, l.err
}

func (l *Loader) Close() error {
	if l.state == nil {
		return nil
	}
	err := l.state.Close()
	l.state = nil
	return err
}

// Finish turns an aborted session into a message and a clean exit.
func Finish(cmd *cobra.Command, err error) error {
	if errors.Is(err, nav.ErrUserAbort) {
		fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
		return nil
	}
	return err
}
