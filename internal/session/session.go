// Package session drives the navigation iterations of one command and
// applies the actions they return.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
	"github.com/Paintersrp/mds/internal/preview"
	"github.com/Paintersrp/mds/internal/render"
)

// StatusDelay keeps a status line on screen before the next prompt.
const StatusDelay = time.Second

// Opener starts the external commands of the open and jump actions.
type Opener interface {
	OpenNote(ctx context.Context, n note.Note) error
	OpenNoteExternal(ctx context.Context, n note.Note) error
	OpenLink(ctx context.Context, l parser.Link) error
	OpenLinkExternal(ctx context.Context, l parser.Link) error
	Jump(ctx context.Context, file string, line int) error
	Preview(ctx context.Context, l parser.Link) (string, error)
}

// Prompter asks the user for a line of text or a yes/no answer.
type Prompter interface {
	Input(label, initial string) (string, error)
	Confirm(label string) (bool, error)
}

// NotePicker picks notes outside of the mode iterations, for example the
// targets of a new link.
type NotePicker interface {
	PickNotes(ctx context.Context, header string, notes []note.Note, multi bool) ([]note.Note, error)
}

// Env holds the collaborators shared by every loop of a session.
type Env struct {
	Graph     nav.Graph
	Iteration *nav.Iteration
	Picker    NotePicker
	Prompt    Prompter
	Open      Opener
	Previews  *preview.Renderer
	Resources *render.Resources
	Links     parser.LinkOptions
	NotesDir  string
	// Trash disposes of the file of a removed note.
	Trash func(path string) error
	// Copy places text on the clipboard.
	Copy   func(text string) error
	Status io.Writer
	Logger *slog.Logger
	Delay  time.Duration
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Outcome ends a loop. Return means the loop handed control back to its
// caller without a result.
type Outcome struct {
	Notes  []note.Note
	Link   *parser.Link
	Tasks  []parser.TaskItem
	Return bool
}

// report shows a recoverable failure and waits so it can be read.
func (e *Env) report(ctx context.Context, mode string, err error) {
	e.logger().Warn("action failed", slog.String("mode", mode), slog.String("error", err.Error()))
	if e.Status != nil {
		fmt.Fprintf(e.Status, "%s: %v\n", mode, err)
	}
	e.pause(ctx)
}

func (e *Env) notify(ctx context.Context, format string, args ...any) {
	if e.Status != nil {
		fmt.Fprintf(e.Status, format+"\n", args...)
	}
	e.pause(ctx)
}

func (e *Env) pause(ctx context.Context) {
	if e.Delay <= 0 {
		return
	}
	t := time.NewTimer(e.Delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// fatal reports whether err ends the session instead of being reported.
func fatal(err error) bool {
	return errors.Is(err, nav.ErrUserAbort) ||
		errors.Is(err, nav.ErrUnboundKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// dismissed turns an aborted secondary prompt into a no-op so only the
// mode widget can end a session.
func dismissed(err error) error {
	if errors.Is(err, nav.ErrUserAbort) {
		return nil
	}
	return err
}

// union collects the neighbours of every note in dir, in first seen order.
func union(ctx context.Context, g nav.Graph, notes []note.Note, dir note.Direction) ([]note.Note, error) {
	set := note.NewSet()
	for _, n := range notes {
		links, err := g.Links(ctx, n.Name, dir)
		if err != nil {
			return nil, err
		}
		for _, l := range links {
			set.Add(l)
		}
	}
	return set.Notes(), nil
}

func without(notes []note.Note, drop []note.Note) []note.Note {
	skip := note.NewSet(drop...)
	out := make([]note.Note, 0, len(notes))
	for _, n := range notes {
		if !skip.Has(n.Name) {
			out = append(out, n)
		}
	}
	return out
}
