package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/pathutil"
	"github.com/Paintersrp/mds/internal/state"
	"github.com/Paintersrp/mds/internal/store"
)

// ResolveNote finds the note an argument names. The argument is a note
// name or the path of a registered note file.
func ResolveNote(ctx context.Context, s *state.State, arg string) (note.Note, error) {
	if s == nil || s.Config == nil || s.Store == nil {
		return note.Note{}, fmt.Errorf("state configuration is not initialized")
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return note.Note{}, fmt.Errorf("a note argument is required")
	}

	n, err := s.Store.Get(ctx, strings.TrimPrefix(arg, "#"))
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, store.ErrNotFound) || !pathutil.IsMarkdown(arg) {
		return note.Note{}, err
	}

	path, perr := resolvePath(s.Config.NotesDir, arg)
	if perr != nil {
		return note.Note{}, perr
	}
	name, perr := s.Syncer.NameOf(path)
	if perr != nil {
		return note.Note{}, perr
	}
	return s.Store.Get(ctx, name)
}

// ResolveNotes resolves every argument. Without arguments the user picks
// from all notes.
func ResolveNotes(ctx context.Context, s *state.State, args []string, header string, multi bool) ([]note.Note, error) {
	if len(args) == 0 {
		all, err := s.Store.List(ctx)
		if err != nil {
			return nil, err
		}
		return s.Picker.PickNotes(ctx, header, all, multi)
	}
	return ResolveNotesStrict(ctx, s, args)
}

func resolvePath(notesDir, arg string) (string, error) {
	notesDir = filepath.Clean(notesDir)

	resolved := filepath.Clean(arg)
	if !filepath.IsAbs(resolved) {
		// Relative paths are tried against the working directory first.
		abs, err := filepath.Abs(resolved)
		if _, serr := os.Stat(abs); err == nil && serr == nil {
			resolved = abs
		} else {
			resolved = filepath.Join(notesDir, resolved)
		}
	}

	if !pathutil.Within(notesDir, resolved) {
		return "", fmt.Errorf("path %q is outside the notes directory %q", resolved, notesDir)
	}
	return resolved, nil
}

// ResolveNotesStrict resolves every argument and never asks.
func ResolveNotesStrict(ctx context.Context, s *state.State, args []string) ([]note.Note, error) {
	notes := make([]note.Note, 0, len(args))
	for _, arg := range args {
		n, err := ResolveNote(ctx, s, arg)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}
