// Package vault keeps the graph store in step with the markdown files of the
// notes directory.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Paintersrp/mds/internal/handler"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/pathutil"
	"github.com/Paintersrp/mds/internal/store"
)

// Registry is the part of the graph store that sync writes to.
type Registry interface {
	List(ctx context.Context) ([]note.Note, error)
	Save(ctx context.Context, n note.Note) error
	Remove(ctx context.Context, name string) error
}

type Report struct {
	Added   []string
	Removed []string
}

func (r Report) String() string {
	return fmt.Sprintf("%d added, %d removed", len(r.Added), len(r.Removed))
}

type Syncer struct {
	registry Registry
	files    *handler.FileHandler
	logger   *slog.Logger
}

func NewSyncer(registry Registry, files *handler.FileHandler, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{registry: registry, files: files, logger: logger}
}

// NameOf derives the note name of a markdown file inside the notes dir.
func (s *Syncer) NameOf(path string) (string, error) {
	if !pathutil.Within(s.files.NotesDir(), path) {
		return "", fmt.Errorf("vault: %s is outside %s", path, s.files.NotesDir())
	}
	rel, err := pathutil.Relative(s.files.NotesDir(), path)
	if err != nil {
		return "", fmt.Errorf("vault: %w", err)
	}
	return strings.TrimSuffix(rel, ".md"), nil
}

// Sync registers every markdown file that no note points at and drops notes
// whose file inside the notes dir is gone. Tags and notes kept elsewhere are
// left alone.
func (s *Syncer) Sync(ctx context.Context) (Report, error) {
	var report Report

	files, err := s.files.WalkFiles()
	if err != nil {
		return report, fmt.Errorf("vault: walk %s: %w", s.files.NotesDir(), err)
	}

	notes, err := s.registry.List(ctx)
	if err != nil {
		return report, err
	}

	known := make(map[string]string, len(notes))
	for _, n := range notes {
		if !n.IsTag() {
			known[pathutil.NormalizePath(n.File)] = n.Name
		}
	}
	names := note.NewSet(notes...)

	for _, file := range files {
		if _, ok := known[pathutil.NormalizePath(file)]; ok {
			continue
		}
		name, err := s.NameOf(file)
		if err != nil {
			return report, err
		}
		if names.Has(name) {
			s.logger.Warn("note name taken by another file", slog.String("note", name), slog.String("file", file))
			continue
		}
		if err := s.registry.Save(ctx, note.New(name, file)); err != nil {
			return report, err
		}
		names.Add(note.New(name, file))
		report.Added = append(report.Added, name)
	}

	for _, n := range notes {
		if n.IsTag() || !pathutil.Within(s.files.NotesDir(), n.File) {
			continue
		}
		if _, err := os.Stat(n.File); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := s.registry.Remove(ctx, n.Name); err != nil && !errors.Is(err, store.ErrNotFound) {
			return report, err
		}
		report.Removed = append(report.Removed, n.Name)
	}

	s.logger.Info("vault synced",
		slog.String("dir", s.files.NotesDir()),
		slog.Int("added", len(report.Added)),
		slog.Int("removed", len(report.Removed)),
	)
	return report, nil
}
