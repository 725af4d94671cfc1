package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Paintersrp/mds/internal/note"
)

func scanNotes(rows *sql.Rows) ([]note.Note, error) {
	defer rows.Close()
	var notes []note.Note
	for rows.Next() {
		var n note.Note
		if err := rows.Scan(&n.Name, &n.File); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// List returns every note ordered by name.
func (s *Store) List(ctx context.Context) ([]note.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, file FROM notes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	return scanNotes(rows)
}

func (s *Store) Get(ctx context.Context, name string) (note.Note, error) {
	var n note.Note
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT name, file FROM notes WHERE name = ?`), name).
		Scan(&n.Name, &n.File)
	if errors.Is(err, sql.ErrNoRows) {
		return note.Note{}, fmt.Errorf("store: note %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return note.Note{}, fmt.Errorf("store: get note %q: %w", name, err)
	}
	return n, nil
}

// Links returns the notes linked from name, or linking to it when dir is
// note.Backward.
func (s *Store) Links(ctx context.Context, name string, dir note.Direction) ([]note.Note, error) {
	query := `SELECT n.name, n.file FROM links l JOIN notes n ON n.name = l.dst WHERE l.src = ? ORDER BY n.name`
	if dir == note.Backward {
		query = `SELECT n.name, n.file FROM links l JOIN notes n ON n.name = l.src WHERE l.dst = ? ORDER BY n.name`
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), name)
	if err != nil {
		return nil, fmt.Errorf("store: %s links of %q: %w", dir, name, err)
	}
	return scanNotes(rows)
}

// Save inserts n or updates its file.
func (s *Store) Save(ctx context.Context, n note.Note) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO notes (name, file) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET file = excluded.file
	`), n.Name, n.File)
	if err != nil {
		return fmt.Errorf("store: save note %q: %w", n.Name, err)
	}
	s.logger.Debug("note saved", slog.String("note", n.Name), slog.String("file", n.File))
	return nil
}

// InsertLink adds the edge src -> dst. Both notes must exist.
func (s *Store) InsertLink(ctx context.Context, src, dst string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, name := range []string{src, dst} {
		ok, err := s.exists(ctx, tx, name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("store: link %q -> %q: note %q: %w", src, dst, name, ErrNotFound)
		}
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO links (src, dst) VALUES (?, ?)
		ON CONFLICT (src, dst) DO NOTHING
	`), src, dst)
	if err != nil {
		return fmt.Errorf("store: insert link %q -> %q: %w", src, dst, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	s.logger.Debug("link inserted", slog.String("src", src), slog.String("dst", dst))
	return nil
}

func (s *Store) RemoveLink(ctx context.Context, src, dst string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM links WHERE src = ? AND dst = ?`), src, dst)
	if err != nil {
		return fmt.Errorf("store: remove link %q -> %q: %w", src, dst, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: link %q -> %q: %w", src, dst, ErrNotFound)
	}
	s.logger.Debug("link removed", slog.String("src", src), slog.String("dst", dst))
	return nil
}

// Rename changes the name of a note. Edges and stack entries follow it.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	taken, err := s.exists(ctx, tx, to)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("store: rename %q to %q: %w", from, to, ErrExists)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`UPDATE notes SET name = ? WHERE name = ?`), to, from)
	if err != nil {
		return fmt.Errorf("store: rename %q to %q: %w", from, to, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: rename %q: %w", from, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	s.logger.Info("note renamed", slog.String("from", from), slog.String("to", to))
	return nil
}

// Remove deletes a note with its edges and stack entries.
func (s *Store) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM notes WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("store: remove %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: remove %q: %w", name, ErrNotFound)
	}
	s.logger.Info("note removed", slog.String("note", name))
	return nil
}

// Edge is a persisted note to note link.
type Edge struct {
	Src string
	Dst string
}

// Edges lists every edge ordered by source then destination.
func (s *Store) Edges(ctx context.Context) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT src, dst FROM links ORDER BY src, dst`)
	if err != nil {
		return nil, fmt.Errorf("store: list edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Src, &e.Dst); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
