package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Paintersrp/mds/internal/note"
)

// Stack returns the members of a named stack, top first.
func (s *Store) Stack(ctx context.Context, stack string) ([]note.Note, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT n.name, n.file FROM stacks st JOIN notes n ON n.name = st.note
		WHERE st.stack = ? ORDER BY st.position DESC
	`), stack)
	if err != nil {
		return nil, fmt.Errorf("store: read stack %q: %w", stack, err)
	}
	return scanNotes(rows)
}

// Stacks lists the names of every non-empty stack.
func (s *Store) Stacks(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT stack FROM stacks ORDER BY stack`)
	if err != nil {
		return nil, fmt.Errorf("store: list stacks: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scan stack: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) top(ctx context.Context, tx *sql.Tx, stack string) (int, error) {
	var top sql.NullInt64
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT max(position) FROM stacks WHERE stack = ?`), stack).Scan(&top)
	if err != nil {
		return 0, fmt.Errorf("store: stack %q top: %w", stack, err)
	}
	return int(top.Int64), nil
}

// Push places a note on top of the stack. A note already on the stack is
// moved to the top.
func (s *Store) Push(ctx context.Context, stack, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("store: push %q: %w", name, ErrNotFound)
		}
		top, err := s.top(ctx, tx, stack)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, s.rebind(`
			INSERT INTO stacks (stack, note, position) VALUES (?, ?, ?)
			ON CONFLICT (stack, note) DO UPDATE SET position = excluded.position
		`), stack, name, top+1)
		if err != nil {
			return fmt.Errorf("store: push %q on %q: %w", name, stack, err)
		}
		s.logger.Debug("note pushed", slog.String("stack", stack), slog.String("note", name))
		return nil
	})
}

func (s *Store) Pop(ctx context.Context, stack, name string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM stacks WHERE stack = ? AND note = ?`), stack, name)
	if err != nil {
		return fmt.Errorf("store: pop %q from %q: %w", name, stack, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: %q on stack %q: %w", name, stack, ErrNotFound)
	}
	s.logger.Debug("note popped", slog.String("stack", stack), slog.String("note", name))
	return nil
}

func (s *Store) MoveToTop(ctx context.Context, stack, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.position(ctx, tx, stack, name); err != nil {
			return err
		}
		top, err := s.top(ctx, tx, stack)
		if err != nil {
			return err
		}
		return s.setPosition(ctx, tx, stack, name, top+1)
	})
}

// SwapWithAbove exchanges a note with its neighbour closer to the top. The
// top note is left in place.
func (s *Store) SwapWithAbove(ctx context.Context, stack, name string) error {
	return s.swap(ctx, stack, name, `
		SELECT note, position FROM stacks WHERE stack = ? AND position > ?
		ORDER BY position ASC LIMIT 1`)
}

// SwapWithBelow exchanges a note with its neighbour further from the top.
// The bottom note is left in place.
func (s *Store) SwapWithBelow(ctx context.Context, stack, name string) error {
	return s.swap(ctx, stack, name, `
		SELECT note, position FROM stacks WHERE stack = ? AND position < ?
		ORDER BY position DESC LIMIT 1`)
}

func (s *Store) swap(ctx context.Context, stack, name, neighbourQuery string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		pos, err := s.position(ctx, tx, stack, name)
		if err != nil {
			return err
		}

		var other string
		var otherPos int
		err = tx.QueryRowContext(ctx, s.rebind(neighbourQuery), stack, pos).Scan(&other, &otherPos)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("store: neighbour of %q on %q: %w", name, stack, err)
		}

		if err := s.setPosition(ctx, tx, stack, name, otherPos); err != nil {
			return err
		}
		return s.setPosition(ctx, tx, stack, other, pos)
	})
}

func (s *Store) position(ctx context.Context, tx *sql.Tx, stack, name string) (int, error) {
	var pos int
	err := tx.QueryRowContext(ctx, s.rebind(`SELECT position FROM stacks WHERE stack = ? AND note = ?`), stack, name).
		Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("store: %q on stack %q: %w", name, stack, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("store: position of %q on %q: %w", name, stack, err)
	}
	return pos, nil
}

func (s *Store) setPosition(ctx context.Context, tx *sql.Tx, stack, name string, pos int) error {
	_, err := tx.ExecContext(ctx, s.rebind(`UPDATE stacks SET position = ? WHERE stack = ? AND note = ?`), pos, stack, name)
	if err != nil {
		return fmt.Errorf("store: move %q on %q: %w", name, stack, err)
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// StackEntry is one persisted stack row.
type StackEntry struct {
	Stack    string
	Note     string
	Position int
}

// StackEntries lists every stack row ordered by stack then position.
func (s *Store) StackEntries(ctx context.Context) ([]StackEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT stack, note, position FROM stacks ORDER BY stack, position`)
	if err != nil {
		return nil, fmt.Errorf("store: list stack entries: %w", err)
	}
	defer rows.Close()

	var entries []StackEntry
	for rows.Next() {
		var e StackEntry
		if err := rows.Scan(&e.Stack, &e.Note, &e.Position); err != nil {
			return nil, fmt.Errorf("store: scan stack entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
