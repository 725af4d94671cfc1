// Package store persists notes, note to note edges and named stacks in a
// SQL database. SQLite and PostgreSQL are supported.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS notes (
		name TEXT PRIMARY KEY,
		file TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		src TEXT NOT NULL REFERENCES notes(name) ON DELETE CASCADE ON UPDATE CASCADE,
		dst TEXT NOT NULL REFERENCES notes(name) ON DELETE CASCADE ON UPDATE CASCADE,
		PRIMARY KEY (src, dst)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_links_dst ON links(dst)`,
	`CREATE TABLE IF NOT EXISTS stacks (
		stack    TEXT NOT NULL,
		note     TEXT NOT NULL REFERENCES notes(name) ON DELETE CASCADE ON UPDATE CASCADE,
		position INTEGER NOT NULL,
		PRIMARY KEY (stack, note)
	)`,
}

// Store is safe for concurrent use. Every call checks out its own
// connection from the pool.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the database and applies the schema. driver is "sqlite3"
// or "pgx"; for sqlite3 the dsn is a file path.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	source := dsn
	if driver == "sqlite3" {
		source = dsn + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: apply schema: %w", err)
		}
	}

	logger.Debug("store opened", slog.String("driver", driver))
	return &Store{db: db, driver: driver, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into the numbered form PostgreSQL expects.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) exists(ctx context.Context, q queryer, name string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, s.rebind(`SELECT count(*) FROM notes WHERE name = ?`), name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("store: lookup %q: %w", name, err)
	}
	return n > 0, nil
}
