package vault

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/mds/internal/handler"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/store"
)

func newSyncer(t *testing.T) (*Syncer, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "mds.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return NewSyncer(s, handler.NewFileHandler(dir), logger), s, dir
}

func writeNote(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# note\n"), 0o644))
}

func TestSyncRegistersFilesByRelativeName(t *testing.T) {
	syncer, s, dir := newSyncer(t)
	ctx := context.Background()

	writeNote(t, filepath.Join(dir, "inbox.md"))
	writeNote(t, filepath.Join(dir, "projects", "mds.md"))
	writeNote(t, filepath.Join(dir, handler.TrashDir, "old.md"))
	writeNote(t, filepath.Join(dir, ".hidden", "secret.md"))

	report, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inbox", "projects/mds"}, report.Added)
	assert.Empty(t, report.Removed)

	n, err := s.Get(ctx, "projects/mds")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "projects", "mds.md"), n.File)

	again, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.Added)
	assert.Equal(t, "0 added, 0 removed", again.String())
}

func TestSyncDropsMissingFilesAndKeepsTags(t *testing.T) {
	syncer, s, dir := newSyncer(t)
	ctx := context.Background()

	kept := filepath.Join(dir, "kept.md")
	gone := filepath.Join(dir, "gone.md")
	writeNote(t, kept)
	writeNote(t, gone)
	_, err := syncer.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, note.Tag("reading")))
	require.NoError(t, os.Remove(gone))

	report, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, report.Removed)

	notes, err := s.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"kept", "reading"}, note.Names(notes))
}

func TestSyncSkipsFilesAlreadyRegisteredUnderAnotherName(t *testing.T) {
	syncer, s, dir := newSyncer(t)
	ctx := context.Background()

	file := filepath.Join(dir, "draft.md")
	writeNote(t, file)
	require.NoError(t, s.Save(ctx, note.New("renamed", file)))

	report, err := syncer.Sync(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Added)
}

func TestNameOfRejectsOutsideFiles(t *testing.T) {
	syncer, _, dir := newSyncer(t)

	name, err := syncer.NameOf(filepath.Join(dir, "a", "b.md"))
	require.NoError(t, err)
	assert.Equal(t, "a/b", name)

	_, err = syncer.NameOf(filepath.Join(filepath.Dir(dir), "elsewhere.md"))
	assert.Error(t, err)
}

func TestWatcherSyncsNewFiles(t *testing.T) {
	syncer, s, dir := newSyncer(t)

	w, err := NewWatcher(syncer)
	require.NoError(t, err)
	defer w.Close()
	w.SetSettle(20 * time.Millisecond)

	reports := make(chan Report, 4)
	w.OnSync(func(r Report) { reports <- r })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeNote(t, filepath.Join(dir, "fresh.md"))

	select {
	case r := <-reports:
		assert.Equal(t, []string{"fresh"}, r.Added)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a sync")
	}

	_, err = s.Get(context.Background(), "fresh")
	require.NoError(t, err)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
