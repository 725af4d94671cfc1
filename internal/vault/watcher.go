package vault

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Paintersrp/mds/internal/pathutil"
)

// DefaultSettle is how long the watcher waits for a burst of file events to
// end before syncing.
const DefaultSettle = 250 * time.Millisecond

type Watcher struct {
	watcher *fsnotify.Watcher
	syncer  *Syncer
	dir     string
	settle  time.Duration
	once    sync.Once
	onSync  func(Report)
}

func NewWatcher(syncer *Syncer) (*Watcher, error) {
	dir := pathutil.NormalizePath(syncer.files.NotesDir())
	if dir == "" {
		return nil, errors.New("vault: notes directory cannot be empty")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fw,
		syncer:  syncer,
		dir:     dir,
		settle:  DefaultSettle,
	}
	if err := w.addRecursive(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// OnSync registers a callback that receives the report of every sync the
// watcher runs.
func (w *Watcher) OnSync(fn func(Report)) {
	w.onSync = fn
}

// SetSettle changes the quiet period before a sync.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Run syncs the store after every burst of markdown changes until ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-settled:
			settled = nil
			report, err := w.syncer.Sync(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.syncer.logger.Warn("watch sync failed", slog.String("error", err.Error()))
				continue
			}
			if w.onSync != nil {
				w.onSync(report)
			}

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.syncer.files.IsExcluded(event.Name) {
						_ = w.addRecursive(event.Name)
					}
					continue
				}
			}

			if !w.isRelevant(event) {
				continue
			}
			w.syncer.logger.Debug("note file changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.settle)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.settle)
			}
			settled = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				w.syncer.logger.Warn("watcher error", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Watcher) Close() error {
	var closeErr error
	w.once.Do(func() {
		closeErr = w.watcher.Close()
	})
	return closeErr
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(pathutil.NormalizePath(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.dir && w.syncer.files.IsExcluded(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// isRelevant keeps markdown creations, removals and renames. Plain writes
// do not change the set of notes.
func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !pathutil.IsMarkdown(event.Name) || !pathutil.Within(w.dir, event.Name) {
		return false
	}
	return !w.syncer.files.IsExcluded(event.Name)
}
