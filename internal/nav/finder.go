package nav

import (
	"context"
	"errors"
	"fmt"

	"github.com/Paintersrp/mds/internal/keymap"
)

var (
	// ErrUserAbort ends the session that ran the iteration.
	ErrUserAbort = errors.New("user aborted")
	// ErrNoSelection is returned by loops when an action needs at least one
	// selected item.
	ErrNoSelection = errors.New("nothing selected")
	// ErrUnboundKey means the finder terminated on a chord that the mode
	// table does not bind. Tables are validated at load, so this is a bug.
	ErrUnboundKey = errors.New("unbound key")
)

// Request describes one presentation of a list.
type Request struct {
	Header string
	// Hint lists the mode bindings, "ctrl-b back  ctrl-e splice".
	Hint string
	// Items is closed once every item has been sent.
	Items <-chan Item
	Multi bool
	// Expect are the chords besides enter that terminate the finder.
	Expect []keymap.Chord
}

// Result is what the user committed. Key is keymap.Enter or one of the
// expected chords.
type Result struct {
	Selected []Item
	Key      keymap.Chord
}

// Finder presents items and blocks until the user commits or aborts.
// Aborting returns ErrUserAbort.
type Finder interface {
	Find(ctx context.Context, req Request) (Result, error)
}

// PreviewFunc renders the preview of one item.
type PreviewFunc func(ctx context.Context, it Item) string

// present runs the finder over items and resolves the terminating key
// against table. Enter maps to accept.
func present[A ~string](
	ctx context.Context,
	f Finder,
	table *keymap.Table[A],
	accept A,
	header string,
	multi bool,
	items []Item,
	preview PreviewFunc,
	workers int,
) ([]Item, A, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res, err := f.Find(ctx, Request{
		Header: header,
		Hint:   hint(table),
		Items:  dispatch(ctx, items, preview, workers),
		Multi:  multi,
		Expect: table.Chords(),
	})
	if err != nil {
		if errors.Is(err, ErrUserAbort) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("%s finder: %w", table.Mode(), err)
	}

	switch res.Key {
	case keymap.Enter, "":
		return res.Selected, accept, nil
	case keymap.Abort:
		return nil, "", ErrUserAbort
	}

	action, ok := table.Resolve(res.Key)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s in %s", ErrUnboundKey, res.Key, table.Mode())
	}
	return res.Selected, action, nil
}
