package nav

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/keymap"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

// scriptedFinder drains every item and answers with a fixed key and the
// items whose display matches pick.
type scriptedFinder struct {
	key  keymap.Chord
	pick []string
	err  error

	got Request
	all []Item
}

func (f *scriptedFinder) Find(ctx context.Context, req Request) (Result, error) {
	f.got = req
	for it := range req.Items {
		f.all = append(f.all, it)
	}
	if f.err != nil {
		return Result{}, f.err
	}
	var selected []Item
	for _, p := range f.pick {
		for _, it := range f.all {
			if it.Display() == p {
				selected = append(selected, it)
			}
		}
	}
	return Result{Selected: selected, Key: f.key}, nil
}

func testKeys(t *testing.T) Keys {
	t.Helper()
	keys, err := BuildKeys(config.DefaultKeymap())
	require.NoError(t, err)
	return keys
}

func TestExploreDecodesBoundChord(t *testing.T) {
	f := &scriptedFinder{key: "ctrl-b", pick: []string{"b"}}
	it := &Iteration{Finder: f, Keys: testKeys(t)}

	res, err := it.Explore(context.Background(),
		[]note.Note{note.Tag("a"), note.New("b", "/b.md")}, "",
		func(_ context.Context, n note.Note) string { return "preview of " + n.Name })
	require.NoError(t, err)

	assert.Equal(t, ExploreBack, res.Action)
	assert.Equal(t, []string{"b"}, note.Names(res.Notes))
	assert.True(t, f.got.Multi)
	assert.Contains(t, f.got.Expect, keymap.Chord("ctrl-b"))
	assert.Equal(t, "explore", f.got.Header)
	assert.Contains(t, f.got.Hint, "ctrl-b back")

	previews := make(map[string]string)
	for _, item := range f.all {
		previews[item.ID()] = item.Preview
	}
	assert.Equal(t, map[string]string{"a": "preview of a", "b": "preview of b"}, previews)
}

func TestEnterAcceptsInEveryMode(t *testing.T) {
	it := &Iteration{Finder: &scriptedFinder{key: keymap.Enter}, Keys: testKeys(t)}
	ctx := context.Background()

	e, err := it.Explore(ctx, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, ExploreAccept, e.Action)

	s, err := it.Surf(ctx, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, SurfAccept, s.Action)

	c, err := it.Checkmark(ctx, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, CheckmarkAccept, c.Action)

	st, err := it.Stack(ctx, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, StackSelect, st.Action)
}

func TestAbortIsReported(t *testing.T) {
	ctx := context.Background()

	it := &Iteration{Finder: &scriptedFinder{err: ErrUserAbort}, Keys: testKeys(t)}
	_, err := it.Surf(ctx, nil, "", nil)
	assert.ErrorIs(t, err, ErrUserAbort)

	it = &Iteration{Finder: &scriptedFinder{key: keymap.Abort}, Keys: testKeys(t)}
	_, err = it.Checkmark(ctx, nil, "", nil)
	assert.ErrorIs(t, err, ErrUserAbort)
}

func TestUnboundChordIsAnError(t *testing.T) {
	it := &Iteration{Finder: &scriptedFinder{key: "alt-z"}, Keys: testKeys(t)}
	_, err := it.Stack(context.Background(), nil, "", nil)
	assert.ErrorIs(t, err, ErrUnboundKey)
}

func TestFinderFailureIsWrapped(t *testing.T) {
	boom := errors.New("terminal gone")
	it := &Iteration{Finder: &scriptedFinder{err: boom}, Keys: testKeys(t)}
	_, err := it.Explore(context.Background(), nil, "", nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "explore finder")
}

func TestSurfAndCheckmarkCarryPayloads(t *testing.T) {
	link := parser.Link{Parent: note.Tag("a"), Description: "docs", Kind: parser.URL, Target: "https://x"}
	task := parser.TaskItem{File: "/a.md", Rendered: "[ ] t", Level: 1, Self: 3}

	it := &Iteration{Finder: &scriptedFinder{key: "alt-j", pick: []string{"a: docs [url]"}}, Keys: testKeys(t)}
	s, err := it.Surf(context.Background(), []parser.Link{link}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, SurfJump, s.Action)
	assert.Equal(t, []parser.Link{link}, s.Links)
	assert.False(t, it.Finder.(*scriptedFinder).got.Multi)

	it = &Iteration{Finder: &scriptedFinder{key: "alt-n", pick: []string{"  [ ] t"}}, Keys: testKeys(t)}
	c, err := it.Checkmark(context.Background(), []parser.TaskItem{task}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, CheckmarkNarrow, c.Action)
	assert.Equal(t, []parser.TaskItem{task}, c.Tasks)
}

func TestLinkItemsOnOneLineAreDistinct(t *testing.T) {
	first := parser.Link{Parent: note.Tag("a"), Description: "doc", Kind: parser.Broken, Line: 2, Offset: 6}
	second := first
	second.Offset = 18

	assert.Equal(t, NewLinkItem(first).Display(), NewLinkItem(second).Display())
	assert.NotEqual(t, NewLinkItem(first).ID(), NewLinkItem(second).ID())
}

func TestDispatchBoundsConcurrencyAndSendsEveryItem(t *testing.T) {
	var running, peak atomic.Int32
	var mu sync.Mutex
	preview := func(_ context.Context, it Item) string {
		n := running.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return strings.ToUpper(it.ID())
	}

	items := []Item{NewNoteItem(note.Tag("a")), NewNoteItem(note.Tag("b")), NewNoteItem(note.Tag("c")), NewNoteItem(note.Tag("d"))}
	var got []string
	for it := range dispatch(context.Background(), items, preview, 2) {
		got = append(got, it.Preview)
	}
	sort.Strings(got)

	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestDispatchStopsSendingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := []Item{NewNoteItem(note.Tag("a")), NewNoteItem(note.Tag("b"))}

	ch := dispatch(ctx, items, func(context.Context, Item) string { return "" }, 1)
	cancel()

	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch did not close its channel after cancel")
	}
}

func TestHintListsBindings(t *testing.T) {
	keys := testKeys(t)
	line := hint(keys.Surf)
	assert.Contains(t, line, "ctrl-o open")
	assert.Contains(t, line, "alt-j jump")
}
