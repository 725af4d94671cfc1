package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/constants"
	"github.com/Paintersrp/mds/internal/keymap"
	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
	"github.com/Paintersrp/mds/internal/preview"
	"github.com/Paintersrp/mds/internal/render"
	"github.com/Paintersrp/mds/internal/store"
)

// step is one scripted answer of the finder: the displayed rows to select
// and the key that terminates it.
type step struct {
	pick []string
	key  keymap.Chord
}

// scriptFinder records, per iteration, the header and the rows shown with
// their previews.
type scriptFinder struct {
	steps    []step
	seen     [][]string
	previews [][]string
	headers  []string
}

func (f *scriptFinder) Find(ctx context.Context, req nav.Request) (nav.Result, error) {
	var items []nav.Item
	for it := range req.Items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })
	shown := make([]string, 0, len(items))
	previews := make([]string, 0, len(items))
	for _, it := range items {
		shown = append(shown, it.Display())
		previews = append(previews, it.Preview)
	}
	f.seen = append(f.seen, shown)
	f.previews = append(f.previews, previews)
	f.headers = append(f.headers, req.Header)

	if len(f.steps) == 0 {
		return nav.Result{}, nav.ErrUserAbort
	}
	s := f.steps[0]
	f.steps = f.steps[1:]

	var selected []nav.Item
	for _, p := range s.pick {
		for _, it := range items {
			if it.Display() == p {
				selected = append(selected, it)
			}
		}
	}
	return nav.Result{Selected: selected, Key: s.key}, nil
}

// countingGraph counts every mutating call that reaches the store.
type countingGraph struct {
	*store.Store
	mutations atomic.Int32
}

func (g *countingGraph) Save(ctx context.Context, n note.Note) error {
	g.mutations.Add(1)
	return g.Store.Save(ctx, n)
}

func (g *countingGraph) InsertLink(ctx context.Context, src, dst string) error {
	g.mutations.Add(1)
	return g.Store.InsertLink(ctx, src, dst)
}

func (g *countingGraph) RemoveLink(ctx context.Context, src, dst string) error {
	g.mutations.Add(1)
	return g.Store.RemoveLink(ctx, src, dst)
}

func (g *countingGraph) Rename(ctx context.Context, from, to string) error {
	g.mutations.Add(1)
	return g.Store.Rename(ctx, from, to)
}

func (g *countingGraph) Remove(ctx context.Context, name string) error {
	g.mutations.Add(1)
	return g.Store.Remove(ctx, name)
}

func (g *countingGraph) Push(ctx context.Context, stack, name string) error {
	g.mutations.Add(1)
	return g.Store.Push(ctx, stack, name)
}

func (g *countingGraph) Pop(ctx context.Context, stack, name string) error {
	g.mutations.Add(1)
	return g.Store.Pop(ctx, stack, name)
}

type fakePicker struct {
	pick []string
}

func (p *fakePicker) PickNotes(_ context.Context, _ string, notes []note.Note, _ bool) ([]note.Note, error) {
	var out []note.Note
	for _, n := range notes {
		for _, name := range p.pick {
			if n.Name == name {
				out = append(out, n)
			}
		}
	}
	if len(out) == 0 {
		return nil, nav.ErrUserAbort
	}
	return out, nil
}

type fakePrompt struct {
	input   string
	confirm bool
	err     error
}

func (p fakePrompt) Input(string, string) (string, error) { return p.input, p.err }
func (p fakePrompt) Confirm(string) (bool, error)         { return p.confirm, p.err }

type fakeOpener struct {
	opened []string
	jumps  []int
}

func (o *fakeOpener) OpenNote(_ context.Context, n note.Note) error {
	o.opened = append(o.opened, n.Name)
	return nil
}

func (o *fakeOpener) OpenNoteExternal(ctx context.Context, n note.Note) error {
	return o.OpenNote(ctx, n)
}

func (o *fakeOpener) OpenLink(_ context.Context, l parser.Link) error {
	o.opened = append(o.opened, l.Destination())
	return nil
}

func (o *fakeOpener) OpenLinkExternal(ctx context.Context, l parser.Link) error {
	return o.OpenLink(ctx, l)
}

func (o *fakeOpener) Jump(_ context.Context, file string, line int) error {
	o.opened = append(o.opened, file)
	o.jumps = append(o.jumps, line)
	return nil
}

func (o *fakeOpener) Preview(context.Context, parser.Link) (string, error) {
	return "preview", nil
}

type fixture struct {
	env     *Env
	graph   *countingGraph
	finder  *scriptFinder
	opener  *fakeOpener
	status  *bytes.Buffer
	dir     string
	trashed []string
	copied  string
}

// newFixture creates notes a, b and c with a -> b and c -> b. Note a links
// to an url and carries a small checklist.
func newFixture(t *testing.T, steps ...step) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.Open(ctx, "sqlite3", filepath.Join(dir, "mds.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	bodies := map[string]string{
		"a": "# A\n\nsee [docs](https://example.com)\n\n- [ ] one\n  - [ ] two\n- [x] three\n",
		"b": "# B\n",
		"c": "# C\n",
	}
	for name, body := range bodies {
		file := note.FileFor(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
		require.NoError(t, s.Save(ctx, note.New(name, file)))
	}
	require.NoError(t, s.InsertLink(ctx, "a", "b"))
	require.NoError(t, s.InsertLink(ctx, "c", "b"))

	keys, err := nav.BuildKeys(config.DefaultKeymap())
	require.NoError(t, err)
	res, err := render.New(render.Options{Width: 80, Plain: true})
	require.NoError(t, err)

	f := &fixture{
		graph:  &countingGraph{Store: s},
		finder: &scriptFinder{steps: steps},
		opener: &fakeOpener{},
		status: &bytes.Buffer{},
		dir:    dir,
	}
	f.env = &Env{
		Graph:     f.graph,
		Iteration: &nav.Iteration{Finder: f.finder, Keys: keys, Workers: 4},
		Picker:    &fakePicker{},
		Prompt:    fakePrompt{},
		Open:      f.opener,
		Previews: &preview.Renderer{
			Graph:         s,
			Resources:     res,
			Links:         parser.DefaultLinkOptions(),
			UnlistedDepth: config.DefaultUnlistedDepth,
		},
		Resources: res,
		Links:     parser.DefaultLinkOptions(),
		NotesDir:  dir,
		Trash: func(path string) error {
			f.trashed = append(f.trashed, path)
			return nil
		},
		Copy: func(text string) error {
			f.copied = text
			return nil
		},
		Status: f.status,
		Logger: logger,
	}
	return f
}

func (f *fixture) all(t *testing.T) []note.Note {
	t.Helper()
	notes, err := f.graph.List(context.Background())
	require.NoError(t, err)
	return notes
}

func TestAbortNeverMutatesTheStore(t *testing.T) {
	f := newFixture(t)

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)
	assert.Zero(t, f.graph.mutations.Load())
}

func TestBackPopulatesBacklinksThenAccepts(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"b"}, key: "ctrl-b"},
		step{pick: []string{"c"}, key: keymap.Enter},
	)

	out, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	require.NoError(t, err)

	assert.Equal(t, []string{"c"}, note.Names(out.Notes))
	assert.ElementsMatch(t, []string{"a", "c"}, f.finder.seen[1])
	assert.Zero(t, f.graph.mutations.Load())
}

func TestLinkInsertsEdgesToPickedTargets(t *testing.T) {
	f := newFixture(t, step{pick: []string{"b"}, key: "ctrl-l"})
	f.env.Picker = &fakePicker{pick: []string{"c"}}

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	linked, err := f.graph.Links(context.Background(), "b", note.Forward)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, note.Names(linked))
}

func TestFailedActionIsReportedAndListRetained(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"b"}, key: "alt-l"},
		step{pick: []string{"b"}, key: "alt-n"},
	)

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	assert.Contains(t, f.status.String(), "b has no links")
	require.Len(t, f.finder.seen, 3)
	assert.ElementsMatch(t, f.finder.seen[0], f.finder.seen[1])
	assert.Equal(t, []string{"b"}, f.finder.seen[2])
}

func TestEnterWithoutSelectionIsRecoverable(t *testing.T) {
	f := newFixture(t, step{key: keymap.Enter})

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)
	assert.Contains(t, f.status.String(), nav.ErrNoSelection.Error())
}

func TestRemoveTrashesFileAndDropsNote(t *testing.T) {
	f := newFixture(t, step{pick: []string{"c"}, key: "alt-d"})
	f.env.Prompt = fakePrompt{confirm: true}

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	assert.Equal(t, []string{note.FileFor(f.dir, "c")}, f.trashed)
	assert.ElementsMatch(t, []string{"a", "b"}, f.finder.seen[1])
	_, err = f.graph.Get(context.Background(), "c")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemoveDeclinedKeepsNote(t *testing.T) {
	f := newFixture(t, step{pick: []string{"c"}, key: "alt-d"})

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)
	assert.Empty(t, f.trashed)
	assert.Zero(t, f.graph.mutations.Load())
}

func TestDismissedPromptKeepsSessionRunning(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a"}, key: "ctrl-n"},
		step{pick: []string{"a"}, key: "alt-r"},
	)
	f.env.Prompt = fakePrompt{err: nav.ErrUserAbort}

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)
	assert.Len(t, f.finder.seen, 3)
	assert.Equal(t, []string{"a", "b", "c"}, f.finder.seen[2])
	assert.Zero(t, f.graph.mutations.Load())
}

func TestCreateLinkedAddsNoteFileAndEdge(t *testing.T) {
	f := newFixture(t, step{pick: []string{"a"}, key: "ctrl-n"})
	f.env.Prompt = fakePrompt{input: "d"}

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	_, err = os.Stat(note.FileFor(f.dir, "d"))
	require.NoError(t, err)
	linked, err := f.graph.Links(context.Background(), "a", note.Forward)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b", "d"}, note.Names(linked))
	assert.Contains(t, f.finder.seen[1], "d")
}

func TestSurfReturnsAcceptedLink(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a"}, key: "ctrl-s"},
		step{pick: []string{"a: docs [url]"}, key: "ctrl-o"},
		step{pick: []string{"a: docs [url]"}, key: keymap.Enter},
	)

	out, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	require.NoError(t, err)

	require.NotNil(t, out.Link)
	assert.Equal(t, "https://example.com", out.Link.Target)
	assert.Equal(t, []string{"https://example.com"}, f.opener.opened)
}

func TestSurfReturnGoesBackToExplore(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a"}, key: "ctrl-s"},
		step{key: "ctrl-b"},
	)

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)
	require.Len(t, f.finder.seen, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, f.finder.seen[2])
}

func TestCheckmarkTogglesNarrowsAndYanks(t *testing.T) {
	f := newFixture(t)
	file := note.FileFor(f.dir, "a")
	f.finder.steps = []step{
		{pick: []string{"[ ] one"}, key: "ctrl-t"},
		{pick: []string{"[x] one"}, key: "alt-n"},
		{pick: []string{"[x] one"}, key: "ctrl-y"},
		{pick: []string{"  [ ] two"}, key: "ctrl-o"},
		{key: "ctrl-b"},
	}

	out, err := NewCheckmarker(f.env).Run(context.Background(), file)
	require.NoError(t, err)
	assert.True(t, out.Return)

	body, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(body), "- [x] one\n  - [ ] two\n- [x] three\n")

	assert.Equal(t, []string{"[x] one", "  [ ] two"}, f.finder.seen[2])
	assert.Equal(t, "- [x] one\n  - [ ] two\n", f.copied)
	assert.Equal(t, []int{6}, f.opener.jumps)
}

func TestStackSelectReplacesExploreList(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a", "c"}, key: "alt-p"},
		step{key: "alt-s"},
		step{pick: []string{"c"}, key: "alt-j"},
		step{pick: []string{"a"}, key: "alt-s"},
	)

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.seen, 5)
	assert.Equal(t, []string{"c", "a"}, f.finder.seen[2])
	assert.Equal(t, []string{"a", "c"}, f.finder.seen[3])
	assert.Equal(t, []string{"a"}, f.finder.seen[4])
}

func TestFinderFailureEndsSession(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("tty lost")
	f.env.Iteration.Finder = finderFunc(func(context.Context, nav.Request) (nav.Result, error) {
		return nav.Result{}, boom
	})

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, boom)
}

type finderFunc func(context.Context, nav.Request) (nav.Result, error)

func (fn finderFunc) Find(ctx context.Context, req nav.Request) (nav.Result, error) {
	return fn(ctx, req)
}

func TestSurfPreviewsLinksSharingALine(t *testing.T) {
	f := newFixture(t, step{key: "ctrl-b"})
	file := note.FileFor(f.dir, "d")
	require.NoError(t, os.WriteFile(file, []byte("[doc](x.md) [doc](y.md)\n"), 0o644))

	out, err := NewSurfer(f.env).Run(context.Background(), []note.Note{note.New("d", file)})
	require.NoError(t, err)
	assert.True(t, out.Return)

	require.Len(t, f.finder.seen, 1)
	assert.Equal(t, []string{"d: doc [broken]", "d: doc [broken]"}, f.finder.seen[0])
	assert.Equal(t, []string{
		"broken link: " + filepath.Join(f.dir, "x.md"),
		"broken link: " + filepath.Join(f.dir, "y.md"),
	}, f.finder.previews[0])
}

func TestSpliceFollowsTheCurrentDirection(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a"}, key: "ctrl-e"},
		step{key: "alt-i"},
		step{pick: []string{"b"}, key: "ctrl-e"},
	)

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{View: preview.LinkTree})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.seen, 4)
	assert.ElementsMatch(t, []string{"a", "b"}, f.finder.seen[1])
	assert.Contains(t, f.finder.headers[2], "backward")
	assert.ElementsMatch(t, []string{"a", "b"}, f.finder.seen[2])
	assert.ElementsMatch(t, []string{"a", "b", "c"}, f.finder.seen[3])
}

func TestForwardAndWidenRepopulateTheList(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a"}, key: "ctrl-f"},
		step{key: "alt-w"},
	)

	_, err := NewExplorer(f.env).Run(context.Background(), []note.Note{note.New("a", note.FileFor(f.dir, "a"))}, ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.seen, 3)
	assert.Equal(t, []string{"a"}, f.finder.seen[0])
	assert.Equal(t, []string{"b"}, f.finder.seen[1])
	assert.Equal(t, []string{"a", "b", "c"}, f.finder.seen[2])
	assert.Zero(t, f.graph.mutations.Load())
}

func TestNarrowKeepsOnlyTheSelection(t *testing.T) {
	f := newFixture(t, step{pick: []string{"a", "c"}, key: "alt-n"})

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.seen, 2)
	assert.Equal(t, []string{"a", "c"}, f.finder.seen[1])
}

func TestUnlistedThresholdAndDirectionCarryOver(t *testing.T) {
	f := newFixture(t,
		step{key: "alt-y"},
		step{key: "alt-y"},
		step{key: "alt-u"},
		step{key: "alt-u"},
		step{key: "alt-i"},
	)
	x := NewExplorer(f.env)
	ctx := context.Background()

	list, out, st, err := x.Next(ctx, f.all(t), ExploreState{View: preview.LinkTree, UnlistedDepth: 1})
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, st.UnlistedDepth)
	assert.Equal(t, constants.GlobalStack, st.Stack)

	_, err = x.Run(ctx, list, st)
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.headers, 6)
	for i, want := range []string{"unlisted 1", "unlisted 0", "unlisted 0", "unlisted 1", "unlisted 2", "unlisted 2"} {
		assert.Contains(t, f.finder.headers[i], want, "iteration %d", i)
	}
	assert.Contains(t, f.finder.headers[4], "forward")
	assert.Contains(t, f.finder.headers[5], "backward")
}

func TestRenameReplacesNoteInList(t *testing.T) {
	f := newFixture(t, step{pick: []string{"b"}, key: "alt-r"})
	f.env.Prompt = fakePrompt{input: "z"}

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.seen, 2)
	assert.Equal(t, []string{"a", "z", "c"}, f.finder.seen[1])
	linked, err := f.graph.Links(context.Background(), "a", note.Forward)
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, note.Names(linked))
}

func TestStackEditsReorderTheNextIteration(t *testing.T) {
	f := newFixture(t,
		step{pick: []string{"a"}, key: "alt-t"},
		step{pick: []string{"a"}, key: "alt-j"},
		step{pick: []string{"b"}, key: "alt-k"},
		step{pick: []string{"c"}, key: "alt-d"},
		step{key: "ctrl-t"},
		step{key: "ctrl-b"},
	)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, f.graph.Push(ctx, "reading", name))
	}

	out, err := NewStacker(f.env).Run(ctx, StackState{Name: "reading", UnlistedDepth: 2})
	require.NoError(t, err)
	assert.True(t, out.Return)

	assert.Equal(t, [][]string{
		{"c", "b", "a"},
		{"a", "c", "b"},
		{"c", "a", "b"},
		{"c", "b", "a"},
		{"b", "a"},
		{"b", "a"},
	}, f.finder.seen)
	assert.Contains(t, f.finder.headers[4], "details")
	assert.Contains(t, f.finder.headers[5], "links forward")

	left, err := f.graph.Stack(ctx, "reading")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, note.Names(left))
}

func TestStackInheritsExploreDirectionAndDepth(t *testing.T) {
	f := newFixture(t,
		step{key: "alt-i"},
		step{key: "alt-s"},
		step{key: "ctrl-b"},
	)
	ctx := context.Background()
	require.NoError(t, f.graph.Push(ctx, constants.GlobalStack, "b"))

	_, err := NewExplorer(f.env).Run(ctx, f.all(t), ExploreState{View: preview.LinkTree})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	require.Len(t, f.finder.seen, 4)
	assert.Equal(t, []string{"b"}, f.finder.seen[2])
	assert.Contains(t, f.finder.headers[2], "links backward")
	assert.Contains(t, f.finder.headers[2], "unlisted 0")

	// b is linked from a and c; at depth zero the url of a stays hidden.
	shown := f.finder.previews[2][0]
	assert.Contains(t, shown, "a")
	assert.Contains(t, shown, "c")
	assert.Contains(t, shown, "1 unlisted links")
	assert.NotContains(t, shown, "docs")
}

// saveFailingGraph refuses to register notes.
type saveFailingGraph struct {
	*countingGraph
}

func (saveFailingGraph) Save(context.Context, note.Note) error {
	return errors.New("disk full")
}

func TestCreateLinkedRemovesFileWhenSaveFails(t *testing.T) {
	f := newFixture(t, step{pick: []string{"a"}, key: "ctrl-n"})
	f.env.Graph = saveFailingGraph{f.graph}
	f.env.Prompt = fakePrompt{input: "d"}

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	assert.Contains(t, f.status.String(), "disk full")
	_, err = os.Stat(note.FileFor(f.dir, "d"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Len(t, f.finder.seen, 2)
	assert.NotContains(t, f.finder.seen[1], "d")
}

func TestCreateLinkedKeepsExistingFileWhenSaveFails(t *testing.T) {
	f := newFixture(t, step{pick: []string{"a"}, key: "ctrl-n"})
	f.env.Graph = saveFailingGraph{f.graph}
	f.env.Prompt = fakePrompt{input: "d"}
	file := note.FileFor(f.dir, "d")
	require.NoError(t, os.WriteFile(file, []byte("# kept\n"), 0o644))

	_, err := NewExplorer(f.env).Run(context.Background(), f.all(t), ExploreState{})
	assert.ErrorIs(t, err, nav.ErrUserAbort)

	body, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "# kept\n", string(body))
}
