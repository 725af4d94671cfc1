package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/mds/internal/keymap"
	"github.com/Paintersrp/mds/internal/nav"
	"github.com/Paintersrp/mds/internal/note"
)

func ranked(name string, rank int) nav.Item {
	it := nav.NewNoteItem(note.Tag(name))
	it.Rank = rank
	it.Preview = "preview " + name
	return it
}

func update(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		if m, ok = next.(model); !ok {
			t.Fatalf("unexpected model type %T", next)
		}
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func names(items []nav.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID())
	}
	return out
}

func TestItemsAreOrderedByRankWhateverTheArrivalOrder(t *testing.T) {
	m := newModel(nav.Request{})
	m = update(t, m,
		itemMsg(ranked("gamma", 2)),
		itemMsg(ranked("alpha", 0)),
		itemMsg(ranked("beta", 1)),
		doneMsg{},
	)

	if got := names(m.items); len(got) != 3 || got[0] != "alpha" || got[1] != "beta" || got[2] != "gamma" {
		t.Fatalf("unexpected order %v", got)
	}
	if m.loading {
		t.Fatal("expected loading to end after doneMsg")
	}
}

func TestCursorStaysOnItemWhileStreaming(t *testing.T) {
	m := newModel(nav.Request{})
	m = update(t, m,
		itemMsg(ranked("b", 1)),
		itemMsg(ranked("c", 2)),
		tea.KeyMsg{Type: tea.KeyUp},
		itemMsg(ranked("a", 0)),
	)

	it, ok := m.current()
	if !ok || it.ID() != "c" {
		t.Fatalf("expected cursor to stay on c, got %v", it.ID())
	}
	if m.shown != "c" {
		t.Fatalf("expected the preview of c to be shown, got %q", m.shown)
	}
}

func TestTypingFiltersFuzzily(t *testing.T) {
	m := newModel(nav.Request{})
	m = update(t, m,
		itemMsg(ranked("project-alpha", 0)),
		itemMsg(ranked("journal", 1)),
		itemMsg(ranked("pr-review", 2)),
		runes("pra"),
	)

	if len(m.matches) != 1 || m.items[m.matches[0].Index].ID() != "project-alpha" {
		t.Fatalf("unexpected matches %+v", m.matches)
	}
}

func TestExpectedChordTerminatesWithSelection(t *testing.T) {
	m := newModel(nav.Request{Expect: []keymap.Chord{"ctrl-o", "alt-d"}})
	m = update(t, m,
		itemMsg(ranked("a", 0)),
		itemMsg(ranked("b", 1)),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}, Alt: true},
	)

	if m.result == nil {
		t.Fatal("expected a result")
	}
	if m.result.Key != "alt-d" {
		t.Fatalf("expected alt-d, got %q", m.result.Key)
	}
	if got := names(m.result.Selected); len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestBoundChordWinsOverEditingKeys(t *testing.T) {
	m := newModel(nav.Request{Expect: []keymap.Chord{"ctrl-e"}})
	m = update(t, m, itemMsg(ranked("a", 0)), tea.KeyMsg{Type: tea.KeyCtrlE})

	if m.result == nil || m.result.Key != "ctrl-e" {
		t.Fatalf("expected ctrl-e to terminate, got %+v", m.result)
	}
}

func TestMultiSelectReturnsMarkedInListOrder(t *testing.T) {
	m := newModel(nav.Request{Multi: true})
	m = update(t, m,
		itemMsg(ranked("a", 0)),
		itemMsg(ranked("b", 1)),
		itemMsg(ranked("c", 2)),
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	if m.result == nil || m.result.Key != keymap.Enter {
		t.Fatalf("expected enter result, got %+v", m.result)
	}
	if got := names(m.result.Selected); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected selection %v", got)
	}
}

func TestEscapeAborts(t *testing.T) {
	m := newModel(nav.Request{})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.aborted || m.result != nil {
		t.Fatal("expected escape to abort without a result")
	}
}

func TestViewRendersHeaderAndCount(t *testing.T) {
	m := newModel(nav.Request{Header: "explore | details"})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20}, itemMsg(ranked("a", 0)))

	view := m.View()
	for _, want := range []string{"explore | details", "1/1", "a"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestUnboundChordFallsThroughToInput(t *testing.T) {
	m := newModel(nav.Request{Expect: []keymap.Chord{"alt-d"}})
	m = update(t, m, itemMsg(ranked("a", 0)), tea.KeyMsg{Type: tea.KeyCtrlO})

	if m.result != nil || m.aborted {
		t.Fatalf("expected ctrl-o to be ignored, got %+v", m.result)
	}
}

func TestViewRendersBindingHint(t *testing.T) {
	m := newModel(nav.Request{Header: "surf", Hint: "ctrl-b return  ctrl-o open"})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 20}, itemMsg(ranked("a", 0)))

	view := m.View()
	if !strings.Contains(view, "ctrl-b return  ctrl-o open") {
		t.Fatalf("expected the hint in view:\n%s", view)
	}
	if got := m.listHeight(); got != 16 {
		t.Fatalf("expected the hint to take a list row, got height %d", got)
	}
}
