package parser

import (
	"os"
	"path/filepath"
	"testing"
)

const checklistFixture = "- [x] A\n- [ ] B\n  - [x] C\n    - [x] D\n      - [x] E\n  - [ ] F\n- [ ] G\n  - [ ] H\n"

func TestTasksParsesChecklistFixture(t *testing.T) {
	items := Tasks("fixture.md", []byte(checklistFixture))
	if len(items) != 8 {
		t.Fatalf("expected 8 items, got %d", len(items))
	}

	levels := []int{0, 0, 1, 2, 3, 1, 0, 1}
	completed := []bool{true, false, true, true, true, false, false, false}
	titles := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for i, item := range items {
		if item.Level != levels[i] {
			t.Fatalf("item %d: expected level %d, got %d", i, levels[i], item.Level)
		}
		if item.Completed != completed[i] {
			t.Fatalf("item %d: expected completed %v, got %v", i, completed[i], item.Completed)
		}
		if item.Title != titles[i] {
			t.Fatalf("item %d: expected title %q, got %q", i, titles[i], item.Title)
		}
		if item.Self != i {
			t.Fatalf("item %d: expected self index %d, got %d", i, i, item.Self)
		}
		if item.Line != i+1 {
			t.Fatalf("item %d: expected line %d, got %d", i, i+1, item.Line)
		}
	}

	if items[4].Next != 0 {
		t.Fatalf("expected E to have no next index, got %d", items[4].Next)
	}
	if items[4].End() != 5 {
		t.Fatalf("expected E subtree to end at 5, got %d", items[4].End())
	}

	wantNext := map[int]int{1: 6, 2: 5, 3: 5, 6: 8}
	for i, item := range items {
		if item.Next != wantNext[i] {
			t.Fatalf("item %d: expected next %d, got %d", i, wantNext[i], item.Next)
		}
	}
}

func TestTasksRecordsCheckboxRange(t *testing.T) {
	content := []byte(checklistFixture)
	for _, item := range Tasks("fixture.md", content) {
		glyph := content[item.Check[0]:item.Check[1]]
		want := " "
		if item.Completed {
			want = "x"
		}
		if string(glyph) != want {
			t.Fatalf("item %q: expected glyph %q, got %q", item.Title, want, glyph)
		}
	}
}

func TestTasksIgnoresSurroundingStructure(t *testing.T) {
	content := []byte("# Heading\n\nparagraph\n   - [ ] odd indent\n  - [x] nested without parent\n```\n- [ ] inside code\n```\n")
	items := Tasks("loose.md", content)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "nested without parent" || items[0].Level != 1 {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].Title != "inside code" {
		t.Fatalf("expected line inside fence to be recognised, got %+v", items[1])
	}
}

func TestToggleTasksTwiceRestoresContent(t *testing.T) {
	content := []byte(checklistFixture)
	items := Tasks("fixture.md", content)
	selected := []TaskItem{items[1], items[4], items[7]}

	once, err := ToggleTasks(content, selected)
	if err != nil {
		t.Fatalf("ToggleTasks returned error: %v", err)
	}
	if len(once) != len(content) {
		t.Fatalf("toggling changed the content length")
	}
	for i := range content {
		changed := once[i] != content[i]
		expected := i == items[1].Check[0] || i == items[4].Check[0] || i == items[7].Check[0]
		if changed != expected {
			t.Fatalf("byte %d: changed=%v expected=%v", i, changed, expected)
		}
	}

	twice, err := ToggleTasks(once, selected)
	if err != nil {
		t.Fatalf("ToggleTasks returned error: %v", err)
	}
	if string(twice) != checklistFixture {
		t.Fatalf("expected original content after two toggles, got %q", twice)
	}
}

func TestToggleRewritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todo.md")
	if err := os.WriteFile(path, []byte(checklistFixture), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	items, _, err := ReadTasks(path)
	if err != nil {
		t.Fatalf("ReadTasks returned error: %v", err)
	}

	updated, err := Toggle(path, items[:1])
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if updated[0].Completed {
		t.Fatalf("expected first item to be unchecked after toggle")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data[:7]) != "- [ ] A" {
		t.Fatalf("unexpected file head %q", data[:7])
	}
}

func TestGroupTasksFlattenRoundTrip(t *testing.T) {
	items := Tasks("fixture.md", []byte(checklistFixture))
	forest := GroupTasks(items)

	if len(forest) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(forest))
	}
	if len(forest[1].Children) != 2 {
		t.Fatalf("expected B to have 2 children, got %d", len(forest[1].Children))
	}
	if forest[1].Children[0].Children[0].Children[0].Item.Title != "E" {
		t.Fatalf("expected E nested under D")
	}

	flat := FlattenTasks(forest)
	if len(flat) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(flat))
	}
	for i := range items {
		if flat[i].Self != items[i].Self {
			t.Fatalf("position %d: expected item %d, got %d", i, items[i].Self, flat[i].Self)
		}
	}
}

func TestGroupTasksShallowerAfterDeeper(t *testing.T) {
	items := Tasks("jagged.md", []byte("- [ ] root\n    - [ ] deep\n  - [ ] mid\n"))
	forest := GroupTasks(items)
	if len(forest) != 1 || len(forest[0].Children) != 2 {
		t.Fatalf("expected root with two children, got %+v", forest)
	}
}

func TestSourceSpansSubtree(t *testing.T) {
	content := []byte(checklistFixture)
	items := Tasks("fixture.md", content)

	got := Source(content, items, items[1].Self, items[1].End())
	want := "- [ ] B\n  - [x] C\n    - [x] D\n      - [x] E\n  - [ ] F\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
