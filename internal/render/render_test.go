package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/Paintersrp/mds/internal/graph"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

func plainResources(t *testing.T) *Resources {
	t.Helper()
	r, err := New(Options{Width: 80, Plain: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return r
}

func TestMarkdownIsSafeForConcurrentUse(t *testing.T) {
	r := plainResources(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Markdown("# Title\n\nbody text\n")
			if err != nil {
				t.Errorf("Markdown returned error: %v", err)
				return
			}
			if !strings.Contains(out, "body text") {
				t.Errorf("expected body in output, got %q", out)
			}
		}()
	}
	wg.Wait()
}

func TestCodeInPlainModeIsUnchanged(t *testing.T) {
	r := plainResources(t)
	out, err := r.Code("echo hi\n", "sh")
	if err != nil {
		t.Fatalf("Code returned error: %v", err)
	}
	if out != "echo hi\n" {
		t.Fatalf("expected plain code, got %q", out)
	}
}

func TestCodeHighlightsWithUnknownSyntax(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	out, err := r.Code("plain words\n", "no-such-language")
	if err != nil {
		t.Fatalf("Code returned error: %v", err)
	}
	if !strings.Contains(out, "plain") {
		t.Fatalf("expected code text in output, got %q", out)
	}
}

func TestTreeLabelsEveryKind(t *testing.T) {
	r := plainResources(t)
	root := &graph.Node{
		Kind: graph.NoteNode,
		Note: note.New("root", "/root.md"),
		Children: []*graph.Node{
			{Kind: graph.NoteNode, Note: note.Tag("topic")},
			{Kind: graph.LinkNode, Link: parser.Link{Description: "gone", Kind: parser.Broken, Target: "x.md"}},
			{Kind: graph.LinkNode, Link: parser.Link{Description: "snippet[0]", Kind: parser.CodeBlock}},
			{Kind: graph.TaskNode, Task: parser.TaskItem{Rendered: "[x] done", Completed: true}},
			{Kind: graph.HintNode, Hidden: 3, Noun: "links"},
			{Kind: graph.CycleNode, Note: note.Tag("root")},
		},
	}

	out := r.Tree(root)
	for _, want := range []string{"root", "#topic", "gone (x.md)", "snippet[0] [text]", "[x] done", "3 unlisted links", "↻ root"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in tree:\n%s", want, out)
		}
	}
}
