package templater

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedDay = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

func TestBuiltinTemplates(t *testing.T) {
	tmpl, err := NewTemplater("")
	if err != nil {
		t.Fatalf("NewTemplater returned error: %v", err)
	}

	got, err := tmpl.Execute(DefaultTemplate, NewTemplateData("inbox", nil, fixedDay))
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if got != "# inbox\n" {
		t.Fatalf("unexpected default body %q", got)
	}

	got, err = tmpl.Execute("zet", NewTemplateData("idea", []string{"a", "b"}, fixedDay))
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	for _, want := range []string{"# idea", "created: 2024-03-09", "up: [[a]], [[b]]"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestUserTemplatesShadowBuiltins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.tmpl"), []byte("title: {{.Title}}\n"), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meeting.tmpl"), []byte("# {{.Title}} ({{.Date}})\n"), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tmpl, err := NewTemplater(dir)
	if err != nil {
		t.Fatalf("NewTemplater returned error: %v", err)
	}

	got, _ := tmpl.Execute("note", NewTemplateData("x", nil, fixedDay))
	if got != "title: x\n" {
		t.Fatalf("expected user template to win, got %q", got)
	}
	got, _ = tmpl.Execute("meeting", NewTemplateData("sync", nil, fixedDay))
	if got != "# sync (2024-03-09)\n" {
		t.Fatalf("unexpected user template body %q", got)
	}
	if names := strings.Join(tmpl.Names(), ","); names != "day,meeting,note,zet" {
		t.Fatalf("unexpected template names %q", names)
	}
}

func TestExecuteUnknownTemplate(t *testing.T) {
	tmpl, err := NewTemplater(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("NewTemplater returned error: %v", err)
	}
	if _, err := tmpl.Execute("nope", TemplateData{}); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestBrokenUserTemplateFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.tmpl"), []byte("{{.Title"), 0o644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	if _, err := NewTemplater(dir); err == nil {
		t.Fatal("expected a parse error")
	}
}
