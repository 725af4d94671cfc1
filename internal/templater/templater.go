// Package templater renders the initial body of new notes from text
// templates. Templates found in the user template directory shadow the
// built-in ones of the same name.
package templater

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

//go:embed templates
var embeddedTemplates embed.FS

const (
	// DefaultTemplate writes only a title line.
	DefaultTemplate = "note"
	templateExt     = ".tmpl"
)

var ErrUnknownTemplate = errors.New("template not found")

// TemplateData is passed to templates during rendering.
type TemplateData struct {
	Title string
	Date  string
	// Links names the notes that will link to the new note.
	Links []string
}

func NewTemplateData(title string, links []string, now time.Time) TemplateData {
	return TemplateData{Title: title, Date: now.Format(time.DateOnly), Links: links}
}

type Templater struct {
	templates map[string]*template.Template
}

// NewTemplater loads the built-in templates and then every *.tmpl file in
// dir. A missing dir is not an error.
func NewTemplater(dir string) (*Templater, error) {
	t := &Templater{templates: make(map[string]*template.Template)}

	if err := t.load(embeddedTemplates, "templates"); err != nil {
		return nil, err
	}
	if dir == "" {
		return t, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err := t.load(os.DirFS(dir), "."); err != nil {
		return nil, fmt.Errorf("failed to load templates from %s: %w", dir, err)
	}
	return t, nil
}

func (t *Templater) load(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != templateExt {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(d.Name(), templateExt)
		tmpl, err := template.New(name).Option("missingkey=error").Parse(string(data))
		if err != nil {
			return fmt.Errorf("template %s: %w", name, err)
		}
		t.templates[name] = tmpl
		return nil
	})
}

// Names lists the loaded templates, sorted.
func (t *Templater) Names() []string {
	names := make([]string, 0, len(t.templates))
	for name := range t.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute renders the named template.
func (t *Templater) Execute(name string, data TemplateData) (string, error) {
	tmpl, ok := t.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s (available: %s)", ErrUnknownTemplate, name, strings.Join(t.Names(), ", "))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
