package note

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Note is a named node of the knowledge graph. A note without a file is a tag.
type Note struct {
	Name string
	File string
}

// Direction selects which edges of a note are followed.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Invert returns the opposite direction.
func (d Direction) Invert() Direction {
	if d == Backward {
		return Forward
	}
	return Backward
}

func New(name, file string) Note {
	return Note{Name: name, File: file}
}

func Tag(name string) Note {
	return Note{Name: name}
}

func (n Note) IsTag() bool {
	return n.File == ""
}

func (n Note) String() string {
	return n.Name
}

// Dir is the directory holding the note file, empty for tags.
func (n Note) Dir() string {
	if n.IsTag() {
		return ""
	}
	return filepath.Dir(n.File)
}

// Read returns the note body. Tags have no body.
func (n Note) Read() ([]byte, error) {
	if n.IsTag() {
		return nil, nil
	}
	return os.ReadFile(n.File)
}

// Create writes a file holding a title line for the note. An existing file
// is left untouched.
func (n Note) Create() error {
	return n.CreateWith(fmt.Sprintf("# %s\n", n.Name))
}

// CreateWith writes body to a new note file. An existing file is left
// untouched.
func (n Note) CreateWith(body string) error {
	if n.IsTag() {
		return nil
	}
	if err := os.MkdirAll(n.Dir(), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(n.File, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileFor returns the markdown path a note named name would live at inside dir.
func FileFor(dir, name string) string {
	name = strings.TrimSuffix(name, ".md")
	return filepath.Join(dir, filepath.FromSlash(name)+".md")
}

// NameFor derives a note name from a markdown file relative to dir.
func NameFor(dir, path string) (string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ".md"), nil
}

func Names(notes []Note) []string {
	names := make([]string, 0, len(notes))
	for _, n := range notes {
		names = append(names, n.Name)
	}
	return names
}

func Sort(notes []Note) {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Name < notes[j].Name
	})
}

// Set is a name keyed collection that remembers insertion order.
type Set struct {
	order []Note
	index map[string]struct{}
}

func NewSet(notes ...Note) *Set {
	s := &Set{index: make(map[string]struct{}, len(notes))}
	for _, n := range notes {
		s.Add(n)
	}
	return s
}

// Add inserts n and reports whether it was not already present.
func (s *Set) Add(n Note) bool {
	if _, ok := s.index[n.Name]; ok {
		return false
	}
	s.index[n.Name] = struct{}{}
	s.order = append(s.order, n)
	return true
}

func (s *Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *Set) Len() int {
	return len(s.order)
}

// Notes returns the members in insertion order.
func (s *Set) Notes() []Note {
	return append([]Note(nil), s.order...)
}
