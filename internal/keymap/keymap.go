// Package keymap validates chord bindings and resolves chords to actions.
package keymap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Chord is a key combination in config syntax, "ctrl-<char>" or "alt-<char>".
type Chord string

// Built in chords. They are never looked up in a table.
const (
	Enter Chord = "enter"
	Abort Chord = "ctrl-c"
)

// reserved chords already mean something to the terminal or the picker.
var reserved = map[Chord]string{
	"ctrl-c": "abort",
	"ctrl-m": "enter",
	"ctrl-i": "tab",
	"ctrl-[": "escape",
	"ctrl-h": "backspace",
}

// ParseChord validates s. Only a modifier and a single printable character
// are accepted.
func ParseChord(s string) (Chord, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	mod, key, ok := strings.Cut(s, "-")
	if !ok || (mod != "ctrl" && mod != "alt") {
		return "", fmt.Errorf("chord %q: expected ctrl-<char> or alt-<char>", s)
	}
	if len([]rune(key)) != 1 {
		return "", fmt.Errorf("chord %q: expected a single character after %s-", s, mod)
	}
	r := []rune(key)[0]
	if r <= ' ' || r > '~' {
		return "", fmt.Errorf("chord %q: %q is not a printable character", s, r)
	}
	c := Chord(s)
	if what, ok := reserved[c]; ok {
		return "", fmt.Errorf("chord %q is reserved for %s", s, what)
	}
	return c, nil
}

// FromKey converts a terminal key event name, "ctrl+o", to a chord.
func FromKey(key string) Chord {
	if key == "enter" {
		return Enter
	}
	return Chord(strings.Replace(key, "+", "-", 1))
}

// ConfigError reports an invalid binding table. It is raised when the
// table is built, before any session starts.
type ConfigError struct {
	Mode   string
	Action string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("keymap %s: %v", e.Mode, e.Err)
	}
	return fmt.Sprintf("keymap %s: action %q: %v", e.Mode, e.Action, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Table is an injective binding of chords to the actions of one mode.
type Table[A ~string] struct {
	mode    string
	byChord map[Chord]A
}

// Build validates bindings, a map of action name to chord, against the
// actions known to mode. Unknown actions, malformed chords and two actions
// sharing a chord are errors.
func Build[A ~string](mode string, known []A, bindings map[string]string) (*Table[A], error) {
	valid := make(map[A]bool, len(known))
	for _, a := range known {
		valid[a] = true
	}

	t := &Table[A]{
		mode:    mode,
		byChord: make(map[Chord]A, len(bindings)),
	}

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		action := A(name)
		if !valid[action] {
			return nil, &ConfigError{Mode: mode, Action: name, Err: errors.New("unknown action")}
		}
		chord, err := ParseChord(bindings[name])
		if err != nil {
			return nil, &ConfigError{Mode: mode, Action: name, Err: err}
		}
		if other, taken := t.byChord[chord]; taken {
			return nil, &ConfigError{
				Mode:   mode,
				Action: name,
				Err:    fmt.Errorf("chord %q is already bound to %q", chord, other),
			}
		}
		t.byChord[chord] = action
	}

	return t, nil
}

func (t *Table[A]) Mode() string {
	return t.mode
}

// Resolve returns the action bound to chord.
func (t *Table[A]) Resolve(chord Chord) (A, bool) {
	a, ok := t.byChord[chord]
	return a, ok
}

// Chords lists the bound chords in sorted order.
func (t *Table[A]) Chords() []Chord {
	chords := make([]Chord, 0, len(t.byChord))
	for c := range t.byChord {
		chords = append(chords, c)
	}
	sort.Slice(chords, func(i, j int) bool { return chords[i] < chords[j] })
	return chords
}

// Binding is one row of a table listing.
type Binding struct {
	Chord  Chord
	Action string
}

// Bindings lists the table sorted by chord.
func (t *Table[A]) Bindings() []Binding {
	out := make([]Binding, 0, len(t.byChord))
	for _, c := range t.Chords() {
		out = append(out, Binding{Chord: c, Action: string(t.byChord[c])})
	}
	return out
}
