// Package prompt asks single questions on the terminal between picker runs.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erikgeiser/promptkit"
	"github.com/erikgeiser/promptkit/confirmation"
	"github.com/erikgeiser/promptkit/selection"
	"github.com/erikgeiser/promptkit/textinput"

	"github.com/Paintersrp/mds/internal/nav"
)

var ErrInvalidName = errors.New("invalid note name")

type Terminal struct{}

func New() *Terminal {
	return &Terminal{}
}

// Input reads a note name, starting from initial.
func (Terminal) Input(label, initial string) (string, error) {
	input := textinput.New(label)
	input.InitialValue = initial
	input.Placeholder = "note name"
	input.Validate = ValidateName

	name, err := input.RunPrompt()
	if err != nil {
		return "", mapErr(err)
	}
	return strings.TrimSpace(name), nil
}

func (Terminal) Confirm(label string) (bool, error) {
	ok, err := confirmation.New(label, confirmation.No).RunPrompt()
	if err != nil {
		return false, mapErr(err)
	}
	return ok, nil
}

// Choose picks one of choices. A single choice is returned without asking.
func (Terminal) Choose(label string, choices []string) (string, error) {
	switch len(choices) {
	case 0:
		return "", nav.ErrNoSelection
	case 1:
		return choices[0], nil
	}

	sel := selection.New(label, choices)
	sel.FilterPrompt = "Filter:"
	sel.PageSize = 10

	choice, err := sel.RunPrompt()
	if err != nil {
		return "", mapErr(err)
	}
	return choice, nil
}

// ValidateName rejects names that would escape the notes dir or map to an
// empty file name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return fmt.Errorf("%w: %q has a leading or trailing slash", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: %q has an empty or relative segment", ErrInvalidName, name)
		}
	}
	return nil
}

func mapErr(err error) error {
	if errors.Is(err, promptkit.ErrAborted) {
		return nav.ErrUserAbort
	}
	return fmt.Errorf("prompt: %w", err)
}
