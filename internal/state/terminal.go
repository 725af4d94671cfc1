package state

import (
	"os"

	"golang.org/x/term"
)

const (
	minPreviewWidth     = 40
	defaultPreviewWidth = 80
)

func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PreviewWidth is the wrap width of previews shown beside the picker list.
func PreviewWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultPreviewWidth
	}
	return max(w/2-4, minPreviewWidth)
}
