package cmd

import (
	"fmt"
	"io"

	"github.com/Paintersrp/mds/internal/session"
)

// PrintOutcome writes what a session returned: note names, a link
// destination or task lines, one per line.
func PrintOutcome(w io.Writer, out *session.Outcome) {
	if out == nil || out.Return {
		return
	}
	if out.Link != nil {
		fmt.Fprintln(w, out.Link.Destination())
		return
	}
	for _, t := range out.Tasks {
		fmt.Fprintf(w, "%s:%d: %s\n", t.File, t.Line, t.Rendered)
	}
	for _, n := range out.Notes {
		fmt.Fprintln(w, n.Name)
	}
}
