// Package render holds the terminal rendering resources shared by previews
// and pickers. They are built once per process and passed down.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Paintersrp/mds/internal/graph"
	"github.com/Paintersrp/mds/internal/parser"
)

type Options struct {
	// Width is the word wrap width of rendered markdown.
	Width int
	// Plain disables colour, used when output is not a terminal.
	Plain bool
}

type Resources struct {
	mu        sync.Mutex
	markdown  *glamour.TermRenderer
	formatter chroma.Formatter
	style     *chroma.Style
	plain     bool

	Styles Styles
}

// Styles are the lipgloss styles of tree and list labels.
type Styles struct {
	Note   lipgloss.Style
	Tag    lipgloss.Style
	Link   lipgloss.Style
	Broken lipgloss.Style
	Code   lipgloss.Style
	Done   lipgloss.Style
	Todo   lipgloss.Style
	Hint   lipgloss.Style
	Cycle  lipgloss.Style
	Header lipgloss.Style
	Cursor lipgloss.Style
	Marked lipgloss.Style
	Faint  lipgloss.Style
}

func colourStyles() Styles {
	return Styles{
		Note:   lipgloss.NewStyle().Foreground(lipgloss.Color("#0AF")).Bold(true),
		Tag:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F7A")),
		Link:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")),
		Broken: lipgloss.NewStyle().Foreground(lipgloss.Color("#F55")).Strikethrough(true),
		Code:   lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
		Done:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),
		Todo:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C")),
		Hint:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		Cycle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
		Header: lipgloss.NewStyle().Foreground(lipgloss.Color("#0AF")).Background(lipgloss.Color("#224")).Bold(true).Padding(0, 1),
		Cursor: lipgloss.NewStyle().Foreground(lipgloss.Color("#0AF")).Bold(true),
		Marked: lipgloss.NewStyle().Foreground(lipgloss.Color("#F7A")),
		Faint:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func plainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Note: s, Tag: s, Link: s, Broken: s, Code: s, Done: s, Todo: s,
		Hint: s, Cycle: s, Header: s, Cursor: s, Marked: s, Faint: s,
	}
}

// New builds the markdown renderer, the code highlighter and the label styles.
func New(opts Options) (*Resources, error) {
	width := opts.Width
	if width <= 0 {
		width = 100
	}

	mdOpts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if opts.Plain {
		mdOpts = append(mdOpts, glamour.WithStandardStyle("notty"))
	} else {
		mdOpts = append(mdOpts,
			glamour.WithStandardStyle("dracula"),
			glamour.WithColorProfile(termenv.ANSI256),
		)
	}
	md, err := glamour.NewTermRenderer(mdOpts...)
	if err != nil {
		return nil, fmt.Errorf("render: markdown renderer: %w", err)
	}

	r := &Resources{
		markdown: md,
		plain:    opts.Plain,
		style:    styles.Get("dracula"),
	}
	if opts.Plain {
		r.Styles = plainStyles()
	} else {
		r.Styles = colourStyles()
		r.formatter = formatters.Get("terminal256")
	}
	return r, nil
}

// Markdown renders a markdown document for the terminal.
func (r *Resources) Markdown(src string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.markdown.Render(src)
}

// Code highlights a snippet. Unknown languages fall back to plain text.
func (r *Resources) Code(code, syntax string) (string, error) {
	if r.plain || r.formatter == nil {
		return code, nil
	}

	lexer := lexers.Get(syntax)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("render: tokenise: %w", err)
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, it); err != nil {
		return "", fmt.Errorf("render: format: %w", err)
	}
	return buf.String(), nil
}

// Label styles a tree node.
func (r *Resources) Label(n *graph.Node) string {
	s := r.Styles
	switch n.Kind {
	case graph.NoteNode:
		if n.Note.IsTag() {
			return s.Tag.Render("#" + n.Note.Name)
		}
		return s.Note.Render(n.Note.Name)
	case graph.LinkNode:
		return r.LinkLabel(n.Link)
	case graph.TaskNode:
		return r.TaskLabel(n.Task)
	case graph.HintNode:
		return s.Hint.Render(graph.PlainLabel(n))
	case graph.CycleNode:
		return s.Cycle.Render("↻ " + n.Note.Name)
	default:
		return ""
	}
}

func (r *Resources) LinkLabel(l parser.Link) string {
	s := r.Styles
	switch l.Kind {
	case parser.Broken:
		return s.Broken.Render(l.Description) + s.Faint.Render(" ("+l.Target+")")
	case parser.CodeBlock:
		syntax := l.Syntax
		if syntax == "" {
			syntax = "text"
		}
		return s.Code.Render(l.Description) + s.Faint.Render(" ["+syntax+"]")
	default:
		return s.Link.Render(l.Description) + s.Faint.Render(" ["+l.Kind.String()+"]")
	}
}

func (r *Resources) TaskLabel(t parser.TaskItem) string {
	if t.Completed {
		return r.Styles.Done.Render(t.Rendered)
	}
	return r.Styles.Todo.Render(t.Rendered)
}

// Tree renders a display tree with styled labels.
func (r *Resources) Tree(root *graph.Node) string {
	return strings.TrimRight(graph.Render(root, r.Label), "\n")
}
