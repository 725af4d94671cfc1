package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/note"
)

type LinkKind int

const (
	URL LinkKind = iota
	File
	Dir
	Broken
	CodeBlock
)

func (k LinkKind) String() string {
	switch k {
	case URL:
		return "url"
	case File:
		return "file"
	case Dir:
		return "dir"
	case Broken:
		return "broken"
	case CodeBlock:
		return "code"
	default:
		return fmt.Sprintf("LinkKind(%d)", int(k))
	}
}

// Link is an outgoing reference found in a note body.
type Link struct {
	Parent      note.Note
	Description string
	Kind        LinkKind
	// Target is the destination as written in the note.
	Target string
	// Path is the resolved destination for File, Dir and Broken links.
	Path   string
	Code   string
	Syntax string
	// Line is the 1-based line of the link in the parent file.
	Line int
	// Offset is the byte offset of the link in the parent file. Together
	// with Kind it tells apart links that share a line and a description.
	Offset  int
	Preview config.CommandTemplate
	Pipe    config.CommandTemplate
}

// Destination is the value substituted for $URL, $FILE or $DIR.
func (l Link) Destination() string {
	switch l.Kind {
	case URL:
		return l.Target
	case CodeBlock:
		return l.Parent.File
	default:
		return l.Path
	}
}

type LinkOptions struct {
	Pattern     *regexp.Regexp
	URLPattern  *regexp.Regexp
	FilePreview config.CommandTemplate
	DirPreview  config.CommandTemplate
	Pipe        config.CommandTemplate
}

// NewLinkOptions compiles the configured patterns. The config is expected to
// be validated already.
func NewLinkOptions(links config.LinksConfig, ext config.ExternalConfig) (LinkOptions, error) {
	pattern, err := regexp.Compile(links.Pattern)
	if err != nil {
		return LinkOptions{}, fmt.Errorf("link pattern: %w", err)
	}
	urlPattern, err := regexp.Compile(links.URLPattern)
	if err != nil {
		return LinkOptions{}, fmt.Errorf("url pattern: %w", err)
	}
	return LinkOptions{
		Pattern:     pattern,
		URLPattern:  urlPattern,
		FilePreview: ext.PreviewFile,
		DirPreview:  ext.PreviewDir,
		Pipe:        ext.PipeSnippet,
	}, nil
}

func DefaultLinkOptions() LinkOptions {
	return LinkOptions{
		Pattern:    regexp.MustCompile(config.DefaultLinkPattern),
		URLPattern: regexp.MustCompile(config.DefaultURLPattern),
	}
}

// Links extracts the references of n from content. The result lists
// reference links followed by fenced code blocks, reversed, so that pushing
// each entry onto a tree from the end restores document order.
func Links(n note.Note, content []byte, opts LinkOptions) []Link {
	if n.IsTag() {
		return nil
	}

	links := append(referenceLinks(n, content, opts), codeLinks(n, content, opts)...)
	slices.Reverse(links)
	return links
}

// ReadLinks reads the note body and extracts its links.
func ReadLinks(n note.Note, opts LinkOptions) ([]Link, error) {
	content, err := n.Read()
	if err != nil {
		return nil, err
	}
	return Links(n, content, opts), nil
}

func referenceLinks(n note.Note, content []byte, opts LinkOptions) []Link {
	re := opts.Pattern
	descIdx := re.SubexpIndex("description")
	urlIdx := re.SubexpIndex("url")
	if descIdx < 0 || urlIdx < 0 {
		return nil
	}

	var links []Link
	for _, m := range re.FindAllSubmatchIndex(content, -1) {
		if m[2*urlIdx] < 0 {
			continue
		}
		target := string(content[m[2*urlIdx]:m[2*urlIdx+1]])
		var description string
		if m[2*descIdx] >= 0 {
			description = string(content[m[2*descIdx]:m[2*descIdx+1]])
		}

		link := Link{
			Parent:      n,
			Description: description,
			Target:      target,
			Line:        lineAt(content, m[0]),
			Offset:      m[0],
		}
		if opts.URLPattern != nil && opts.URLPattern.MatchString(target) {
			link.Kind = URL
		} else {
			link.Path = resolve(n.Dir(), target)
			link.Kind = probe(link.Path)
			switch link.Kind {
			case File:
				link.Preview = opts.FilePreview
			case Dir:
				link.Preview = opts.DirPreview
			}
		}
		links = append(links, link)
	}
	return links
}

func codeLinks(n note.Note, content []byte, opts LinkOptions) []Link {
	doc := goldmark.DefaultParser().Parse(text.NewReader(content))

	var links []Link
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var code bytes.Buffer
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(content))
		}

		description := firstLine(code.String())
		if description == "" {
			description = fmt.Sprintf("snippet[%d]", len(links))
		}

		// An empty fence without info has no segment to point at.
		line, offset := 0, -1-len(links)
		switch {
		case lines.Len() > 0:
			offset = lines.At(0).Start
			line = lineAt(content, offset) - 1
		case block.Info != nil:
			offset = block.Info.Segment.Start
			line = lineAt(content, offset)
		}

		links = append(links, Link{
			Parent:      n,
			Description: description,
			Kind:        CodeBlock,
			Code:        code.String(),
			Syntax:      string(block.Language(content)),
			Line:        line,
			Offset:      offset,
			Pipe:        opts.Pipe,
		})
		return ast.WalkSkipChildren, nil
	})

	return links
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func lineAt(content []byte, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return bytes.Count(content[:offset], []byte("\n")) + 1
}

// resolve turns a written destination into a path relative to base.
func resolve(base, target string) string {
	target, _, _ = strings.Cut(target, "#")
	if strings.HasPrefix(target, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, target[2:])
		}
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(base, target)
}

func probe(path string) LinkKind {
	info, err := os.Stat(path)
	if err != nil {
		return Broken
	}
	if info.IsDir() {
		return Dir
	}
	return File
}
