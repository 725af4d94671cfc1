// Package external runs the configured commands that open, preview and pipe
// notes and links.
package external

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/parser"
)

var (
	ErrNoTemplate = errors.New("no command configured")
	ErrTag        = errors.New("tag has no file")
	ErrBroken     = errors.New("link target does not exist")
)

// Vars are substituted for $FILE, $DIR, $URL and $LINE. Any other variable
// is read from the environment.
type Vars struct {
	File string
	Dir  string
	URL  string
	Line int
}

func (v Vars) lookup(name string) string {
	switch name {
	case "FILE":
		return v.File
	case "DIR":
		return v.Dir
	case "URL":
		return v.URL
	case "LINE":
		if v.Line <= 0 {
			return "1"
		}
		return strconv.Itoa(v.Line)
	default:
		return os.Getenv(name)
	}
}

// Expand substitutes vars into s.
func Expand(s string, vars Vars) string {
	return os.Expand(s, vars.lookup)
}

// Runner starts external commands built from templates.
type Runner struct {
	Templates config.ExternalConfig
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
}

// New returns a runner attached to the process terminal.
func New(templates config.ExternalConfig, logger *slog.Logger) *Runner {
	return &Runner{
		Templates: templates,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) command(ctx context.Context, t config.CommandTemplate, vars Vars) (*exec.Cmd, bool, error) {
	name := strings.TrimSpace(Expand(t.Exec, vars))
	if name == "" {
		return nil, false, ErrNoTemplate
	}

	args := make([]string, 0, len(t.Args))
	for _, arg := range t.Args {
		args = append(args, Expand(arg, vars))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if t.Silence != nil && *t.Silence {
		cmd.Stdin = nil
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	}

	wait := true
	if t.Wait != nil {
		wait = *t.Wait
	}
	return cmd, wait, nil
}

// Run starts the command for t. When stdin is not nil it replaces the
// runner's input. Commands that do not wait are released once started.
func (r *Runner) Run(ctx context.Context, action string, t config.CommandTemplate, vars Vars, stdin io.Reader) error {
	cmd, wait, err := r.command(ctx, t, vars)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if stdin != nil {
		cmd.Stdin = stdin
	}

	r.logger().Debug("running command",
		slog.String("action", action),
		slog.String("exec", cmd.Path),
		slog.Int("args", len(cmd.Args)-1),
		slog.Bool("wait", wait),
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: failed to start %s: %w", action, cmd.Path, err)
	}
	if !wait {
		if err := cmd.Process.Release(); err != nil {
			return fmt.Errorf("%s: release failed: %w", action, err)
		}
		return nil
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %s failed: %w", action, cmd.Path, err)
	}
	return nil
}

// Output runs t to completion and returns what it wrote to stdout.
func (r *Runner) Output(ctx context.Context, action string, t config.CommandTemplate, vars Vars) (string, error) {
	cmd, _, err := r.command(ctx, t, vars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", action, err)
	}
	var out bytes.Buffer
	cmd.Stdin = nil
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %s failed: %w", action, cmd.Path, err)
	}
	return out.String(), nil
}

func fileVars(file string) Vars {
	return Vars{File: file, Dir: filepath.Dir(file)}
}

// OpenNote opens the note file in the editor.
func (r *Runner) OpenNote(ctx context.Context, n note.Note) error {
	if n.IsTag() {
		return fmt.Errorf("open %s: %w", n.Name, ErrTag)
	}
	return r.Run(ctx, "open_file", r.Templates.OpenFile, fileVars(n.File), nil)
}

// OpenNoteExternal hands the note file to the external opener.
func (r *Runner) OpenNoteExternal(ctx context.Context, n note.Note) error {
	if n.IsTag() {
		return fmt.Errorf("open %s: %w", n.Name, ErrTag)
	}
	return r.Run(ctx, "open_external", r.Templates.OpenExternal, fileVars(n.File), nil)
}

// OpenLink opens the destination of l. Code blocks are piped into the
// snippet command.
func (r *Runner) OpenLink(ctx context.Context, l parser.Link) error {
	switch l.Kind {
	case parser.URL:
		return r.Run(ctx, "open_url", r.Templates.OpenURL, Vars{URL: l.Target}, nil)
	case parser.File:
		return r.Run(ctx, "open_file", r.Templates.OpenFile, fileVars(l.Path), nil)
	case parser.Dir:
		return r.Run(ctx, "open_dir", r.Templates.OpenDir, Vars{Dir: l.Path, File: l.Path}, nil)
	case parser.CodeBlock:
		t := l.Pipe
		if t.IsZero() {
			t = r.Templates.PipeSnippet
		}
		vars := fileVars(l.Parent.File)
		vars.Line = l.Line
		return r.Run(ctx, "pipe_snippet", t, vars, strings.NewReader(l.Code))
	default:
		return fmt.Errorf("open %s: %w", l.Path, ErrBroken)
	}
}

// OpenLinkExternal hands the destination of l to the external opener.
func (r *Runner) OpenLinkExternal(ctx context.Context, l parser.Link) error {
	switch l.Kind {
	case parser.URL:
		return r.Run(ctx, "open_url", r.Templates.OpenURL, Vars{URL: l.Target}, nil)
	case parser.Broken:
		return fmt.Errorf("open %s: %w", l.Path, ErrBroken)
	default:
		dest := l.Destination()
		return r.Run(ctx, "open_external", r.Templates.OpenExternal, fileVars(dest), nil)
	}
}

// Jump opens file in the editor at line.
func (r *Runner) Jump(ctx context.Context, file string, line int) error {
	vars := fileVars(file)
	vars.Line = line
	return r.Run(ctx, "jump", r.Templates.Jump, vars, nil)
}

// Preview captures the preview command output for a file or directory link.
func (r *Runner) Preview(ctx context.Context, l parser.Link) (string, error) {
	t := l.Preview
	switch l.Kind {
	case parser.File:
		if t.IsZero() {
			t = r.Templates.PreviewFile
		}
		return r.Output(ctx, "preview_file", t, fileVars(l.Path))
	case parser.Dir:
		if t.IsZero() {
			t = r.Templates.PreviewDir
		}
		return r.Output(ctx, "preview_dir", t, Vars{Dir: l.Path, File: l.Path})
	default:
		return "", fmt.Errorf("preview %s: unsupported link kind %s", l.Description, l.Kind)
	}
}
