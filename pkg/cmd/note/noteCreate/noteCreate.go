package noteCreate

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/prompt"
	"github.com/Paintersrp/mds/internal/templater"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteCreate(l *cmdpkg.Loader) *cobra.Command {
	var (
		from []string
		tmpl string
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a note file and register it.",
		Long: "Creates <notes_dir>/<name>.md from --template unless it exists, registers the note " +
			"and links every --from note to it. Templates are read from templates/*.tmpl " +
			"beside the config file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt.ValidateName(args[0]); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			sources, err := cmdpkg.ResolveNotesStrict(ctx, s, from)
			if err != nil {
				return err
			}

			body, err := s.Templates.Execute(tmpl, templater.NewTemplateData(args[0], note.Names(sources), time.Now()))
			if err != nil {
				return err
			}

			n := note.New(args[0], note.FileFor(s.Config.NotesDir, args[0]))
			if err := n.CreateWith(body); err != nil {
				return err
			}
			if err := s.Store.Save(ctx, n); err != nil {
				return err
			}
			for _, src := range sources {
				if err := s.Store.InsertLink(ctx, src.Name, n.Name); err != nil {
					return err
				}
			}

			cmd.Println(n.File)
			return nil
		},
	}

	cmd.Flags().StringVarP(&tmpl, "template", "t", templater.DefaultTemplate, "Template for the body of the new file.")
	cmd.Flags().StringSliceVarP(&from, "from", "f", nil, "Notes that link to the new note.")

	return cmd
}
