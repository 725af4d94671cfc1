package checkmark

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/session"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdCheckmark(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkmark [note]",
		Aliases: []string{"tasks"},
		Short:   "Toggle the checklist items of a note.",
		Long: heredoc.Doc(`
			Lists the checklist items of a note. Items can be toggled in place,
			narrowed to a subtree, yanked to the clipboard or opened in the
			editor at their line. The items accepted with enter are printed.
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			notes, err := cmdpkg.ResolveNotes(ctx, s, args, "checkmark", false)
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			n := notes[0]
			if n.IsTag() {
				return fmt.Errorf("%s is a tag and has no tasks", n.Name)
			}

			out, err := session.NewCheckmarker(s.Env()).Run(ctx, n.File)
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			cmdpkg.PrintOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}

	return cmd
}
