package surf

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/graph"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/session"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdSurf(l *cmdpkg.Loader) *cobra.Command {
	var reachable bool

	cmd := &cobra.Command{
		Use:   "surf [note...]",
		Short: "Browse the links written in notes.",
		Long: heredoc.Doc(`
			Lists the urls, files, directories and code blocks referenced by the
			given notes. Without arguments the notes are picked interactively.
			With --reachable every note reachable from them is included.
			The link accepted with enter is printed.
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			notes, err := cmdpkg.ResolveNotes(ctx, s, args, "surf links of", true)
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			if reachable {
				if notes, err = graph.Reachable(ctx, s.Store, note.Forward, notes...); err != nil {
					return err
				}
			}

			out, err := session.NewSurfer(s.Env()).Run(ctx, notes)
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			cmdpkg.PrintOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&reachable, "reachable", "r", false, "Include every note reachable from the given ones.")

	return cmd
}
