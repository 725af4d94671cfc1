package explore

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/constants"
	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/preview"
	"github.com/Paintersrp/mds/internal/session"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdExplore(l *cmdpkg.Loader) *cobra.Command {
	var (
		view     string
		backward bool
		depth    int
		stack    string
	)

	cmd := &cobra.Command{
		Use:     "explore [note...]",
		Aliases: []string{"x"},
		Short:   "Navigate the note graph interactively.",
		Long: heredoc.Doc(`
			Starts an explore session on the given notes, or on every note when
			none are given. Bound keys link, unlink, rename and remove notes,
			follow links in either direction and switch to the surf, checkmark
			and stack modes. The notes accepted with enter are printed.

			Examples:
			  mds explore
			  mds explore inbox projects/mds --view links
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			v, err := preview.ParseView(view)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = s.Config.Tree.UnlistedDepth
			}

			var list []note.Note
			if len(args) > 0 {
				list, err = cmdpkg.ResolveNotes(ctx, s, args, "", true)
			} else {
				list, err = s.Store.List(ctx)
			}
			if err != nil {
				return err
			}

			st := session.ExploreState{View: v, UnlistedDepth: depth, Stack: stack}
			if backward {
				st.Direction = note.Backward
			}

			out, err := session.NewExplorer(s.Env()).Run(ctx, list, st)
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			cmdpkg.PrintOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", preview.Details.String(), "Initial preview: details, links or tasks.")
	cmd.Flags().BoolVarP(&backward, "backward", "b", false, "Show link and task trees along backlinks.")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Depth from which tree content is collapsed.")
	cmd.Flags().StringVar(&stack, "stack", constants.GlobalStack, "Stack used by push and switch actions.")

	return cmd
}
