package notePrint

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/note"
	"github.com/Paintersrp/mds/internal/preview"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNotePrint(l *cmdpkg.Loader) *cobra.Command {
	var (
		tasks    bool
		backward bool
		details  bool
		depth    int
	)

	cmd := &cobra.Command{
		Use:   "print [note]",
		Short: "Print the link or task tree of a note.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			n, err := cmdpkg.ResolveNote(ctx, s, args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("depth") {
				depth = s.Config.Tree.UnlistedDepth
			}

			kind := preview.Kind{View: preview.LinkTree}
			switch {
			case details:
				kind.View = preview.Details
			case tasks:
				kind.View = preview.TaskTree
			}
			if backward {
				kind.Direction = note.Backward
			}

			out, err := s.Env().Previews.WithDepth(depth).Render(ctx, n, kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&tasks, "tasks", "t", false, "Print checklist items instead of links.")
	cmd.Flags().BoolVarP(&backward, "backward", "b", false, "Follow backlinks.")
	cmd.Flags().BoolVar(&details, "details", false, "Print the details table.")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Depth from which content is collapsed.")

	return cmd
}
