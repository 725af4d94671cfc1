package stackPush

import (
	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdStackPush(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push [note...]",
		Short: "Push notes on top of a stack.",
		Long: "Pushes the given notes, or the picked ones, in order so the last one ends on top. " +
			"A note already on the stack moves to the top.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}
			name, err := cmd.Flags().GetString("stack")
			if err != nil {
				return err
			}

			notes, err := cmdpkg.ResolveNotes(ctx, s, args, "push to "+name, true)
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			for _, n := range notes {
				if err := s.Store.Push(ctx, name, n.Name); err != nil {
					return err
				}
			}
			cmd.Printf("pushed %d note(s) to %s\n", len(notes), name)
			return nil
		},
	}

	return cmd
}
