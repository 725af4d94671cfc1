package noteRename

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/prompt"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteRename(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename [note] [name]",
		Short: "Rename a note, keeping its file and links.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt.ValidateName(args[1]); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			n, err := cmdpkg.ResolveNote(ctx, s, args[0])
			if err != nil {
				return err
			}
			return s.Store.Rename(ctx, n.Name, args[1])
		},
	}

	return cmd
}
