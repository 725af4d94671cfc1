package noteLink

import (
	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteLink(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link [from] [to...]",
		Short: "Link a note to other notes.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			notes, err := cmdpkg.ResolveNotesStrict(ctx, s, args)
			if err != nil {
				return err
			}
			for _, dst := range notes[1:] {
				if err := s.Store.InsertLink(ctx, notes[0].Name, dst.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	return cmd
}
