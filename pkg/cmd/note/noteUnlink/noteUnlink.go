package noteUnlink

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/note"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteUnlink(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlink [from] [to...]",
		Short: "Remove links of a note.",
		Long:  "Removes the links from the first note to the others. Without targets they are picked.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			src, err := cmdpkg.ResolveNote(ctx, s, args[0])
			if err != nil {
				return err
			}

			var targets []note.Note
			if len(args) > 1 {
				targets, err = cmdpkg.ResolveNotesStrict(ctx, s, args[1:])
			} else {
				var linked []note.Note
				if linked, err = s.Store.Links(ctx, src.Name, note.Forward); err == nil {
					targets, err = s.Picker.PickNotes(ctx, "unlink from "+src.Name, linked, true)
				}
			}
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}

			for _, dst := range targets {
				if err := s.Store.RemoveLink(ctx, src.Name, dst.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	return cmd
}
