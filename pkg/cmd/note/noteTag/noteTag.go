package noteTag

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/note"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteTag(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag [name] [note...]",
		Short: "Register a tag and link it to notes.",
		Long:  "A tag is a note without a file. It links to every given note.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			targets, err := cmdpkg.ResolveNotesStrict(ctx, s, args[1:])
			if err != nil {
				return err
			}

			tag := note.Tag(strings.TrimPrefix(args[0], "#"))
			if err := s.Store.Save(ctx, tag); err != nil {
				return err
			}
			for _, n := range targets {
				if err := s.Store.InsertLink(ctx, tag.Name, n.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}

	return cmd
}
