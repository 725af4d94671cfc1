package noteRemove

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteRemove(l *cmdpkg.Loader) *cobra.Command {
	var keepFile bool

	cmd := &cobra.Command{
		Use:     "remove [note...]",
		Aliases: []string{"rm"},
		Short:   "Remove notes with their links and stack entries.",
		Long:    "The note files are moved to the trash directory unless --keep-file is set.",
		Args:    cobra.MinimumNArgs(1),
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
			for _, n := range notes {
				if err := s.Store.Remove(ctx, n.Name); err != nil {
					return err
				}
				if keepFile || n.IsTag() {
					continue
				}
				if err := s.Handler.Trash(n.File); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("trash %s: %w", n.File, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepFile, "keep-file", false, "Leave the note files in place.")

	return cmd
}
