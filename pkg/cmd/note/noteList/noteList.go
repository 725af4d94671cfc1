package noteList

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdNoteList(l *cmdpkg.Loader) *cobra.Command {
	var (
		tagsOnly  bool
		namesOnly bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered notes.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			notes, err := s.Store.List(ctx)
			if err != nil {
				return err
			}

			table := uitable.New()
			table.MaxColWidth = 80
			if !namesOnly {
				table.AddRow("NAME", "FILE")
			}
			for _, n := range notes {
				if tagsOnly && !n.IsTag() {
					continue
				}
				switch {
				case namesOnly:
					table.AddRow(n.Name)
				case n.IsTag():
					table.AddRow("#"+n.Name, "-")
				default:
					table.AddRow(n.Name, n.File)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&tagsOnly, "tags", "t", false, "Only list tags.")
	cmd.Flags().BoolVarP(&namesOnly, "names", "1", false, "Print bare names, one per line.")

	return cmd
}
