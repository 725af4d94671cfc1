package keys

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

var modeOrder = []string{"explore", "surf", "checkmark", "stack"}

func NewCmdKeys(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys [mode]",
		Short: "Print the resolved key bindings of each mode.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := l.State(cmd.Context())
			if err != nil {
				return err
			}

			modes := s.Keys.Modes()
			order := modeOrder
			if len(args) == 1 {
				if _, ok := modes[args[0]]; !ok {
					return fmt.Errorf("unknown mode %q", args[0])
				}
				order = []string{args[0]}
			}

			table := uitable.New()
			table.AddRow("MODE", "KEY", "ACTION")
			for _, mode := range order {
				for _, b := range modes[mode] {
					table.AddRow(mode, string(b.Chord), b.Action)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	return cmd
}
