package snapshot

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdSnapshot(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot [destination]",
		Short: "Export notes, links and stacks as YAML.",
		Long: heredoc.Doc(`
			Writes the whole graph store to a local file or uploads it to S3.
			An s3:///key destination uses the bucket of the snapshot config.
			Region, endpoint and static keys are read from the same section,
			falling back to the default AWS credential chain.

			Examples:
			  mds snapshot graph.yaml
			  mds snapshot s3://backups/mds/graph.yaml
		`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			dest, err := s.Exporter().Export(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("snapshot written to %s\n", dest)
			return nil
		},
	}

	return cmd
}
