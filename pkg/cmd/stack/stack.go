package stack

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/constants"
	"github.com/Paintersrp/mds/internal/preview"
	"github.com/Paintersrp/mds/internal/session"
	"github.com/Paintersrp/mds/internal/state"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
	"github.com/Paintersrp/mds/pkg/cmd/stack/stackPush"
)

func NewCmdStack(l *cmdpkg.Loader) *cobra.Command {
	var (
		name string
		view string
	)

	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Work through a named stack of notes.",
		Long: heredoc.Doc(`
			Shows the notes of a stack, top first. Notes can be popped, moved to
			the top or swapped with their neighbours. Without --stack the stack
			is chosen among the existing ones. The notes accepted with enter
			are printed.

			Examples:
			  mds stack
			  mds stack --stack reading
			  mds stack push inbox --stack reading
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			v, err := preview.ParseView(view)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("stack") {
				if name, err = chooseStack(ctx, s); err != nil {
					return cmdpkg.Finish(cmd, err)
				}
			}

			out, err := session.NewStacker(s.Env()).Run(ctx, session.StackState{
				Name:          name,
				View:          v,
				UnlistedDepth: s.Config.Tree.UnlistedDepth,
			})
			if err != nil {
				return cmdpkg.Finish(cmd, err)
			}
			cmdpkg.PrintOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&name, "stack", "s", constants.GlobalStack, "Name of the stack.")
	cmd.Flags().StringVar(&view, "view", preview.LinkTree.String(), "Initial preview: details, links or tasks.")

	cmd.AddCommand(stackPush.NewCmdStackPush(l))

	return cmd
}

func chooseStack(ctx context.Context, s *state.State) (string, error) {
	stacks, err := s.Store.Stacks(ctx)
	if err != nil {
		return "", err
	}
	if len(stacks) == 0 {
		return constants.GlobalStack, nil
	}
	return s.Prompt.Choose("stack", stacks)
}
