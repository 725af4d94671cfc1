package vaultSync

import (
	"context"
	"errors"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/vault"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdVaultSync(l *cmdpkg.Loader) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Register the markdown files of the notes directory.",
		Long: heredoc.Doc(`
			Every markdown file of the notes directory that no note points at is
			registered under its relative path without the .md suffix. Notes
			whose file was deleted are removed. Hidden directories and the
			trash are skipped.

			With --watch the command keeps running and syncs after files are
			created, removed or renamed.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := l.State(ctx)
			if err != nil {
				return err
			}

			report, err := s.Syncer.Sync(ctx)
			if err != nil {
				return err
			}
			printReport(cmd, report)

			if !watch {
				return nil
			}

			w, err := vault.NewWatcher(s.Syncer)
			if err != nil {
				return err
			}
			defer w.Close()
			w.OnSync(func(r vault.Report) {
				if len(r.Added)+len(r.Removed) > 0 {
					printReport(cmd, r)
				}
			})

			cmd.Printf("watching %s\n", s.Config.NotesDir)
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep syncing as files change.")

	return cmd
}

func printReport(cmd *cobra.Command, r vault.Report) {
	cmd.Println(r.String())
	if len(r.Added) > 0 {
		cmd.Println("  added:   " + strings.Join(r.Added, ", "))
	}
	if len(r.Removed) > 0 {
		cmd.Println("  removed: " + strings.Join(r.Removed, ", "))
	}
}
