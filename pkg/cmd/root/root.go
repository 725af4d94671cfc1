package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/mds/internal/constants"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
	"github.com/Paintersrp/mds/pkg/cmd/checkmark"
	"github.com/Paintersrp/mds/pkg/cmd/explore"
	"github.com/Paintersrp/mds/pkg/cmd/keys"
	"github.com/Paintersrp/mds/pkg/cmd/note"
	"github.com/Paintersrp/mds/pkg/cmd/search"
	"github.com/Paintersrp/mds/pkg/cmd/snapshot"
	"github.com/Paintersrp/mds/pkg/cmd/stack"
	"github.com/Paintersrp/mds/pkg/cmd/surf"
	"github.com/Paintersrp/mds/pkg/cmd/vault/vaultSync"
)

// NewCmdRoot builds the command tree. Persistent flags are bound on v so
// they override the config file.
func NewCmdRoot(l *cmdpkg.Loader, v *viper.Viper) (*cobra.Command, error) {
	exploreCmd := explore.NewCmdExplore(l)

	cmd := &cobra.Command{
		Use:   "mds",
		Short: "Navigate a graph of markdown notes from the terminal.",
		Long: heredoc.Doc(`
			mds keeps a graph of markdown notes and tags in a database and lets
			you walk it with a fuzzy finder. Links written in the notes can be
			surfed, checklists toggled and notes queued on named stacks.

			Without a subcommand an explore session starts on every note.

			  mds sync               register the files of the notes directory
			  mds explore inbox      explore from a note
			  mds checkmark todo     work through a checklist
			  mds search parser -b   find notes by content
		`),
		Version:      constants.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         exploreCmd.RunE,
	}
	// The default session shares the explore flags.
	cmd.Flags().AddFlagSet(exploreCmd.Flags())

	flags := cmd.PersistentFlags()
	flags.StringVar(&l.Options.ConfigPath, "config", "", "config file (default is $HOME/.mds/cfg.yaml)")
	flags.String("notes-dir", "", "directory holding the note files")
	flags.String("driver", "", "database driver: sqlite3 or pgx")
	flags.String("db", "", "database DSN")
	flags.String("log-level", "", "log level: debug, info, warn or error")

	for key, flag := range map[string]string{
		"notes_dir":       "notes-dir",
		"database.driver": "driver",
		"database.dsn":    "db",
		"log.level":       "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	cmd.AddCommand(
		exploreCmd,
		surf.NewCmdSurf(l),
		checkmark.NewCmdCheckmark(l),
		stack.NewCmdStack(l),
		note.NewCmdNote(l),
		search.NewCmdSearch(l),
		vaultSync.NewCmdVaultSync(l),
		snapshot.NewCmdSnapshot(l),
		keys.NewCmdKeys(l),
	)

	return cmd, nil
}
