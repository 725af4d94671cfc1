package search

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/mds/internal/constants"
	"github.com/Paintersrp/mds/internal/preview"
	"github.com/Paintersrp/mds/internal/search"
	"github.com/Paintersrp/mds/internal/session"
	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
)

func NewCmdSearch(l *cmdpkg.Loader) *cobra.Command {
	var (
		body      bool
		tags      []string
		meta      []string
		namesOnly bool
		explore   bool
	)

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Find registered notes by name, front matter or body.",
		Long: heredoc.Doc(`
			Matches the term case-insensitively against note names and front
			matter, and against bodies with --body. --tag and --meta narrow the
			notes by their front matter. With --explore the matches open in an
			explore session.

			Examples:
			  mds search parser --body
			  mds search --tag project --meta status=active --explore
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q := search.Query{Tags: tags, Body: body}
			if len(args) == 1 {
				q.Term = args[0]
			}
			metadata, err := parseMeta(meta)
			if err != nil {
				return err
			}
			q.Metadata = metadata

			s, err := l.State(ctx)
			if err != nil {
				return err
			}
			notes, err := s.Store.List(ctx)
			if err != nil {
				return err
			}
			idx, err := search.Build(ctx, notes)
			if err != nil {
				return err
			}
			results := idx.Search(q)
			s.Logger.Debug("search", "term", q.Term, "indexed", idx.Len(), "matches", len(results))

			if explore {
				if len(results) == 0 {
					return fmt.Errorf("no notes match")
				}
				st := session.ExploreState{
					View:          preview.Details,
					UnlistedDepth: s.Config.Tree.UnlistedDepth,
					Stack:         constants.GlobalStack,
				}
				out, err := session.NewExplorer(s.Env()).Run(ctx, search.Notes(results), st)
				if err != nil {
					return cmdpkg.Finish(cmd, err)
				}
				cmdpkg.PrintOutcome(cmd.OutOrStdout(), out)
				return nil
			}

			w := cmd.OutOrStdout()
			if namesOnly {
				for _, r := range results {
					fmt.Fprintln(w, r.Note.Name)
				}
				return nil
			}
			table := uitable.New()
			table.MaxColWidth = 60
			table.Wrap = true
			table.AddRow("NAME", "MATCH", "SNIPPET")
			for _, r := range results {
				table.AddRow(r.Note.String(), r.MatchFrom, r.Snippet)
			}
			fmt.Fprintln(w, table)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&body, "body", "b", false, "Also match note bodies.")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Front-matter tags every match carries.")
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Front-matter key=value every match carries.")
	cmd.Flags().BoolVarP(&namesOnly, "names", "1", false, "Print bare names, one per line.")
	cmd.Flags().BoolVarP(&explore, "explore", "x", false, "Explore the matches.")

	return cmd
}

func parseMeta(pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta %q, want key=value", p)
		}
		out[key] = append(out[key], value)
	}
	return out, nil
}
