package note

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	cmdpkg "github.com/Paintersrp/mds/pkg/cmd"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteCreate"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteLink"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteList"
	"github.com/Paintersrp/mds/pkg/cmd/note/notePrint"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteRemove"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteRename"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteTag"
	"github.com/Paintersrp/mds/pkg/cmd/note/noteUnlink"
)

func NewCmdNote(l *cmdpkg.Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"n"},
		Short:   "Edit the note graph without a picker.",
		Long: heredoc.Doc(`
			Scriptable counterparts of the explore actions. Notes are named by
			their name or by the path of their file.
		`),
	}

	cmd.AddCommand(
		noteCreate.NewCmdNoteCreate(l),
		noteTag.NewCmdNoteTag(l),
		noteLink.NewCmdNoteLink(l),
		noteUnlink.NewCmdNoteUnlink(l),
		noteRename.NewCmdNoteRename(l),
		noteRemove.NewCmdNoteRemove(l),
		noteList.NewCmdNoteList(l),
		notePrint.NewCmdNotePrint(l),
	)

	return cmd
}
