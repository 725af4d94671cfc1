package nav

import (
	"github.com/Paintersrp/mds/internal/config"
	"github.com/Paintersrp/mds/internal/keymap"
)

type ExploreAction string

const (
	ExploreAccept           ExploreAction = "accept"
	ExploreOpen             ExploreAction = "open"
	ExploreOpenExternal     ExploreAction = "open_external"
	ExploreLink             ExploreAction = "link"
	ExploreUnlink           ExploreAction = "unlink"
	ExploreRename           ExploreAction = "rename"
	ExploreRemove           ExploreAction = "remove"
	ExploreCreateLinked     ExploreAction = "create_linked"
	ExploreSurf             ExploreAction = "surf"
	ExploreCheckmark        ExploreAction = "checkmark"
	ExploreTogglePreview    ExploreAction = "toggle_preview"
	ExploreInvertLinks      ExploreAction = "invert_links"
	ExploreSplice           ExploreAction = "splice"
	ExploreNarrow           ExploreAction = "narrow"
	ExploreIncreaseUnlisted ExploreAction = "increase_unlisted"
	ExploreDecreaseUnlisted ExploreAction = "decrease_unlisted"
	ExplorePushToStack      ExploreAction = "push_to_stack"
	ExploreSwitchToStack    ExploreAction = "switch_to_stack"
	ExploreBack             ExploreAction = "back"
	ExploreForward          ExploreAction = "forward"
	ExploreWiden            ExploreAction = "widen"
)

var exploreActions = []ExploreAction{
	ExploreOpen, ExploreOpenExternal, ExploreLink, ExploreUnlink, ExploreRename,
	ExploreRemove, ExploreCreateLinked, ExploreSurf, ExploreCheckmark,
	ExploreTogglePreview, ExploreInvertLinks, ExploreSplice, ExploreNarrow,
	ExploreIncreaseUnlisted, ExploreDecreaseUnlisted, ExplorePushToStack,
	ExploreSwitchToStack, ExploreBack, ExploreForward, ExploreWiden,
}

type SurfAction string

const (
	SurfAccept       SurfAction = "accept"
	SurfOpen         SurfAction = "open"
	SurfOpenExternal SurfAction = "open_external"
	SurfJump         SurfAction = "jump"
	SurfReturn       SurfAction = "return"
)

var surfActions = []SurfAction{SurfOpen, SurfOpenExternal, SurfJump, SurfReturn}

type CheckmarkAction string

const (
	CheckmarkAccept CheckmarkAction = "accept"
	CheckmarkToggle CheckmarkAction = "toggle"
	CheckmarkOpen   CheckmarkAction = "open"
	CheckmarkYank   CheckmarkAction = "yank"
	CheckmarkWiden  CheckmarkAction = "widen"
	CheckmarkNarrow CheckmarkAction = "narrow"
	CheckmarkReturn CheckmarkAction = "return"
)

var checkmarkActions = []CheckmarkAction{
	CheckmarkToggle, CheckmarkOpen, CheckmarkYank, CheckmarkWiden, CheckmarkNarrow, CheckmarkReturn,
}

type StackAction string

const (
	StackSelect        StackAction = "select"
	StackTogglePreview StackAction = "toggle_preview"
	StackPop           StackAction = "pop"
	StackMoveToTop     StackAction = "move_to_top"
	StackSwapAbove     StackAction = "swap_above"
	StackSwapBelow     StackAction = "swap_below"
	StackReturn        StackAction = "return"
)

var stackActions = []StackAction{
	StackSelect, StackTogglePreview, StackPop, StackMoveToTop, StackSwapAbove, StackSwapBelow, StackReturn,
}

// Keys holds the validated binding table of every mode.
type Keys struct {
	Explore   *keymap.Table[ExploreAction]
	Surf      *keymap.Table[SurfAction]
	Checkmark *keymap.Table[CheckmarkAction]
	Stack     *keymap.Table[StackAction]
}

// BuildKeys validates the configured bindings of all modes. It fails on the
// first invalid table.
func BuildKeys(cfg config.KeymapConfig) (Keys, error) {
	var (
		keys Keys
		err  error
	)
	if keys.Explore, err = keymap.Build("explore", exploreActions, cfg.Explore); err != nil {
		return Keys{}, err
	}
	if keys.Surf, err = keymap.Build("surf", surfActions, cfg.Surf); err != nil {
		return Keys{}, err
	}
	if keys.Checkmark, err = keymap.Build("checkmark", checkmarkActions, cfg.Checkmark); err != nil {
		return Keys{}, err
	}
	if keys.Stack, err = keymap.Build("stack", stackActions, cfg.Stack); err != nil {
		return Keys{}, err
	}
	return keys, nil
}

// Modes lists every table for display.
func (k Keys) Modes() map[string][]keymap.Binding {
	return map[string][]keymap.Binding{
		"explore":   k.Explore.Bindings(),
		"surf":      k.Surf.Bindings(),
		"checkmark": k.Checkmark.Bindings(),
		"stack":     k.Stack.Bindings(),
	}
}
