package parser

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// taskPattern recognises a checklist line by its own syntax only. Nesting is
// the number of leading two-space units.
var taskPattern = regexp.MustCompile(`(?m)^((?:  )*)- \[( |x)\] (.*)$`)

// TaskItem is one checklist line of a note.
type TaskItem struct {
	File      string
	Title     string
	Rendered  string
	Completed bool
	Level     int
	// Check is the byte range of the checkbox glyph.
	Check [2]int
	// Self is the position of the item in parse order.
	Self int
	// Next is the first following item at the same or a shallower level.
	// It is zero when the item has no nested items.
	Next int
	// Line is the 1-based line of the item in File.
	Line int
}

// End is the exclusive end of the item's subtree in parse order.
func (t TaskItem) End() int {
	if t.Next > 0 {
		return t.Next
	}
	return t.Self + 1
}

// Tasks extracts the checklist items of content in a single pass.
func Tasks(file string, content []byte) []TaskItem {
	matches := taskPattern.FindAllSubmatchIndex(content, -1)
	items := make([]TaskItem, 0, len(matches))

	line, last := 1, 0
	for i, m := range matches {
		line += bytes.Count(content[last:m[0]], []byte("\n"))
		last = m[0]

		title := strings.TrimRight(string(content[m[6]:m[7]]), "\r")
		completed := content[m[4]] == 'x'
		items = append(items, TaskItem{
			File:      file,
			Title:     title,
			Rendered:  renderTitle(title, completed),
			Completed: completed,
			Level:     (m[3] - m[2]) / 2,
			Check:     [2]int{m[4], m[5]},
			Self:      i,
			Line:      line,
		})
	}

	for i := range items {
		j := i + 1
		for j < len(items) && items[j].Level > items[i].Level {
			j++
		}
		if j > i+1 {
			items[i].Next = j
		}
	}

	return items
}

// ReadTasks reads file and extracts its checklist items.
func ReadTasks(file string) ([]TaskItem, []byte, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	return Tasks(file, content), content, nil
}

func renderTitle(title string, completed bool) string {
	if completed {
		return "[x] " + title
	}
	return "[ ] " + title
}

// ToggleTasks returns a copy of content with the checkbox of every given
// item flipped. No other byte changes.
func ToggleTasks(content []byte, items []TaskItem) ([]byte, error) {
	out := bytes.Clone(content)
	for _, item := range items {
		start, end := item.Check[0], item.Check[1]
		if start < 0 || end > len(out) || end-start != 1 {
			return nil, fmt.Errorf("task %q: checkbox range %v out of bounds", item.Title, item.Check)
		}
		switch out[start] {
		case ' ':
			out[start] = 'x'
		case 'x':
			out[start] = ' '
		default:
			return nil, fmt.Errorf("task %q: no checkbox at offset %d", item.Title, start)
		}
	}
	return out, nil
}

// Toggle flips the given items in file and returns the items parsed from the
// rewritten content.
func Toggle(file string, items []TaskItem) ([]TaskItem, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	toggled, err := ToggleTasks(content, items)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(file, toggled, info.Mode().Perm()); err != nil {
		return nil, err
	}

	return Tasks(file, toggled), nil
}

// Source returns the lines spanned by items[from:to] in content.
func Source(content []byte, items []TaskItem, from, to int) string {
	if from < 0 || from >= to || to > len(items) {
		return ""
	}
	start := bytes.LastIndexByte(content[:items[from].Check[0]], '\n') + 1
	last := items[to-1].Check[1]
	end := bytes.IndexByte(content[last:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += last + 1
	}
	return string(content[start:end])
}

// TaskNode is an item together with its nested items.
type TaskNode struct {
	Item     TaskItem
	Children []*TaskNode
}

// GroupTasks nests every item under the closest preceding item with a
// smaller level. The children of an item are the maximal contiguous run of
// following items that are deeper than it.
func GroupTasks(items []TaskItem) []*TaskNode {
	var roots []*TaskNode
	var open []*TaskNode
	for _, item := range items {
		node := &TaskNode{Item: item}
		for len(open) > 0 && open[len(open)-1].Item.Level >= item.Level {
			open = open[:len(open)-1]
		}
		if len(open) == 0 {
			roots = append(roots, node)
		} else {
			parent := open[len(open)-1]
			parent.Children = append(parent.Children, node)
		}
		open = append(open, node)
	}
	return roots
}

// FlattenTasks lists a forest in depth-first order.
func FlattenTasks(forest []*TaskNode) []TaskItem {
	var items []TaskItem
	stack := make([]*TaskNode, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		items = append(items, node.Item)
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return items
}

// CountTasks counts the items of a forest.
func CountTasks(forest []*TaskNode) int {
	return len(FlattenTasks(forest))
}
