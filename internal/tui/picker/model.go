package picker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/Paintersrp/mds/internal/keymap"
	"github.com/Paintersrp/mds/internal/nav"
)

type itemMsg nav.Item

type doneMsg struct{}

// source adapts the ranked items to the fuzzy matcher.
type source []nav.Item

func (s source) String(i int) string { return s[i].Display() }
func (s source) Len() int            { return len(s) }

type model struct {
	header string
	hint   string
	multi  bool
	expect map[keymap.Chord]bool

	items   []nav.Item
	matches []fuzzy.Match
	cursor  int
	offset  int
	marked  map[string]bool
	loading bool

	input   textinput.Model
	preview viewport.Model
	width   int
	height  int
	shown   string

	result  *nav.Result
	aborted bool
}

func newModel(req nav.Request) model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Focus()

	expect := make(map[keymap.Chord]bool, len(req.Expect))
	for _, c := range req.Expect {
		expect[c] = true
	}

	m := model{
		header:  req.Header,
		hint:    req.Hint,
		multi:   req.Multi,
		expect:  expect,
		marked:  make(map[string]bool),
		loading: true,
		input:   ti,
		preview: viewport.New(40, 20),
		width:   80,
		height:  24,
	}
	m.resize()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemMsg:
		m.insert(nav.Item(msg))
		m.filter(true)
		return m, nil

	case doneMsg:
		m.loading = false
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		key := msg.String()

		if chord := keymap.FromKey(key); m.expect[chord] {
			m.finish(chord)
			return m, tea.Quit
		}

		switch key {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.finish(keymap.Enter)
			return m, tea.Quit
		case "up":
			m.move(1)
			return m, nil
		case "down":
			m.move(-1)
			return m, nil
		case "pgup":
			m.move(m.listHeight())
			return m, nil
		case "pgdown":
			m.move(-m.listHeight())
			return m, nil
		case "shift+up":
			m.preview.LineUp(3)
			return m, nil
		case "shift+down":
			m.preview.LineDown(3)
			return m, nil
		case "tab", "shift+tab":
			if m.multi {
				if it, ok := m.current(); ok {
					m.marked[it.ID()] = !m.marked[it.ID()]
				}
				if key == "tab" {
					m.move(1)
				} else {
					m.move(-1)
				}
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			m.filter(false)
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// insert keeps items ordered by rank whatever order they arrive in.
func (m *model) insert(it nav.Item) {
	i := sort.Search(len(m.items), func(i int) bool { return m.items[i].Rank > it.Rank })
	m.items = append(m.items, nav.Item{})
	copy(m.items[i+1:], m.items[i:])
	m.items[i] = it
}

// filter recomputes the matches. With keep the highlighted row survives,
// so streaming items do not move the cursor.
func (m *model) filter(keep bool) {
	var current string
	if it, ok := m.current(); ok && keep {
		current = it.ID()
	}

	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.matches = m.matches[:0]
		for i, it := range m.items {
			m.matches = append(m.matches, fuzzy.Match{Str: it.Display(), Index: i})
		}
	} else {
		m.matches = fuzzy.FindFrom(query, source(m.items))
	}

	m.cursor = 0
	if current != "" {
		for i, match := range m.matches {
			if m.items[match.Index].ID() == current {
				m.cursor = i
				break
			}
		}
	}
	m.clamp()
}

func (m *model) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *model) clamp() {
	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if h > 0 && m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.syncPreview()
}

func (m *model) syncPreview() {
	it, ok := m.current()
	if !ok {
		if m.shown != "" {
			m.shown = ""
			m.preview.SetContent("")
		}
		return
	}
	if it.ID() == m.shown {
		return
	}
	m.shown = it.ID()
	m.preview.SetContent(it.Preview)
	m.preview.GotoTop()
}

func (m *model) current() (nav.Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return nav.Item{}, false
	}
	return m.items[m.matches[m.cursor].Index], true
}

func (m *model) finish(key keymap.Chord) {
	res := nav.Result{Key: key}
	if m.multi {
		for _, it := range m.items {
			if m.marked[it.ID()] {
				res.Selected = append(res.Selected, it)
			}
		}
	}
	if len(res.Selected) == 0 {
		if it, ok := m.current(); ok {
			res.Selected = []nav.Item{it}
		}
	}
	m.result = &res
}

func (m *model) listHeight() int {
	// header, prompt and count lines
	chrome := 3
	if m.hint != "" {
		chrome++
	}
	return max(m.height-chrome, 1)
}

func (m *model) resize() {
	m.preview.Width = max(m.width/2-2, 10)
	m.preview.Height = max(m.height-2, 1)
	m.input.Width = max(m.width/2-4, 10)
	m.clamp()
}

func (m model) View() string {
	listWidth := m.width - m.preview.Width - 3
	if listWidth < 10 {
		listWidth = 10
	}

	h := m.listHeight()
	rows := make([]string, 0, h)
	end := min(m.offset+h, len(m.matches))
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.row(i, listWidth))
	}
	// The best match sits next to the prompt.
	for len(rows) < h {
		rows = append(rows, "")
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	status := fmt.Sprintf("%d/%d", len(m.matches), len(m.items))
	if m.loading {
		status += " …"
	}
	if n := m.countMarked(); m.multi && n > 0 {
		status += fmt.Sprintf(" (%d marked)", n)
	}

	lines := []string{headerStyle.Render(m.header)}
	if m.hint != "" {
		lines = append(lines, hintStyle.MaxWidth(listWidth).Render(m.hint))
	}
	lines = append(lines,
		strings.Join(rows, "\n"),
		countStyle.Render(status),
		m.input.View(),
	)
	left := lipgloss.JoinVertical(lipgloss.Left, lines...)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Width(listWidth).Render(left),
		previewStyle.Render(m.preview.View()),
	)
}

func (m model) countMarked() int {
	n := 0
	for _, v := range m.marked {
		if v {
			n++
		}
	}
	return n
}

func (m model) row(i, width int) string {
	match := m.matches[i]
	it := m.items[match.Index]

	var b strings.Builder
	hit := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		hit[idx] = true
	}
	for idx, r := range it.Display() {
		if hit[idx] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}

	prefix := "  "
	if m.marked[it.ID()] {
		prefix = markStyle.Render("* ")
	}
	line := prefix + b.String()
	if i == m.cursor {
		return cursorStyle.MaxWidth(width).Render(line)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}
