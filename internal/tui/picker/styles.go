package picker

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cba6f7")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("#224")).
			Foreground(lipgloss.Color("#FFF"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true)

	markStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F5A"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Padding(0, 1)

	listStyle = lipgloss.NewStyle().
			MarginRight(1)

	previewStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#334455"))
)
