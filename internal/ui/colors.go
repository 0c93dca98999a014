package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// styles is the mirror flow's palette: purple headers, green for a finished
// mirror, red for failures, amber for unmatched tracks, muted gray key hints.
var styles = &Palette{
	title: NewBold("#7D56F4").MarginBottom(1),
	ok:    NewBold("#04B575"),
	err:   NewBold("#FF0000"),
	warn:  NewStyle("#FFA500"),
	help:  NewEm("#626262"),
}

// Palette groups the [lipgloss.Style]s each screen of the TUI renders with.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
