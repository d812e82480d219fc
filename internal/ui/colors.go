package ui

import "github.com/charmbracelet/lipgloss"

const (
	terracotta = lipgloss.Color("#E07A5F")
	sage       = lipgloss.Color("#81B29A")
	tomato     = lipgloss.Color("#D62828")
	saffron    = lipgloss.Color("#F2CC8F")
	ash        = lipgloss.Color("#626262")
)

var styles = newTheme()

// theme holds the named [lipgloss.Style] values the views render with.
type theme struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	tag   lipgloss.Style
}

func newTheme() theme {
	bold := lipgloss.NewStyle().Bold(true)
	return theme{
		title: bold.Foreground(terracotta).MarginBottom(1),
		ok:    bold.Foreground(sage),
		err:   bold.Foreground(tomato),
		warn:  lipgloss.NewStyle().Foreground(saffron),
		help:  lipgloss.NewStyle().Foreground(ash).Italic(true),
		tag:   bold.Foreground(terracotta).Padding(0, 1).Reverse(true),
	}
}

// category renders a category shortcut, reversed when it is the active filter.
func (t theme) category(label string, active bool) string {
	if active {
		return t.tag.Render(label)
	}
	return t.help.Render(label)
}
