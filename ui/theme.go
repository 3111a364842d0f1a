package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gigurra/groovebox/player"
)

// Palette is one color scheme for the whole interface.
type Palette struct {
	Accent    lipgloss.Color // titles, progress fill, bars
	Secondary lipgloss.Color // artist line, waveform
	Dim       lipgloss.Color // help text, empty bar track
	Peak      lipgloss.Color // falling peak markers
	Selected  lipgloss.Color // list selection background
	Error     lipgloss.Color
}

var palettes = map[player.Theme]Palette{
	player.ThemeDefault: {
		Accent:    lipgloss.Color("39"),
		Secondary: lipgloss.Color("75"),
		Dim:       lipgloss.Color("241"),
		Peak:      lipgloss.Color("252"),
		Selected:  lipgloss.Color("238"),
		Error:     lipgloss.Color("196"),
	},
	player.ThemeDracula: {
		Accent:    lipgloss.Color("141"),
		Secondary: lipgloss.Color("212"),
		Dim:       lipgloss.Color("61"),
		Peak:      lipgloss.Color("231"),
		Selected:  lipgloss.Color("59"),
		Error:     lipgloss.Color("203"),
	},
	player.ThemeNord: {
		Accent:    lipgloss.Color("110"),
		Secondary: lipgloss.Color("109"),
		Dim:       lipgloss.Color("60"),
		Peak:      lipgloss.Color("189"),
		Selected:  lipgloss.Color("238"),
		Error:     lipgloss.Color("167"),
	},
	player.ThemeGruvbox: {
		Accent:    lipgloss.Color("214"),
		Secondary: lipgloss.Color("142"),
		Dim:       lipgloss.Color("243"),
		Peak:      lipgloss.Color("223"),
		Selected:  lipgloss.Color("237"),
		Error:     lipgloss.Color("167"),
	},
	player.ThemeNeon: {
		Accent:    lipgloss.Color("201"),
		Secondary: lipgloss.Color("51"),
		Dim:       lipgloss.Color("93"),
		Peak:      lipgloss.Color("231"),
		Selected:  lipgloss.Color("54"),
		Error:     lipgloss.Color("197"),
	},
}

// styles are rebuilt whenever the theme changes.
type styles struct {
	title    lipgloss.Style
	artist   lipgloss.Style
	help     lipgloss.Style
	bar      lipgloss.Style
	barDim   lipgloss.Style
	peak     lipgloss.Style
	wave     lipgloss.Style
	selected lipgloss.Style
	errMsg   lipgloss.Style
	header   lipgloss.Style
	search   lipgloss.Style
}

func buildStyles(theme player.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[player.ThemeDefault]
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		artist:   lipgloss.NewStyle().Foreground(p.Secondary),
		help:     lipgloss.NewStyle().Foreground(p.Dim),
		bar:      lipgloss.NewStyle().Foreground(p.Accent),
		barDim:   lipgloss.NewStyle().Foreground(p.Dim),
		peak:     lipgloss.NewStyle().Foreground(p.Peak),
		wave:     lipgloss.NewStyle().Foreground(p.Secondary),
		selected: lipgloss.NewStyle().Bold(true).Background(p.Selected),
		errMsg:   lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250")),
		search:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}
