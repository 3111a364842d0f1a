package ui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/gigurra/groovebox/albumart"
	"github.com/gigurra/groovebox/visualizer"
)

const (
	nowPlayingHeight = 8
	visualizerHeight = 12
	statusHeight     = 2

	// Art is 20 cells tall, matching nowPlayingHeight+visualizerHeight.
	artMinWidth = 80
	splitWidth  = 120 // mirrored stereo split needs room
)

var blockGlyphs = []rune(" ▁▂▃▄▅▆▇█")

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.infoView {
		return m.renderInfoView()
	}
	if m.player.MiniMode() {
		return m.renderMiniView()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderLibrary())

	bottom := lipgloss.JoinVertical(lipgloss.Left,
		m.renderNowPlaying(m.bottomWidth()),
		m.renderVisualizer(m.bottomWidth(), visualizerHeight),
	)
	if m.width >= artMinWidth {
		if t := m.player.CurrentTrack(); t != nil {
			bottom = lipgloss.JoinHorizontal(lipgloss.Top,
				renderArt(m.art.For(t.Path)), " ", bottom)
		}
	}
	b.WriteString(bottom)
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// bottomWidth is the width left for the now-playing/visualizer column
// once album art is placed beside it.
func (m Model) bottomWidth() int {
	w := m.width
	if m.width >= artMinWidth {
		w -= albumart.Cells + 1
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) renderHeader() string {
	p := m.player
	var b strings.Builder
	b.WriteString(" ")
	switch {
	case p.Searching():
		b.WriteString(m.styles.search.Render("Search: [" + p.SearchQuery() + "_]"))
	case p.SearchQuery() != "":
		b.WriteString(m.styles.search.Render("Search: [" + p.SearchQuery() + "]"))
	default:
		b.WriteString(m.styles.help.Render("/ to search"))
	}
	visible := p.Filtered()
	if len(visible) != len(p.Tracks()) {
		b.WriteString(m.styles.help.Render(fmt.Sprintf("  [showing %d of %d]", len(visible), len(p.Tracks()))))
	} else {
		b.WriteString(m.styles.help.Render(fmt.Sprintf("  [%d tracks]", len(p.Tracks()))))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderLibrary() string {
	p := m.player
	visible := p.Filtered()
	height := m.listHeight()

	var b strings.Builder
	if len(visible) == 0 {
		b.WriteString(m.styles.help.Render("  no matching tracks"))
		b.WriteString(strings.Repeat("\n", height))
		return b.String()
	}

	end := m.viewportOffset + height
	if end > len(visible) {
		end = len(visible)
	}
	for _, idx := range visible[m.viewportOffset:end] {
		t := p.Tracks()[idx]
		mark := "  "
		if idx == p.Current() {
			if p.Playing() {
				mark = "▶ "
			} else if p.Paused() {
				mark = "⏸ "
			}
		}
		line := fmt.Sprintf("%s%s — %s", mark,
			runewidth.Truncate(t.Title, 40, "…"),
			runewidth.Truncate(t.Artist, 25, "…"))
		dur := formatTime(t.Duration)
		pad := m.width - runewidth.StringWidth(line) - len(dur) - 3
		if pad < 1 {
			pad = 1
		}
		line += strings.Repeat(" ", pad) + dur

		if idx == p.Selected() {
			line = m.styles.selected.Render(line)
		} else if idx == p.Current() {
			line = m.styles.title.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	// Keep the panel height stable when the list is short.
	for i := end - m.viewportOffset; i < height; i++ {
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderNowPlaying(width int) string {
	p := m.player
	var b strings.Builder

	t := p.CurrentTrack()
	if t == nil {
		b.WriteString("\n")
		b.WriteString(m.styles.help.Render(" Nothing playing — enter to start"))
		b.WriteString(strings.Repeat("\n", nowPlayingHeight-2))
		return b.String()
	}

	b.WriteString("\n ")
	b.WriteString(m.styles.title.Render(runewidth.Truncate(t.Title, width-2, "…")))
	b.WriteString("\n ")
	b.WriteString(m.styles.artist.Render(runewidth.Truncate(t.Artist+" — "+t.Album, width-2, "…")))
	b.WriteString("\n\n ")
	b.WriteString(m.renderProgressBar(width - 2))
	b.WriteString("\n ")
	b.WriteString(m.styles.help.Render(fmt.Sprintf("%s / %s", formatTime(p.Progress()), formatTime(p.Duration()))))
	b.WriteString("\n ")
	b.WriteString(m.styles.help.Render(m.flagsLine()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) flagsLine() string {
	p := m.player
	parts := []string{
		fmt.Sprintf("vol %d%%", int(p.Volume()*100+0.5)),
		fmt.Sprintf("%.2gx", p.Speed()),
		"repeat " + p.Repeat().String(),
	}
	if p.Shuffle() {
		parts = append(parts, "shuffle")
	}
	if p.SleepMinutes() > 0 {
		parts = append(parts, "sleep "+formatTime(p.SleepRemaining().Seconds()))
	}
	parts = append(parts, p.Vis.Mode.String())
	return strings.Join(parts, " • ")
}

func (m Model) renderProgressBar(width int) string {
	p := m.player
	if width < 4 {
		width = 4
	}
	filled := 0
	if p.Duration() > 0 {
		filled = int(p.Progress() / p.Duration() * float64(width))
		if filled > width {
			filled = width
		}
	}
	return m.styles.bar.Render(strings.Repeat("█", filled)) +
		m.styles.barDim.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderVisualizer(width, height int) string {
	switch m.player.Vis.Mode {
	case visualizer.ModeFrequencyBars:
		if width >= splitWidth {
			return m.renderStereoSpectrum(width, height)
		}
		return m.renderSpectrum(m.player.Vis.Bars[:], m.player.Vis.PeakBars[:], width, height)
	case visualizer.ModeWaveform:
		return m.renderWaveform(width, height)
	default:
		return strings.Repeat("\n", height-1)
	}
}

// renderSpectrum draws one column group per band, with a peak marker
// hovering above the live bar.
func (m Model) renderSpectrum(bars, peaks []float64, width, height int) string {
	barWidth := (width - 2) / len(bars)
	if barWidth < 1 {
		barWidth = 1
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		b.WriteString(" ")
		top := float64(height-row) / float64(height)
		bottom := float64(height-row-1) / float64(height)
		for i, v := range bars {
			if i*barWidth >= width-2 {
				break
			}
			cell := m.spectrumCell(v, peaks[i], top, bottom, height)
			b.WriteString(strings.Repeat(cell, barWidth))
		}
		if row < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderStereoSpectrum mirrors the left channel outward from center.
func (m Model) renderStereoSpectrum(width, height int) string {
	v := m.player.Vis
	half := (width - 3) / 2
	barWidth := half / visualizer.NumBands
	if barWidth < 1 {
		barWidth = 1
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		b.WriteString(" ")
		top := float64(height-row) / float64(height)
		bottom := float64(height-row-1) / float64(height)
		// Left channel, highest band at the left edge.
		for i := visualizer.NumBands - 1; i >= 0; i-- {
			cell := m.spectrumCell(v.LeftBars[i], v.PeakBars[i], top, bottom, height)
			b.WriteString(strings.Repeat(cell, barWidth))
		}
		b.WriteString(" ")
		for i := 0; i < visualizer.NumBands; i++ {
			cell := m.spectrumCell(v.RightBars[i], v.PeakBars[i], top, bottom, height)
			b.WriteString(strings.Repeat(cell, barWidth))
		}
		if row < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) spectrumCell(value, peak, top, bottom float64, height int) string {
	switch {
	case value >= top:
		return m.styles.bar.Render("█")
	case value > bottom:
		frac := (value - bottom) * float64(height)
		idx := int(frac * float64(len(blockGlyphs)-1))
		if idx >= len(blockGlyphs) {
			idx = len(blockGlyphs) - 1
		}
		return m.styles.bar.Render(string(blockGlyphs[idx]))
	case peak > bottom && peak <= top:
		return m.styles.peak.Render("▔")
	default:
		return " "
	}
}

func (m Model) renderWaveform(width, height int) string {
	wave := m.player.Vis.Waveform[:]
	cols := width - 2
	if cols < 1 {
		cols = 1
	}
	center := float64(height)/2 - 0.5

	var b strings.Builder
	for row := 0; row < height; row++ {
		b.WriteString(" ")
		for col := 0; col < cols; col++ {
			amp := wave[col*len(wave)/cols]
			if amp < 0 {
				amp = -amp
			}
			halfExtent := amp * float64(height) / 2
			dist := float64(row) - center
			if dist < 0 {
				dist = -dist
			}
			switch {
			case dist <= halfExtent:
				b.WriteString(m.styles.wave.Render("█"))
			case row == height/2:
				b.WriteString(m.styles.help.Render("─"))
			default:
				b.WriteString(" ")
			}
		}
		if row < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderStatus() string {
	if err := m.player.Error(); err != "" {
		return m.styles.errMsg.Render(" ⚠ " + runewidth.Truncate(err, m.width-4, "…"))
	}
	return m.styles.help.Render(" space play/pause • n/p track • ←/→ seek • v visualizer • i info • q quit")
}

func (m Model) renderMiniView() string {
	p := m.player
	var b strings.Builder
	b.WriteString("\n ")
	if t := p.CurrentTrack(); t != nil {
		b.WriteString(m.styles.title.Render(runewidth.Truncate(t.Title, m.width-2, "…")))
		b.WriteString("\n ")
		b.WriteString(m.styles.artist.Render(runewidth.Truncate(t.Artist, m.width-2, "…")))
	} else {
		b.WriteString(m.styles.help.Render("Nothing playing"))
		b.WriteString("\n")
	}
	b.WriteString("\n ")
	b.WriteString(m.renderProgressBar(m.width - 2))
	b.WriteString("\n ")

	// One-row spectrum strip.
	for _, v := range p.Vis.Bars {
		idx := int(v * float64(len(blockGlyphs)-1))
		if idx >= len(blockGlyphs) {
			idx = len(blockGlyphs) - 1
		}
		b.WriteString(m.styles.bar.Render(string(blockGlyphs[idx])))
	}
	b.WriteString("\n ")
	b.WriteString(m.styles.help.Render(m.flagsLine()))
	b.WriteString("\n ")
	b.WriteString(m.styles.help.Render("m full view • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderInfoView() string {
	p := m.player
	var b strings.Builder
	b.WriteString("\n ")
	b.WriteString(m.styles.search.Render("Track Info"))
	b.WriteString("\n\n")

	if t := p.CurrentTrack(); t != nil {
		row := func(label, value string) {
			b.WriteString(fmt.Sprintf("  %-12s %s\n", label, runewidth.Truncate(value, m.width-16, "…")))
		}
		row("Title", t.Title)
		row("Artist", t.Artist)
		row("Album", t.Album)
		row("File", t.Path)
		row("Format", t.Format)
		row("Duration", formatTime(t.Duration))
		if t.SampleRate > 0 {
			row("Sample rate", fmt.Sprintf("%d Hz", t.SampleRate))
		}
		if t.Bitrate > 0 {
			row("Bitrate", fmt.Sprintf("%d kbit/s", t.Bitrate))
		}
		row("Size", fmt.Sprintf("%.1f MiB", float64(t.FileSize)/(1024*1024)))
	} else {
		b.WriteString(m.styles.help.Render("  Nothing playing\n"))
	}

	b.WriteString("\n ")
	b.WriteString(m.styles.header.Render("Keys"))
	b.WriteString("\n")
	b.WriteString("    space      play/pause        enter   play selection\n")
	b.WriteString("    n / p      next/previous     j / k   move selection\n")
	b.WriteString("    ← / →      seek ±5s          + / -   volume\n")
	b.WriteString("    < / >      speed             s / r   shuffle/repeat\n")
	b.WriteString("    v          visualizer        T       theme\n")
	b.WriteString("    t          sleep timer       m       mini mode\n")
	b.WriteString("    /          search            q       quit\n")
	b.WriteString("\n ")
	b.WriteString(m.styles.help.Render("Press any key to close"))
	b.WriteString("\n")
	return b.String()
}

// renderArt paints a cell grid with half blocks: foreground is the top
// pixel, background the bottom.
func renderArt(art *albumart.Art) string {
	var b strings.Builder
	for y := 0; y < albumart.Cells; y++ {
		for x := 0; x < albumart.Cells; x++ {
			cell := art.Grid[y][x]
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(cell.Top))).
				Background(lipgloss.Color(hexColor(cell.Bottom)))
			b.WriteString(style.Render("▀"))
		}
		if y < albumart.Cells-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, s/60%60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
