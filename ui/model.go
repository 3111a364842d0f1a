// Package ui is the terminal front end: a bubbletea model ticking the
// orchestrator at ~30 Hz and rendering the library, playback state and
// visualizer.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gigurra/groovebox/albumart"
	"github.com/gigurra/groovebox/player"
)

const tickInterval = 33 * time.Millisecond

type tickMsg time.Time

// libraryChangedMsg arrives when the filesystem watcher saw changes
// under the music directory.
type libraryChangedMsg struct{}

type Model struct {
	player *player.Player
	art    *albumart.Cache

	// rescan re-reads the library when the watcher fires; nil when
	// playing a single file.
	rescan func()

	width  int
	height int

	viewportOffset int
	infoView       bool

	theme  player.Theme
	styles styles

	// changes is the watcher channel; nil disables watching.
	changes <-chan struct{}
}

func NewModel(p *player.Player, changes <-chan struct{}) Model {
	return Model{
		player:  p,
		art:     albumart.NewCache(),
		theme:   p.Theme(),
		styles:  buildStyles(p.Theme()),
		changes: changes,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), tea.EnterAltScreen}
	if m.changes != nil {
		cmds = append(cmds, watchChangesCmd(m.changes))
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func watchChangesCmd(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return libraryChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.ensureSelectionVisible()

	case tickMsg:
		m.player.Tick()
		if t := m.player.Theme(); t != m.theme {
			m.theme = t
			m.styles = buildStyles(t)
		}
		m = m.ensureSelectionVisible()
		return m, tickCmd()

	case libraryChangedMsg:
		if m.rescan != nil {
			m.rescan()
		}
		return m, watchChangesCmd(m.changes)
	}

	return m, nil
}

// SetRescan installs the watcher-triggered library reload.
func (m *Model) SetRescan(f func()) { m.rescan = f }

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.player

	// Any key closes the info overlay.
	if m.infoView {
		m.infoView = false
		return m, nil
	}

	// Search mode captures printable input.
	if p.Searching() {
		switch msg.String() {
		case "esc":
			p.ClearSearch()
		case "enter":
			p.StopSearch()
		case "backspace":
			p.SearchBackspace()
		case "up":
			p.StopSearch()
			p.MoveSelection(-1)
		case "down":
			p.StopSearch()
			p.MoveSelection(1)
		default:
			if len(msg.Runes) == 1 && msg.Runes[0] >= 32 {
				p.SearchInput(msg.Runes[0])
			}
		}
		return m.ensureSelectionVisible(), nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		p.Toggle()
	case "n":
		p.Next()
	case "p":
		p.Prev()
	case "up", "k":
		p.MoveSelection(-1)
	case "down", "j":
		p.MoveSelection(1)
	case "pgup":
		p.MoveSelection(-m.listHeight())
	case "pgdown":
		p.MoveSelection(m.listHeight())
	case "enter":
		p.Play(p.Selected())
	case "s":
		p.ToggleShuffle()
	case "r":
		p.CycleRepeat()
	case "+", "=":
		p.VolumeUp()
	case "-", "_":
		p.VolumeDown()
	case "left":
		p.SeekBy(-5)
	case "right":
		p.SeekBy(5)
	case "v":
		p.CycleVisualizer()
	case "T":
		p.CycleTheme()
	case "t":
		p.CycleSleepTimer()
	case "m":
		p.ToggleMiniMode()
	case ">", ".":
		p.SpeedUp()
	case "<", ",":
		p.SpeedDown()
	case "i":
		m.infoView = true
	case "/":
		p.StartSearch()
	case "esc":
		p.ClearSearch()
	}
	return m.ensureSelectionVisible(), nil
}

// listHeight is how many library rows fit under the fixed panels.
func (m Model) listHeight() int {
	h := m.height - nowPlayingHeight - visualizerHeight - statusHeight - 1
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) ensureSelectionVisible() Model {
	visible := m.player.Filtered()
	pos := 0
	for i, idx := range visible {
		if idx == m.player.Selected() {
			pos = i
			break
		}
	}
	height := m.listHeight()
	if pos < m.viewportOffset {
		m.viewportOffset = pos
	}
	if pos >= m.viewportOffset+height {
		m.viewportOffset = pos - height + 1
	}
	if m.viewportOffset < 0 {
		m.viewportOffset = 0
	}
	return m
}

// Run starts the TUI and blocks until the user quits.
func Run(m Model) error {
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}
