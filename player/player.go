// Package player holds the orchestration state machine: playlist,
// selection, shuffle, repeat, speed, sleep timer. It translates user and
// remote intents into engine commands and folds engine events back into
// display state.
package player

import (
	"math/rand"
	"sync"
	"time"

	"github.com/gigurra/groovebox/audio"
	"github.com/gigurra/groovebox/library"
	"github.com/gigurra/groovebox/visualizer"
	"github.com/samber/lo"
)

// RepeatMode controls what happens when a track ends or the playlist
// edge is reached.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Off"
	}
}

// Theme selects the UI color palette.
type Theme int

const (
	ThemeDefault Theme = iota
	ThemeDracula
	ThemeNord
	ThemeGruvbox
	ThemeNeon
	numThemes
)

func (t Theme) Cycle() Theme {
	return (t + 1) % numThemes
}

func (t Theme) String() string {
	switch t {
	case ThemeDracula:
		return "Dracula"
	case ThemeNord:
		return "Nord"
	case ThemeGruvbox:
		return "Gruvbox"
	case ThemeNeon:
		return "Neon"
	default:
		return "Default"
	}
}

// SpeedLadder lists the selectable playback rates. Cycling clamps at the
// ends rather than wrapping.
var SpeedLadder = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// sleepLadder lists the arm durations in minutes; cycling past the last
// entry disarms the timer.
var sleepLadder = []int{15, 30, 45, 60}

const (
	volumeStep  = 0.05
	fadeWindow  = 60 * time.Second
	restartOver = 3.0 // seconds into a track after which prev restarts it
)

type sleepTimer struct {
	end            time.Time
	fadeStart      time.Time
	originalVolume float64
	minutes        int
}

// Player is single-goroutine state: the UI loop owns it and drives
// Tick. The remote posts intents through a channel instead of touching
// fields, and reads the snapshot refreshed on every tick.
type Player struct {
	tracks []library.Track
	send   func(audio.Command) bool
	events <-chan audio.Event
	chunks <-chan []float64

	Vis *visualizer.Visualizer

	current  int // playlist index, -1 when idle
	selected int // cursor in the (filtered) list
	playing  bool
	paused   bool
	progress float64
	duration float64

	volume   float64
	speedIdx int
	repeat   RepeatMode
	shuffle  bool
	order    []int
	orderPos int
	sleep    *sleepTimer
	theme    Theme
	miniMode bool

	searchQuery string
	searching   bool
	errMsg      string

	intents chan RemoteIntent
	now     func() time.Time
	rng     *rand.Rand

	snapMu sync.Mutex
	snap   Snapshot
}

// New wires the orchestrator to an engine via its command sender and
// event/chunk channels. Either channel may be nil in tests that drive
// state directly.
func New(tracks []library.Track, send func(audio.Command) bool, events <-chan audio.Event, chunks <-chan []float64) *Player {
	p := &Player{
		tracks:   tracks,
		send:     send,
		events:   events,
		chunks:   chunks,
		Vis:      visualizer.New(),
		current:  -1,
		volume:   1.0,
		speedIdx: 2, // 1.0x
		intents:  make(chan RemoteIntent, 16),
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	p.refreshSnapshot()
	return p
}

func (p *Player) Tracks() []library.Track { return p.tracks }

// SetTracks replaces the playlist after a rescan. The current track
// keeps playing; indices are re-resolved by path where possible.
func (p *Player) SetTracks(tracks []library.Track) {
	currentPath := ""
	if p.current >= 0 && p.current < len(p.tracks) {
		currentPath = p.tracks[p.current].Path
	}
	p.tracks = tracks
	p.order = nil
	p.current = -1
	for i, t := range tracks {
		if t.Path == currentPath {
			p.current = i
			break
		}
	}
	if p.selected >= len(tracks) {
		p.selected = max(len(tracks)-1, 0)
	}
	if p.shuffle {
		p.regenerateOrder()
	}
}

// Play starts the given playlist index from the beginning.
func (p *Player) Play(index int) {
	if index < 0 || index >= len(p.tracks) {
		return
	}
	p.current = index
	p.selected = index
	p.playing = true
	p.paused = false
	p.progress = 0
	p.duration = p.tracks[index].Duration
	if p.shuffle {
		p.syncOrderTo(index)
	}
	p.send(audio.Play{Path: p.tracks[index].Path})
}

// Toggle pauses/resumes, or starts the selected track when idle.
func (p *Player) Toggle() {
	switch {
	case p.current < 0 || !p.playing:
		p.Play(p.selected)
	case p.paused:
		p.send(audio.Resume{})
		p.paused = false
	default:
		p.send(audio.Pause{})
		p.paused = true
	}
}

// Stop halts playback and returns to the idle state.
func (p *Player) Stop() {
	p.send(audio.Stop{})
	p.current = -1
	p.playing = false
	p.paused = false
	p.progress = 0
	p.duration = 0
}

// Next advances per the shuffle/repeat policy. At the end of the list
// RepeatAll wraps, everything else stays put without issuing a command.
func (p *Player) Next() {
	if len(p.tracks) == 0 {
		return
	}
	if p.current < 0 {
		p.Play(p.selected)
		return
	}
	if p.shuffle {
		p.nextShuffled()
		return
	}
	next := p.current + 1
	if next >= len(p.tracks) {
		if p.repeat != RepeatAll {
			return
		}
		next = 0
	}
	p.Play(next)
}

// Prev restarts the current track when more than three seconds in,
// otherwise moves back one, wrapping only under RepeatAll.
func (p *Player) Prev() {
	if len(p.tracks) == 0 {
		return
	}
	if p.current >= 0 && p.progress > restartOver {
		p.Play(p.current)
		return
	}
	if p.current < 0 {
		p.Play(p.selected)
		return
	}
	if p.shuffle {
		p.prevShuffled()
		return
	}
	prev := p.current - 1
	if prev < 0 {
		if p.repeat == RepeatAll {
			prev = len(p.tracks) - 1
		} else {
			prev = 0
		}
	}
	p.Play(prev)
}

// HandleTrackFinished reacts to the engine's end-of-track event.
func (p *Player) HandleTrackFinished() {
	if p.repeat == RepeatOne && p.current >= 0 {
		p.Play(p.current)
		return
	}
	wasCurrent := p.current
	p.Next()
	if p.current == wasCurrent && p.repeat == RepeatOff {
		// End of the list: Next was a no-op, so settle into the stopped
		// state instead of pretending to play on.
		p.playing = false
		p.paused = false
		p.progress = 0
	}
}

func (p *Player) nextShuffled() {
	if len(p.order) != len(p.tracks) {
		p.regenerateOrder()
		p.syncOrderTo(p.current)
	}
	p.orderPos++
	if p.orderPos >= len(p.order) {
		if p.repeat != RepeatAll {
			p.orderPos = len(p.order) - 1
			return
		}
		p.regenerateOrder()
	}
	p.Play(p.order[p.orderPos])
}

func (p *Player) prevShuffled() {
	if len(p.order) != len(p.tracks) {
		p.regenerateOrder()
		p.syncOrderTo(p.current)
	}
	p.orderPos--
	if p.orderPos < 0 {
		if p.repeat == RepeatAll {
			p.orderPos = len(p.order) - 1
		} else {
			p.orderPos = 0
		}
	}
	p.Play(p.order[p.orderPos])
}

// ToggleShuffle flips shuffle mode, regenerating the order so the
// current track leads it.
func (p *Player) ToggleShuffle() {
	p.shuffle = !p.shuffle
	if p.shuffle {
		p.regenerateOrder()
		if p.current >= 0 {
			p.syncOrderTo(p.current)
		}
	}
}

func (p *Player) regenerateOrder() {
	p.order = make([]int, len(p.tracks))
	for i := range p.order {
		p.order[i] = i
	}
	p.rng.Shuffle(len(p.order), func(i, j int) {
		p.order[i], p.order[j] = p.order[j], p.order[i]
	})
	p.orderPos = 0
}

// syncOrderTo moves index to the current order position so subsequent
// Next calls continue from it.
func (p *Player) syncOrderTo(index int) {
	for i, v := range p.order {
		if v == index {
			p.order[i], p.order[p.orderPos] = p.order[p.orderPos], p.order[i]
			return
		}
	}
}

func (p *Player) CycleRepeat() { p.repeat = p.repeat.Cycle() }
func (p *Player) Repeat() RepeatMode {
	return p.repeat
}
func (p *Player) Shuffle() bool { return p.shuffle }

func (p *Player) CycleTheme()      { p.theme = p.theme.Cycle() }
func (p *Player) Theme() Theme     { return p.theme }
func (p *Player) ToggleMiniMode()  { p.miniMode = !p.miniMode }
func (p *Player) MiniMode() bool   { return p.miniMode }
func (p *Player) CycleVisualizer() { p.Vis.Mode = p.Vis.Mode.Cycle() }

// VolumeUp raises volume by one step, clamped to [0,1]. The engine does
// not clamp, so the bound lives here.
func (p *Player) VolumeUp()   { p.setVolume(p.volume + volumeStep) }
func (p *Player) VolumeDown() { p.setVolume(p.volume - volumeStep) }

func (p *Player) setVolume(v float64) {
	p.volume = lo.Clamp(v, 0, 1)
	p.send(audio.SetVolume{Volume: p.volume})
	if p.sleep != nil {
		p.sleep.originalVolume = p.volume
	}
}

// SetVolume is the remote-facing absolute setter, clamped like the
// stepped variants.
func (p *Player) SetVolume(v float64) { p.setVolume(v) }
func (p *Player) Volume() float64     { return p.volume }

func (p *Player) SpeedUp() {
	if p.speedIdx < len(SpeedLadder)-1 {
		p.speedIdx++
		p.send(audio.SetSpeed{Speed: SpeedLadder[p.speedIdx]})
	}
}

func (p *Player) SpeedDown() {
	if p.speedIdx > 0 {
		p.speedIdx--
		p.send(audio.SetSpeed{Speed: SpeedLadder[p.speedIdx]})
	}
}

func (p *Player) Speed() float64 { return SpeedLadder[p.speedIdx] }

// SeekBy jumps relative to the current position, clamped to the track.
func (p *Player) SeekBy(delta float64) {
	p.SeekTo(p.progress + delta)
}

func (p *Player) SeekTo(target float64) {
	if p.current < 0 {
		return
	}
	target = lo.Clamp(target, 0, p.duration)
	p.send(audio.Seek{Seconds: target})
	p.progress = target
}

// CycleSleepTimer walks the arm ladder 15 → 30 → 45 → 60 minutes and
// then disarms. Re-arming replaces the running timer.
func (p *Player) CycleSleepTimer() {
	next := sleepLadder[0]
	if p.sleep != nil {
		next = 0
		for i, m := range sleepLadder {
			if p.sleep.minutes == m && i+1 < len(sleepLadder) {
				next = sleepLadder[i+1]
				break
			}
		}
	}
	if next == 0 {
		p.clearSleepTimer()
		return
	}
	end := p.now().Add(time.Duration(next) * time.Minute)
	original := p.volume
	if p.sleep != nil {
		original = p.sleep.originalVolume
	}
	p.sleep = &sleepTimer{
		end:            end,
		fadeStart:      end.Add(-fadeWindow),
		originalVolume: original,
		minutes:        next,
	}
}

func (p *Player) clearSleepTimer() {
	if p.sleep == nil {
		return
	}
	p.volume = p.sleep.originalVolume
	p.send(audio.SetVolume{Volume: p.volume})
	p.sleep = nil
}

// SleepMinutes reports the armed duration, 0 when off.
func (p *Player) SleepMinutes() int {
	if p.sleep == nil {
		return 0
	}
	return p.sleep.minutes
}

// SleepRemaining reports time left until pause, 0 when off.
func (p *Player) SleepRemaining() time.Duration {
	if p.sleep == nil {
		return 0
	}
	if d := p.sleep.end.Sub(p.now()); d > 0 {
		return d
	}
	return 0
}

func (p *Player) updateSleepTimer() {
	if p.sleep == nil {
		return
	}
	now := p.now()
	if !now.Before(p.sleep.end) {
		p.send(audio.Pause{})
		p.paused = true
		p.clearSleepTimer()
		return
	}
	if now.Before(p.sleep.fadeStart) {
		return
	}
	remaining := p.sleep.end.Sub(now).Seconds()
	faded := p.sleep.originalVolume * remaining / fadeWindow.Seconds()
	p.send(audio.SetVolume{Volume: faded})
}

// Tick is the orchestration heartbeat, called from the UI loop. It
// drains engine events (only the newest Progress matters), feeds the
// freshest sample chunk to the visualizer, advances the sleep timer and
// refreshes the remote snapshot.
func (p *Player) Tick() {
	p.drainIntents()
	p.drainEvents()
	p.drainChunks()
	p.updateSleepTimer()
	p.refreshSnapshot()
}

func (p *Player) drainEvents() {
	if p.events == nil {
		return
	}
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				p.events = nil
				return
			}
			switch e := ev.(type) {
			case audio.Playing:
				if e.Duration > 0 {
					p.duration = e.Duration
				}
			case audio.Progress:
				p.progress = e.Seconds
			case audio.TrackFinished:
				p.HandleTrackFinished()
			case audio.PlaybackError:
				p.errMsg = e.Message
				p.playing = false
				p.paused = false
			}
		default:
			return
		}
	}
}

func (p *Player) drainChunks() {
	if p.chunks == nil {
		return
	}
	var latest []float64
	for {
		select {
		case chunk, ok := <-p.chunks:
			if !ok {
				p.chunks = nil
				return
			}
			latest = chunk
		default:
			// No fresh chunk while playing: hold the last bars rather
			// than decaying, so brief channel gaps don't flicker.
			switch {
			case latest != nil && p.playing && !p.paused:
				p.Vis.ProcessSamples(latest)
			case !p.playing || p.paused:
				p.Vis.Decay()
			}
			return
		}
	}
}

// Error returns the latest playback error message; each new failure
// overwrites the previous one.
func (p *Player) Error() string     { return p.errMsg }
func (p *Player) ClearError()       { p.errMsg = "" }
func (p *Player) Playing() bool     { return p.playing && !p.paused }
func (p *Player) Paused() bool      { return p.paused }
func (p *Player) Idle() bool        { return p.current < 0 }
func (p *Player) Current() int      { return p.current }
func (p *Player) Selected() int     { return p.selected }
func (p *Player) Progress() float64 { return p.progress }
func (p *Player) Duration() float64 { return p.duration }

// CurrentTrack returns the playing track, or nil when idle.
func (p *Player) CurrentTrack() *library.Track {
	if p.current < 0 || p.current >= len(p.tracks) {
		return nil
	}
	return &p.tracks[p.current]
}
