package player

// Snapshot is the read model handed to the remote control. It is
// refreshed on every orchestration tick and safe to read from other
// goroutines.
type Snapshot struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Playing    bool    `json:"playing"`
	Paused     bool    `json:"paused"`
	Progress   float64 `json:"progress"`
	Duration   float64 `json:"duration"`
	Volume     float64 `json:"volume"`
	Speed      float64 `json:"speed"`
	Shuffle    bool    `json:"shuffle"`
	Repeat     string  `json:"repeat"`
	Theme      string  `json:"theme"`
	Visualizer string  `json:"visualizer"`
	SleepMin   int     `json:"sleep_minutes"`
	Error      string  `json:"error,omitempty"`
}

// RemoteIntentKind is the closed set of actions the remote may request.
type RemoteIntentKind int

const (
	IntentToggle RemoteIntentKind = iota
	IntentNext
	IntentPrev
	IntentSetVolume
	IntentSeek
	IntentCycleTheme
	IntentCycleVisualizer
	IntentToggleShuffle
)

// RemoteIntent carries one remote action; Value is used by SetVolume
// and Seek only.
type RemoteIntent struct {
	Kind  RemoteIntentKind
	Value float64
}

// PostIntent queues an intent for the next tick without blocking.
// Returns false when the queue is full and the intent was dropped.
func (p *Player) PostIntent(intent RemoteIntent) bool {
	select {
	case p.intents <- intent:
		return true
	default:
		return false
	}
}

func (p *Player) drainIntents() {
	for {
		select {
		case intent := <-p.intents:
			p.applyIntent(intent)
		default:
			return
		}
	}
}

func (p *Player) applyIntent(intent RemoteIntent) {
	switch intent.Kind {
	case IntentToggle:
		p.Toggle()
	case IntentNext:
		p.Next()
	case IntentPrev:
		p.Prev()
	case IntentSetVolume:
		p.SetVolume(intent.Value)
	case IntentSeek:
		p.SeekTo(intent.Value)
	case IntentCycleTheme:
		p.CycleTheme()
	case IntentCycleVisualizer:
		p.CycleVisualizer()
	case IntentToggleShuffle:
		p.ToggleShuffle()
	}
}

func (p *Player) refreshSnapshot() {
	snap := Snapshot{
		Playing:    p.playing && !p.paused,
		Paused:     p.paused,
		Progress:   p.progress,
		Duration:   p.duration,
		Volume:     p.volume,
		Speed:      p.Speed(),
		Shuffle:    p.shuffle,
		Repeat:     p.repeat.String(),
		Theme:      p.theme.String(),
		Visualizer: p.Vis.Mode.String(),
		SleepMin:   p.SleepMinutes(),
		Error:      p.errMsg,
	}
	if t := p.CurrentTrack(); t != nil {
		snap.Title = t.Title
		snap.Artist = t.Artist
		snap.Album = t.Album
	}
	p.snapMu.Lock()
	p.snap = snap
	p.snapMu.Unlock()
}

// Snapshot returns the most recently published read model.
func (p *Player) Snapshot() Snapshot {
	p.snapMu.Lock()
	defer p.snapMu.Unlock()
	return p.snap
}
