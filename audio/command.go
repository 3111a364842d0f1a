package audio

// Command is a playback intent sent to the engine. The engine consumes
// commands from a single bounded channel, so ordering between commands
// from one sender is preserved.
type Command interface{ isCommand() }

// Play stops whatever is playing and starts the given file from the top.
type Play struct {
	Path string
}

// Pause suspends output without losing the decode position.
type Pause struct{}

// Resume continues output after a Pause.
type Resume struct{}

// Stop halts output and resets the play position to zero.
type Stop struct{}

// Seek repositions playback to an absolute offset in seconds,
// clamped to the current track's duration.
type Seek struct {
	Seconds float64
}

// SetVolume applies a linear volume multiplier. The engine passes the
// value through unclamped; callers own the valid range.
type SetVolume struct {
	Volume float64
}

// SetSpeed applies a playback speed multiplier to the live output.
type SetSpeed struct {
	Speed float64
}

func (Play) isCommand()      {}
func (Pause) isCommand()     {}
func (Resume) isCommand()    {}
func (Stop) isCommand()      {}
func (Seek) isCommand()      {}
func (SetVolume) isCommand() {}
func (SetSpeed) isCommand()  {}

// Event is emitted by the engine. Sends never block the engine; a
// stalled consumer loses events rather than stalling audio.
type Event interface{ isEvent() }

// Playing reports that a track started. Duration is 0 when the decoder
// cannot determine it.
type Playing struct {
	Duration float64
}

// Progress reports the elapsed play position in seconds. Consumers
// should treat only the most recent Progress as authoritative.
type Progress struct {
	Seconds float64
}

// TrackFinished is emitted exactly once per track, after the decoder is
// exhausted and the output device has drained all buffered audio.
type TrackFinished struct{}

// PlaybackError reports a recoverable playback failure.
type PlaybackError struct {
	Message string
}

func (Playing) isEvent()       {}
func (Progress) isEvent()      {}
func (TrackFinished) isEvent() {}
func (PlaybackError) isEvent() {}
