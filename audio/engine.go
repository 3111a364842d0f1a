package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

const (
	commandBuffer = 32
	eventBuffer   = 64
	chunkBuffer   = 4

	outputRate      = beep.SampleRate(44100)
	progressEvery   = 33 * time.Millisecond
	resampleQuality = 4
	volumeBase      = 2
)

// Engine owns the decode→output pipeline. It runs as a single long-lived
// goroutine (Run) with exclusive ownership of the output device, accepts
// commands through a bounded channel and emits events through another.
// The frame counter and finished flag are the only state shared across
// the engine/UI boundary, both atomic.
type Engine struct {
	commands chan Command
	events   chan Event
	chunks   chan []float64
	quit     chan struct{}
	out      Output

	frames     atomic.Int64
	finished   atomic.Bool
	drained    atomic.Bool
	playbackID atomic.Uint64

	// Current track slot, owned by the Run goroutine. Replaced on Play
	// rather than recursed into, so long sessions keep a flat stack.
	stream    beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	baseRatio float64
	duration  float64
	active    bool

	linearVolume float64
	speed        float64
}

// NewEngine creates an engine on the given output device. Call Run in
// its own goroutine, then talk to it via Send.
func NewEngine(out Output) *Engine {
	return &Engine{
		commands:     make(chan Command, commandBuffer),
		events:       make(chan Event, eventBuffer),
		chunks:       make(chan []float64, chunkBuffer),
		quit:         make(chan struct{}),
		out:          out,
		linearVolume: 1.0,
		speed:        1.0,
	}
}

// Send queues a command without blocking. It reports false when the
// command buffer is full (or the engine is gone), in which case the
// command is discarded.
func (e *Engine) Send(cmd Command) bool {
	select {
	case e.commands <- cmd:
		return true
	default:
		return false
	}
}

// Events returns the engine's outbound event channel.
func (e *Engine) Events() <-chan Event { return e.events }

// Chunks returns the mono sample chunk channel feeding the visualizer.
func (e *Engine) Chunks() <-chan []float64 { return e.chunks }

// Close ends the Run loop. The command channel stays open so late
// Sends fill the buffer and degrade to silent no-ops instead of
// panicking on a closed channel.
func (e *Engine) Close() { close(e.quit) }

// Run is the engine worker loop. It blocks until Close, emitting
// Progress at a fixed cadence and reacting to commands as they arrive.
// An output device that cannot initialize is fatal; everything after
// that is recoverable.
func (e *Engine) Run() {
	if err := e.out.Init(outputRate, outputRate.N(100*time.Millisecond)); err != nil {
		e.emit(PlaybackError{Message: fmt.Sprintf("failed to open audio output: %v", err)})
		return
	}

	ticker := time.NewTicker(progressEvery)
	defer ticker.Stop()

	for {
		select {
		case <-e.quit:
			e.clearCurrent()
			return
		case cmd := <-e.commands:
			e.handle(cmd)
		case <-ticker.C:
			e.emit(Progress{Seconds: e.position()})
			if e.active && e.finished.Load() && e.drained.Load() {
				e.finishTrack()
			}
		}
	}
}

func (e *Engine) handle(cmd Command) {
	switch c := cmd.(type) {
	case Play:
		e.handlePlay(c.Path)
	case Pause:
		e.setPaused(true)
	case Resume:
		e.setPaused(false)
	case Stop:
		e.handleStop()
	case Seek:
		e.handleSeek(c.Seconds)
	case SetVolume:
		e.handleSetVolume(c.Volume)
	case SetSpeed:
		e.handleSetSpeed(c.Speed)
	}
}

func (e *Engine) handlePlay(path string) {
	e.clearCurrent()
	e.frames.Store(0)
	e.finished.Store(false)
	e.drained.Store(false)

	stream, format, err := OpenTrack(path)
	if err != nil {
		e.emit(PlaybackError{Message: fmt.Sprintf("failed to play %s: %v", path, err)})
		return
	}

	e.stream = stream
	e.format = format
	e.duration = TrackDuration(stream, format)

	capture := newCaptureStreamer(stream, format.SampleRate, e.chunks, &e.frames, &e.finished)
	e.resampler = beep.Resample(resampleQuality, format.SampleRate, outputRate, capture)
	e.baseRatio = float64(format.SampleRate) / float64(outputRate)
	e.resampler.SetRatio(e.baseRatio * e.speed)
	e.ctrl = &beep.Ctrl{Streamer: e.resampler}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: volumeBase}
	applyVolume(e.volume, e.linearVolume)

	// The callback fires once the device has pulled every sample, i.e.
	// nothing the user can still hear remains buffered. The id guard
	// ignores stale callbacks from a track replaced by a newer Play.
	id := e.playbackID.Add(1)
	e.out.Play(beep.Seq(e.volume, beep.Callback(func() {
		if e.playbackID.Load() == id {
			e.drained.Store(true)
		}
	})))

	e.active = true
	e.emit(Playing{Duration: e.duration})
}

func (e *Engine) handleStop() {
	e.clearCurrent()
	e.frames.Store(0)
	e.finished.Store(false)
	e.drained.Store(false)
}

func (e *Engine) setPaused(paused bool) {
	if e.ctrl == nil {
		return
	}
	e.out.Lock()
	e.ctrl.Paused = paused
	e.out.Unlock()
}

func (e *Engine) handleSeek(seconds float64) {
	if e.stream == nil {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if e.duration > 0 && seconds > e.duration {
		seconds = e.duration
	}

	// Rewrite the counter first so reported progress reflects the seek
	// target immediately, even if the decoder repositions imprecisely.
	target := e.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	e.frames.Store(int64(target))

	e.out.Lock()
	err := e.stream.Seek(target)
	e.out.Unlock()
	if err != nil {
		slog.Warn("seek failed, continuing from prior position", "error", err)
	}
}

func (e *Engine) handleSetVolume(v float64) {
	e.linearVolume = v
	if e.volume == nil {
		return
	}
	e.out.Lock()
	applyVolume(e.volume, v)
	e.out.Unlock()
}

func (e *Engine) handleSetSpeed(s float64) {
	e.speed = s
	if e.resampler == nil {
		return
	}
	e.out.Lock()
	e.resampler.SetRatio(e.baseRatio * s)
	e.out.Unlock()
}

func (e *Engine) finishTrack() {
	e.finished.Store(false)
	e.drained.Store(false)
	e.clearCurrent()
	e.emit(TrackFinished{})
}

func (e *Engine) clearCurrent() {
	e.out.Clear()
	if e.stream != nil {
		if err := e.stream.Close(); err != nil {
			slog.Warn("failed to close decoder", "error", err)
		}
		e.stream = nil
	}
	e.ctrl = nil
	e.resampler = nil
	e.volume = nil
	e.active = false
	e.duration = 0
}

// position computes elapsed seconds from the shared frame counter,
// independent of how much audio sits in the device buffer.
func (e *Engine) position() float64 {
	rate := e.format.SampleRate
	if rate == 0 {
		return 0
	}
	return float64(e.frames.Load()) / float64(rate)
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// applyVolume maps a linear multiplier onto beep's exponential volume.
// Values above 1 amplify; the engine never clamps.
func applyVolume(vol *effects.Volume, v float64) {
	if v <= 0 {
		vol.Silent = true
		vol.Volume = 0
		return
	}
	vol.Silent = false
	vol.Volume = math.Log2(v)
}
