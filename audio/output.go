package audio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the audio device boundary. The engine is its only user;
// no other component touches the device. Tests inject a hand-pumped
// implementation so the engine can run without a sound card.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	// Lock/Unlock guard state shared with the device's streaming
	// goroutine (pause flags, resampler ratio, volume).
	Lock()
	Unlock()
}

// speakerOutput backs Output with the process-wide beep speaker.
type speakerOutput struct{}

// NewSpeakerOutput returns the real sound device output.
func NewSpeakerOutput() Output { return speakerOutput{} }

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Clear()               { speaker.Clear() }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }
