package audio

import (
	"sync/atomic"
	"testing"

	"github.com/gopxl/beep/v2"
)

// constStreamer yields a fixed number of frames with distinct channel
// values, then reports exhaustion.
type constStreamer struct {
	left, right float64
	remaining   int
}

func (s *constStreamer) Stream(samples [][2]float64) (int, bool) {
	if s.remaining <= 0 {
		return 0, false
	}
	n := len(samples)
	if s.remaining < n {
		n = s.remaining
	}
	for i := 0; i < n; i++ {
		samples[i][0] = s.left
		samples[i][1] = s.right
	}
	s.remaining -= n
	return n, true
}

func (s *constStreamer) Err() error { return nil }

func pull(s beep.Streamer, frames int) {
	buf := make([][2]float64, 512)
	for frames > 0 {
		n := len(buf)
		if frames < n {
			n = frames
		}
		if _, ok := s.Stream(buf[:n]); !ok {
			return
		}
		frames -= n
	}
}

func TestCaptureCountsFramesAndDownmixes(t *testing.T) {
	var frames atomic.Int64
	var finished atomic.Bool
	chunks := make(chan []float64, 4)

	rate := beep.SampleRate(30000) // chunk size 1000 frames
	src := &constStreamer{left: 0.2, right: 0.6, remaining: 2500}
	c := newCaptureStreamer(src, rate, chunks, &frames, &finished)

	pull(c, 2500)

	if got := frames.Load(); got != 2500 {
		t.Fatalf("frame counter = %d, want 2500", got)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2 (2500 frames / 1000 per chunk)", len(chunks))
	}
	chunk := <-chunks
	if len(chunk) != 1000 {
		t.Fatalf("chunk length = %d, want 1000", len(chunk))
	}
	for i, v := range chunk {
		if v != 0.4 {
			t.Fatalf("chunk[%d] = %v, want mono average 0.4", i, v)
		}
	}
}

func TestCaptureSetsFinishedOnExhaustion(t *testing.T) {
	var frames atomic.Int64
	var finished atomic.Bool
	chunks := make(chan []float64, 4)

	src := &constStreamer{remaining: 100}
	c := newCaptureStreamer(src, beep.SampleRate(44100), chunks, &frames, &finished)

	pull(c, 100)
	if finished.Load() {
		t.Fatal("finished flag raised before the stream was exhausted")
	}

	// One more pull hits the dry source.
	buf := make([][2]float64, 16)
	if _, ok := c.Stream(buf); ok {
		t.Fatal("expected exhausted stream")
	}
	if !finished.Load() {
		t.Fatal("finished flag not raised on exhaustion")
	}
}

func TestCaptureDropsChunksUnderBackpressure(t *testing.T) {
	var frames atomic.Int64
	var finished atomic.Bool
	chunks := make(chan []float64, 1)

	rate := beep.SampleRate(30) // chunk size 1 frame
	src := &constStreamer{left: 1, right: 1, remaining: 50}
	c := newCaptureStreamer(src, rate, chunks, &frames, &finished)

	// Nobody reads the channel; this must not block.
	pull(c, 50)

	if got := frames.Load(); got != 50 {
		t.Fatalf("frame counter = %d, want 50 despite backpressure", got)
	}
	if len(chunks) != 1 {
		t.Fatalf("channel holds %d chunks, want 1 (rest dropped)", len(chunks))
	}
}
