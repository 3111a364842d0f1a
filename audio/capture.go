package audio

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
)

// chunksPerSecond sets how often the capture streamer hands a mono
// chunk to the visualizer (roughly one per UI frame at 30fps).
const chunksPerSecond = 30

// captureStreamer wraps the decoded stream before resampling. For every
// frame pulled through it, it advances the shared frame counter and
// buffers a mono downmix; full buffers are forwarded to the visualizer
// channel. When the decoder runs dry it raises the finished flag.
type captureStreamer struct {
	inner    beep.Streamer
	chunks   chan<- []float64
	frames   *atomic.Int64
	finished *atomic.Bool
	buf      []float64
	size     int
}

func newCaptureStreamer(
	inner beep.Streamer,
	rate beep.SampleRate,
	chunks chan<- []float64,
	frames *atomic.Int64,
	finished *atomic.Bool,
) *captureStreamer {
	size := int(rate) / chunksPerSecond
	if size < 1 {
		size = 1
	}
	return &captureStreamer{
		inner:    inner,
		chunks:   chunks,
		frames:   frames,
		finished: finished,
		buf:      make([]float64, 0, size),
		size:     size,
	}
}

func (c *captureStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.inner.Stream(samples)
	for i := 0; i < n; i++ {
		c.frames.Add(1)
		c.buf = append(c.buf, (samples[i][0]+samples[i][1])/2)
		if len(c.buf) >= c.size {
			c.flush()
		}
	}
	if !ok {
		c.finished.Store(true)
	}
	return n, ok
}

func (c *captureStreamer) Err() error { return c.inner.Err() }

// flush forwards the buffered chunk without ever blocking: under
// backpressure the chunk is dropped and visualization skips a frame.
func (c *captureStreamer) flush() {
	chunk := make([]float64, len(c.buf))
	copy(chunk, c.buf)
	select {
	case c.chunks <- chunk:
	default:
	}
	c.buf = c.buf[:0]
}
