package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/samber/lo"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Extensions lists the file extensions the decoders understand.
var Extensions = []string{".mp3", ".flac", ".wav", ".ogg"}

// IsAudioFile reports whether path has a decodable extension.
func IsAudioFile(path string) bool {
	return lo.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// OpenTrack opens path and selects a decoder by extension. The returned
// streamer produces interleaved float frames at the returned format's
// rate; it owns the underlying file and must be closed.
func OpenTrack(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var stream beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, err
	}
	return stream, format, nil
}

// TrackDuration returns the total duration of the stream in seconds,
// or 0 when the decoder does not know its length.
func TrackDuration(stream beep.StreamSeekCloser, format beep.Format) float64 {
	if n := stream.Len(); n > 0 {
		return format.SampleRate.D(n).Seconds()
	}
	return 0
}
