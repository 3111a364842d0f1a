// Package metadata extracts display tags from audio files. Failures are
// expected (untagged files, exotic containers) and callers fall back to
// filename-derived defaults.
package metadata

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// TrackMetadata holds the tags a track carries. Zero values mean the
// tag was absent.
type TrackMetadata struct {
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	CoverArt    []byte
}

// Read probes path for ID3/Vorbis/MP4 tags.
func Read(path string) (TrackMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return TrackMetadata{}, err
	}
	defer func() { _ = f.Close() }()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return TrackMetadata{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}

	meta := TrackMetadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}
	meta.TrackNumber, _ = m.Track()
	if pic := m.Picture(); pic != nil {
		meta.CoverArt = pic.Data
	}
	return meta, nil
}
