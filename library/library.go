// Package library scans directories for playable tracks, caches scan
// results and watches for changes.
package library

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gigurra/groovebox/audio"
	"github.com/gigurra/groovebox/metadata"
)

// Track is one playable file. Immutable once scanned; the player refers
// to tracks by playlist index.
type Track struct {
	Path        string  `json:"path"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	TrackNumber int     `json:"track_number,omitempty"`
	Duration    float64 `json:"duration"`
	SampleRate  int     `json:"sample_rate,omitempty"`
	Bitrate     int     `json:"bitrate,omitempty"` // kbit/s, estimated from size
	Format      string  `json:"format"`
	FileSize    int64   `json:"file_size"`
}

// Scan walks dir recursively and returns all decodable tracks sorted by
// artist, album, track number, title. A non-nil cache short-circuits the
// walk when its entry for dir is still fresh.
func Scan(dir string, cache CacheStore) ([]Track, error) {
	if cache != nil {
		if tracks, ok := cache.Load(dir); ok {
			return tracks, nil
		}
	}

	var tracks []Track
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() || !audio.IsAudioFile(path) {
			return nil
		}
		tracks = append(tracks, scanFile(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sortTracks(tracks)

	if cache != nil {
		if err := cache.Save(dir, tracks); err != nil {
			slog.Warn("failed to save library cache", "error", err)
		}
	}
	return tracks, nil
}

// ScanFile builds a single-track library from one file.
func ScanFile(path string) ([]Track, error) {
	if !audio.IsAudioFile(path) {
		return nil, fmt.Errorf("%s: %w", path, audio.ErrUnsupportedFormat)
	}
	return []Track{scanFile(path)}, nil
}

// scanFile never fails: unreadable tags fall back to filename-derived
// defaults, and an unprobeable stream just leaves duration at zero.
func scanFile(path string) Track {
	track := Track{
		Path:   path,
		Format: strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
	}
	if info, err := os.Stat(path); err == nil {
		track.FileSize = info.Size()
	}

	if meta, err := metadata.Read(path); err == nil {
		track.Title = meta.Title
		track.Artist = meta.Artist
		track.Album = meta.Album
		track.TrackNumber = meta.TrackNumber
	}
	if track.Title == "" {
		track.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if track.Artist == "" {
		track.Artist = "Unknown Artist"
	}
	if track.Album == "" {
		track.Album = "Unknown Album"
	}

	if stream, format, err := audio.OpenTrack(path); err == nil {
		track.Duration = audio.TrackDuration(stream, format)
		track.SampleRate = int(format.SampleRate)
		_ = stream.Close()
	}
	if track.Duration > 0 {
		track.Bitrate = int(float64(track.FileSize) * 8 / track.Duration / 1000)
	}
	return track
}

func sortTracks(tracks []Track) {
	sort.Slice(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if ar, br := strings.ToLower(a.Artist), strings.ToLower(b.Artist); ar != br {
			return ar < br
		}
		if al, bl := strings.ToLower(a.Album), strings.ToLower(b.Album); al != bl {
			return al < bl
		}
		if a.TrackNumber != b.TrackNumber {
			return a.TrackNumber < b.TrackNumber
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}
