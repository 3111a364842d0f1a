package library

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// writeTestWAV drops a minimal PCM wav so the scanner has something
// decodable to probe.
func writeTestWAV(t *testing.T, path string, rate int, seconds float64) {
	t.Helper()

	frames := int(float64(rate) * seconds)
	dataLen := frames * 2
	buf := make([]byte, 0, 44+dataLen)
	le := binary.LittleEndian

	u32 := func(v uint32) {
		var b [4]byte
		le.PutUint32(b[:], v)
		buf = append(buf, b[:]...)
	}
	u16 := func(v uint16) {
		var b [2]byte
		le.PutUint16(b[:], v)
		buf = append(buf, b[:]...)
	}

	buf = append(buf, "RIFF"...)
	u32(uint32(36 + dataLen))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	u32(16)
	u16(1)
	u16(1)
	u32(uint32(rate))
	u32(uint32(rate * 2))
	u16(2)
	u16(16)
	buf = append(buf, "data"...)
	u32(uint32(dataLen))
	buf = append(buf, make([]byte, dataLen)...)

	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
}

func TestScanFindsAndSortsTracks(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	writeTestWAV(t, filepath.Join(dir, "bravo.wav"), 22050, 0.2)
	writeTestWAV(t, filepath.Join(dir, "sub", "alpha.wav"), 22050, 0.2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tracks, err := Scan(dir, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("found %d tracks, want 2", len(tracks))
	}
	if tracks[0].Title != "alpha" || tracks[1].Title != "bravo" {
		t.Fatalf("tracks not sorted by title: %q, %q", tracks[0].Title, tracks[1].Title)
	}
	for _, tr := range tracks {
		if tr.Artist != "Unknown Artist" || tr.Album != "Unknown Album" {
			t.Errorf("untagged track defaults wrong: %+v", tr)
		}
		if tr.Duration < 0.15 || tr.Duration > 0.25 {
			t.Errorf("duration = %v, want ~0.2s", tr.Duration)
		}
		if tr.SampleRate != 22050 {
			t.Errorf("sample rate = %d, want 22050", tr.SampleRate)
		}
		if tr.Format != "WAV" {
			t.Errorf("format = %q, want WAV", tr.Format)
		}
	}
}

// fixedCache always reports a fresh entry.
type fixedCache struct {
	tracks []Track
	saved  bool
}

func (c *fixedCache) Load(dir string) ([]Track, bool) { return c.tracks, c.tracks != nil }
func (c *fixedCache) Save(dir string, tracks []Track) error {
	c.saved = true
	return nil
}

func TestScanUsesFreshCache(t *testing.T) {
	dir := t.TempDir()
	writeTestWAV(t, filepath.Join(dir, "real.wav"), 22050, 0.2)

	cache := &fixedCache{tracks: []Track{{Path: "cached.mp3", Title: "cached"}}}
	tracks, err := Scan(dir, cache)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(tracks) != 1 || tracks[0].Title != "cached" {
		t.Fatalf("fresh cache ignored, got %+v", tracks)
	}
	if cache.saved {
		t.Fatal("Save called despite cache hit")
	}
}

func TestScanSavesToCache(t *testing.T) {
	dir := t.TempDir()
	writeTestWAV(t, filepath.Join(dir, "one.wav"), 22050, 0.2)

	cache := &fixedCache{}
	if _, err := Scan(dir, cache); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !cache.saved {
		t.Fatal("scan result was not saved to the cache")
	}
}

func TestFileCacheFreshness(t *testing.T) {
	dir := t.TempDir()
	writeTestWAV(t, filepath.Join(dir, "one.wav"), 22050, 0.2)

	cachePath := filepath.Join(t.TempDir(), "library.json")
	cache := NewFileCache(cachePath)

	tracks, err := Scan(dir, cache)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if got, ok := cache.Load(dir); !ok || len(got) != len(tracks) {
		t.Fatalf("cache miss right after save (ok=%v, n=%d)", ok, len(got))
	}

	// Different directory never matches.
	if _, ok := cache.Load(t.TempDir()); ok {
		t.Fatal("cache hit for a different directory")
	}

	// Backdate the recorded modtime; the entry must go stale.
	data, err := os.ReadFile(cachePath)
	if err != nil {
		t.Fatal(err)
	}
	var cached cachedLibrary
	if err := json.Unmarshal(data, &cached); err != nil {
		t.Fatal(err)
	}
	cached.ModifiedTime -= 3600
	data, _ = json.Marshal(cached)
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Load(dir); ok {
		t.Fatal("cache hit despite directory being newer than the entry")
	}
}

func TestScanFileRejectsNonAudio(t *testing.T) {
	if _, err := ScanFile("document.pdf"); err == nil {
		t.Fatal("expected error for non-audio file")
	}
}
