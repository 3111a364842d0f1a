package library

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CacheStore persists scan results per directory with a freshness
// check, so unchanged libraries skip the full walk on startup.
type CacheStore interface {
	// Load returns the cached track list for dir, and whether the
	// entry exists and is still fresh.
	Load(dir string) ([]Track, bool)
	Save(dir string, tracks []Track) error
}

type cachedLibrary struct {
	Directory    string  `json:"directory"`
	ModifiedTime int64   `json:"modified_time"`
	Tracks       []Track `json:"tracks"`
}

// FileCache is the default CacheStore: one JSON file under the user
// config dir. An entry is stale once the directory's modification time
// passes the recorded one.
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// DefaultCachePath places the cache under XDG config
// (~/.config/groovebox/library.json on most systems).
func DefaultCachePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return filepath.Join(base, "groovebox", "library.json"), nil
}

func (c *FileCache) Load(dir string) ([]Track, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var cached cachedLibrary
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	if cached.Directory != dir {
		return nil, false
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, false
	}
	if info.ModTime().Unix() > cached.ModifiedTime {
		return nil, false
	}
	return cached.Tracks, true
}

func (c *FileCache) Save(dir string, tracks []Track) error {
	modified := int64(0)
	if info, err := os.Stat(dir); err == nil {
		modified = info.ModTime().Unix()
	}

	data, err := json.MarshalIndent(cachedLibrary{
		Directory:    dir,
		ModifiedTime: modified,
		Tracks:       tracks,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode library cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write library cache: %w", err)
	}
	return nil
}
