package library

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gigurra/groovebox/audio"
)

const watchDebounce = 500 * time.Millisecond

// Watch observes dir (recursively) for added, removed or rewritten
// audio files and signals on the returned channel, debounced so a bulk
// copy produces one rescan. The returned stop function releases the
// watcher.
func Watch(dir string) (<-chan struct{}, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	// Watch every subdirectory; fsnotify is not recursive by itself.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
	if err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	changed := make(chan struct{}, 1)
	done := make(chan struct{})

	var mu sync.Mutex
	var debounce *time.Timer
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if debounce != nil {
			debounce.Stop()
		}
		debounce = time.AfterFunc(watchDebounce, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					// New directories join the watch set.
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				if audio.IsAudioFile(event.Name) || event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					trigger()
				}
			case <-watcher.Errors:
			}
		}
	}()

	stop := func() {
		close(done)
		_ = watcher.Close()
	}
	return changed, stop, nil
}
