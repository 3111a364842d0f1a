package common

import (
	"path/filepath"
	"testing"
)

func TestCacheDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	if got := CacheDir(); got != filepath.Join("/tmp/xdg-cache", "groovebox") {
		t.Fatalf("CacheDir() = %q", got)
	}
}

func TestCacheDirFallsBackToHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "/tmp/fakehome")
	if got := CacheDir(); got != filepath.Join("/tmp/fakehome", ".cache", "groovebox") {
		t.Fatalf("CacheDir() = %q", got)
	}
}
