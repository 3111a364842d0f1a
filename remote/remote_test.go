package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gigurra/groovebox/audio"
	"github.com/gigurra/groovebox/library"
	"github.com/gigurra/groovebox/player"
)

func newTestServer(t *testing.T) (*Server, *player.Player, *[]audio.Command) {
	t.Helper()
	var sent []audio.Command
	tracks := []library.Track{
		{Path: "a.mp3", Title: "Alpha", Artist: "Artist", Duration: 100},
		{Path: "b.mp3", Title: "Beta", Artist: "Artist", Duration: 100},
	}
	p := player.New(tracks, func(c audio.Command) bool {
		sent = append(sent, c)
		return true
	}, nil, nil)
	return NewServer(p, 0), p, &sent
}

func do(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndexServesControlPage(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "groovebox") {
		t.Fatal("control page body missing")
	}
}

func TestStatusReflectsSnapshot(t *testing.T) {
	s, p, _ := newTestServer(t)
	p.Play(0)
	p.Tick()

	rec := do(t, s, http.MethodGet, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var snap player.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad status JSON: %v", err)
	}
	if snap.Title != "Alpha" || !snap.Playing {
		t.Fatalf("snapshot = %+v, want Alpha playing", snap)
	}
}

func TestIntentEndpointsQueueForNextTick(t *testing.T) {
	s, p, _ := newTestServer(t)
	p.Play(0)
	p.Tick()

	rec := do(t, s, http.MethodPost, "/api/next")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rec.Code)
	}

	// Nothing applied until the orchestrator ticks.
	if p.Current() != 0 {
		t.Fatalf("intent applied before tick, index %d", p.Current())
	}
	p.Tick()
	if p.Current() != 1 {
		t.Fatalf("intent not applied on tick, index %d", p.Current())
	}
}

func TestVolumeClampedAtBoundary(t *testing.T) {
	s, p, sent := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/volume?v=3.5")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rec.Code)
	}
	p.Tick()

	found := false
	for _, c := range *sent {
		if v, ok := c.(audio.SetVolume); ok {
			found = true
			if v.Volume != 1.0 {
				t.Fatalf("volume %v reached the engine, want clamped 1.0", v.Volume)
			}
		}
	}
	if !found {
		t.Fatal("no SetVolume command issued")
	}
}

func TestVolumeRejectsGarbage(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/api/volume?v=loud"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestSeekRejectsNegative(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := do(t, s, http.MethodPost, "/api/seek?t=-5"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestSeekQueuesIntent(t *testing.T) {
	s, p, _ := newTestServer(t)
	p.Play(0)
	p.Tick()

	if rec := do(t, s, http.MethodPost, "/api/seek?t=42"); rec.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rec.Code)
	}
	p.Tick()
	if p.Progress() != 42 {
		t.Fatalf("progress %v, want 42 after seek intent", p.Progress())
	}
}

func TestIntentMethodsRestricted(t *testing.T) {
	s, _, _ := newTestServer(t)
	if rec := do(t, s, http.MethodGet, "/api/next"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405 for GET on intent endpoint", rec.Code)
	}
}
