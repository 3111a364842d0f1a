// Package remote serves a small phone-friendly control page and a JSON
// API that maps 1:1 onto orchestrator intents.
package remote

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gigurra/groovebox/player"
	"github.com/samber/lo"
)

//go:embed remote.html
var controlPage []byte

// Server exposes the player over HTTP. It never mutates player state
// directly: intents go through the player's queue and are applied on
// the next orchestration tick.
type Server struct {
	player *player.Player
	http   *http.Server
}

func NewServer(p *player.Player, port int) *Server {
	s := &Server{player: p}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/toggle", s.intent(player.RemoteIntent{Kind: player.IntentToggle}))
	mux.HandleFunc("POST /api/next", s.intent(player.RemoteIntent{Kind: player.IntentNext}))
	mux.HandleFunc("POST /api/prev", s.intent(player.RemoteIntent{Kind: player.IntentPrev}))
	mux.HandleFunc("POST /api/theme", s.intent(player.RemoteIntent{Kind: player.IntentCycleTheme}))
	mux.HandleFunc("POST /api/visualizer", s.intent(player.RemoteIntent{Kind: player.IntentCycleVisualizer}))
	mux.HandleFunc("POST /api/shuffle", s.intent(player.RemoteIntent{Kind: player.IntentToggleShuffle}))
	mux.HandleFunc("POST /api/volume", s.handleVolume)
	mux.HandleFunc("POST /api/seek", s.handleSeek)

	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: logRequests(mux),
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("remote control listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("remote shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		return err
	}
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(controlPage)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.player.Snapshot()); err != nil {
		slog.Warn("failed to encode status", "error", err)
	}
}

func (s *Server) intent(in player.RemoteIntent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.post(w, in)
	}
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseFloat(r.URL.Query().Get("v"), 64)
	if err != nil {
		http.Error(w, "invalid volume", http.StatusBadRequest)
		return
	}
	// The engine passes volume through unclamped, so the boundary
	// enforces the displayable range.
	s.post(w, player.RemoteIntent{Kind: player.IntentSetVolume, Value: lo.Clamp(v, 0, 1)})
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	t, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil || t < 0 {
		http.Error(w, "invalid position", http.StatusBadRequest)
		return
	}
	s.post(w, player.RemoteIntent{Kind: player.IntentSeek, Value: t})
}

func (s *Server) post(w http.ResponseWriter, in player.RemoteIntent) {
	if !s.player.PostIntent(in) {
		http.Error(w, "player busy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Debug("remote request",
			"status", rw.status, "method", r.Method, "path", r.URL.Path,
			"duration", time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
