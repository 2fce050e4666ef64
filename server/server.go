// Package server is the read-only player facade: it serves the persisted
// manifest and streams the referenced media and audio assets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/nexcaster/newscast-cli/pkg/errors"
	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/manifest"
)

// Server serves the broadcast to the browser player.
type Server struct {
	addr         string
	manifestPath string
	mediaDir     string
	audioDir     string
	log          logging.Logger
}

// New creates a player facade server.
func New(addr, manifestPath, mediaDir, audioDir string, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Server{
		addr:         addr,
		manifestPath: manifestPath,
		mediaDir:     mediaDir,
		audioDir:     audioDir,
		log:          log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /manifest", s.handleManifest)
	mux.HandleFunc("GET /media/{name...}", s.serveAsset(s.mediaDir))
	mux.HandleFunc("GET /audio/{name...}", s.serveAsset(s.audioDir))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("player facade listening", logging.F("addr", s.addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleManifest reads the persisted manifest fresh on every request so the
// player always sees the latest build.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	m, err := manifest.Load(s.manifestPath)
	if err != nil {
		if apperrors.IsManifestNotFound(err) {
			http.Error(w, "manifest not built yet", http.StatusNotFound)
			return
		}
		s.log.Error("loading manifest", logging.Err(err))
		http.Error(w, "manifest unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		s.log.Error("writing manifest response", logging.Err(err))
	}
}

// serveAsset streams one file from under root. The requested name is
// re-rooted so path traversal cannot escape the asset directory.
func (s *Server) serveAsset(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		clean := filepath.Clean("/" + name)
		path := filepath.Join(root, strings.TrimPrefix(clean, "/"))

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			s.log.Debug("asset request missed",
				logging.F("name", name),
				logging.Err(apperrors.ErrMediaNotFound))
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
