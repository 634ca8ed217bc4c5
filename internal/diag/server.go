package diag

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server serves the most recently rendered raster for each server label over
// HTTP, for operators eyeballing the current fusion state without tailing
// the sink log. It holds only the latest frame per label in memory; nothing
// is persisted to disk unless the caller also calls WriteFile.
type Server struct {
	mu      sync.Mutex
	latest  map[string][]byte
	log     *logrus.Logger
	router  *mux.Router
	httpSrv *http.Server
}

// NewServer builds a Server bound to addr, routed with gorilla/mux.
func NewServer(addr string, log *logrus.Logger) *Server {
	s := &Server{
		latest: make(map[string][]byte),
		log:    log,
	}
	r := mux.NewRouter()
	r.HandleFunc("/debug/raster/{server}", s.handleRaster).Methods(http.MethodGet)
	r.HandleFunc("/debug/raster", s.handleIndex).Methods(http.MethodGet)
	s.router = r
	s.httpSrv = &http.Server{Addr: addr, Handler: r}
	return s
}

// Handler returns the server's routed http.Handler, for tests and for
// callers that want to mount it under their own http.Server instead of
// using ListenAndServe.
func (s *Server) Handler() http.Handler { return s.router }

// PublishImage PNG-encodes img and stores it as the latest raster for
// serverLabel, overwriting whatever was previously published.
func (s *Server) PublishImage(serverLabel string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errors.Wrap(err, "diag: encoding raster for publish")
	}
	s.mu.Lock()
	s.latest[serverLabel] = buf.Bytes()
	s.mu.Unlock()
	return nil
}

func (s *Server) handleRaster(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["server"]
	s.mu.Lock()
	data, ok := s.latest[label]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	labels := make([]string, 0, len(s.latest))
	for label := range s.latest {
		labels = append(labels, label)
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<html><body><ul>"))
	for _, label := range labels {
		_, _ = w.Write([]byte("<li><a href=\"/debug/raster/" + label + "\">" + label + "</a></li>"))
	}
	_, _ = w.Write([]byte("</ul></body></html>"))
}

// ListenAndServe starts the HTTP server. It blocks until the server stops,
// mirroring net/http.Server.ListenAndServe's own contract.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.httpSrv.Addr).Info("diag: debug raster server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
