package status

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"skyview/internal/sequencer"
	"skyview/internal/types"
)

// ImageWriter produces the current composite image on demand.
// Implemented by overview.Assembler.
type ImageWriter interface {
	WriteImage(ctx context.Context, w io.Writer) error
}

// state is the mutex-guarded cell the sequencer's observer writes and the
// HTTP handlers read. The daemon stays single-threaded otherwise; this is
// the only cross-goroutine state and it is advisory, never authoritative.
type state struct {
	mu   sync.Mutex
	last sequencer.TickResult
	seen bool
}

func (s *state) observe(res sequencer.TickResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = res
	s.seen = true
}

func (s *state) snapshot() (sequencer.TickResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seen
}

// Server is the daemon's optional read-only HTTP surface: liveness, the
// last tick's outcome, and the current composite image. It never mutates
// sequencer state.
type Server struct {
	logger *slog.Logger
	images ImageWriter
	state  *state
	router *chi.Mux
}

// ServerConfig holds the dependencies for creating a Server.
type ServerConfig struct {
	Images ImageWriter
	Logger *slog.Logger
}

// NewServer creates the HTTP surface and mounts its routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger: logger,
		images: cfg.Images,
		state:  &state{},
		router: chi.NewRouter(),
	}
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/status", s.handleStatus)
	s.router.Get("/latest.jpg", s.handleLatest)
	return s
}

// Observer returns the sequencer.Observer feeding this server.
func (s *Server) Observer() sequencer.Observer {
	return s.state.observe
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// tickView is the JSON shape of the last tick for /status.
type tickView struct {
	Time       time.Time   `json:"time"`
	Night      string      `json:"night"`
	Phase      types.Phase `json:"phase"`
	FrameIndex int         `json:"frame_index"`
	FramePath  string      `json:"frame_path,omitempty"`
	VideoPath  string      `json:"video_path,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	last, seen := s.state.snapshot()
	if !seen {
		http.Error(w, "no tick observed yet", http.StatusServiceUnavailable)
		return
	}
	view := tickView{
		Time:       last.Time,
		Night:      last.Night.String(),
		Phase:      last.Phase,
		FrameIndex: last.FrameIndex,
		FramePath:  last.FramePath,
		VideoPath:  last.VideoPath,
	}
	if last.Err != nil {
		view.Error = last.Err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		http.Error(w, "no image source configured", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	if err := s.images.WriteImage(r.Context(), w); err != nil {
		s.logger.Error("serving latest composite failed", "error", err)
	}
}
