// Package web serves the Kanban board and its JSON API. It is the only
// boundary that turns repository and config failures into client-facing
// error responses.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/bborn/jobdone/internal/config"
	"github.com/bborn/jobdone/internal/hooks"
	"github.com/bborn/jobdone/internal/task"
	"github.com/bborn/jobdone/internal/watcher"
	"github.com/charmbracelet/log"
)

// Server is the Kanban board web server.
type Server struct {
	root    string
	cfg     config.Config
	repo    *task.Repo
	watcher *watcher.Watcher
	hooks   *hooks.Runner
	addr    string
	logger  *log.Logger
}

// Config holds server configuration.
type Config struct {
	Root   string
	Addr   string
	Config config.Config
}

// New creates a new board server.
func New(cfg Config) *Server {
	return &Server{
		root:    cfg.Root,
		cfg:     cfg.Config,
		repo:    task.NewRepo(cfg.Root),
		watcher: watcher.New(),
		hooks:   hooks.New(cfg.Root),
		addr:    cfg.Addr,
		logger:  log.NewWithOptions(os.Stderr, log.Options{Prefix: "web"}),
	}
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.watcher.Start(s.root, s.cfg.Statuses); err != nil {
		return err
	}
	defer s.watcher.Stop()

	server := &http.Server{
		Addr:    s.addr,
		Handler: s.handler(),
		// No WriteTimeout: /api/events connections stay open indefinitely.
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	s.logger.Info("starting board server", "addr", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// handler builds the route table.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("POST /api/tasks/move", s.handleMoveTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)

	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)

	// Everything unmatched gets a JSON 404.
	mux.HandleFunc("/", s.handleNotFound)

	return s.loggingMiddleware(mux)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// JSON response helpers
func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

func parseJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// getIDParam extracts the numeric task ID from the URL path.
func getIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleNotFound handles every unmatched route.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	jsonError(w, "Not found", http.StatusNotFound)
}
