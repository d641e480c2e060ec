package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"apptcal/internal/appointment"
	"apptcal/internal/auth"
	"apptcal/internal/config"
	appLog "apptcal/internal/log"
	"apptcal/internal/model"
)

// Server serves the month page, its form actions and the JSON/ICS API
// around a single appointment Store.
type Server struct {
	cfg  *config.Config
	mux  *http.ServeMux
	auth *auth.Verifier

	// mu serializes every store transition. The store itself is not
	// safe for concurrent use.
	mu     sync.Mutex
	store  *appointment.Store
	notice string
}

// NewServer constructs a new Server around store.
func NewServer(cfg *config.Config, store *appointment.Store) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		cfg:   cfg,
		mux:   http.NewServeMux(),
		auth:  auth.NewVerifier(cfg.BasicAuth),
		store: store,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	h = logRequests(h)
	if s.auth != nil {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Insert adds an imported appointment under the server lock, so background
// feed imports never race the browser.
func (s *Server) Insert(a model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Insert(a)
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !s.auth.Verify(u, p) {
			w.Header().Set("WWW-Authenticate", `Basic realm="apptcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start).String(),
		)
	})
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)

	s.mux.HandleFunc("POST /prev", s.handlePrev)
	s.mux.HandleFunc("POST /next", s.handleNext)
	s.mux.HandleFunc("POST /day", s.handleSelectDay)
	s.mux.HandleFunc("POST /appointment", s.handleSelectAppointment)
	s.mux.HandleFunc("POST /draft/create", s.handleSubmitCreate)
	s.mux.HandleFunc("POST /draft/update", s.handleSubmitUpdate)
	s.mux.HandleFunc("POST /draft/edit", s.handleRequestEdit)
	s.mux.HandleFunc("POST /draft/delete", s.handleRequestDelete)
	s.mux.HandleFunc("POST /draft/cancel", s.handleCancel)
	s.mux.HandleFunc("POST /undo", s.handleUndo)

	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/appointments.ics", s.handleExport)
	s.mux.HandleFunc("POST /api/import", s.handleImport)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last captured PNG. http.ServeFile answers 404
// until the first capture has run.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Capture.Output)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
