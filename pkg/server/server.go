// Package server exposes a skill registry over a small JSON HTTP API.
// It lists and fetches skills, reports registry status, and triggers
// reloads of the source directory.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jingkaihe/skillreg/pkg/config"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/jingkaihe/skillreg/pkg/presenter"
	"github.com/jingkaihe/skillreg/pkg/skills"
	"github.com/pkg/errors"
)

// Server represents the skills HTTP server
type Server struct {
	router   *mux.Router
	registry *skills.Registry
	config   config.ServeConfig
	server   *http.Server
}

// NewServer creates a server for a loaded registry
func NewServer(registry *skills.Registry, cfg config.ServeConfig) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	s := &Server{
		router:   mux.NewRouter(),
		registry: registry,
		config:   cfg,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/skills", s.handleListSkills).Methods("GET")
	api.HandleFunc("/skills/{name:.+}", s.handleGetSkill).Methods("GET")
	api.HandleFunc("/reload", s.handleReload).Methods("POST")
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/schema", s.handleSchema).Methods("GET")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Debug("HTTP request")
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ListSkillsResponse is the body of GET /api/skills
type ListSkillsResponse struct {
	Skills     []skills.Summary `json:"skills"`
	Total      int              `json:"total"`
	Generation string           `json:"generation"`
}

// StatusResponse is the body of GET /api/status
type StatusResponse struct {
	Loaded     bool       `json:"loaded"`
	Total      int        `json:"total"`
	Generation string     `json:"generation"`
	LoadedAt   *time.Time `json:"loadedAt,omitempty"`
	Source     string     `json:"source"`
}

// ReloadResponse is the body of a successful POST /api/reload
type ReloadResponse struct {
	Success    bool           `json:"success"`
	Total      int            `json:"total"`
	Generation string         `json:"generation"`
	Changes    skills.Changes `json:"changes"`
}

// handleListSkills handles GET /api/skills
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Snapshot()
	s.writeJSONResponse(w, r, ListSkillsResponse{
		Skills:     snap.Summaries(),
		Total:      snap.Len(),
		Generation: snap.ID(),
	})
}

// handleGetSkill handles GET /api/skills/{name}
func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	skill, err := s.registry.Get(name)
	if err != nil {
		if skills.IsNotFound(err) {
			s.writeErrorResponse(w, r, http.StatusNotFound, err.Error(), nil)
			return
		}
		s.writeErrorResponse(w, r, http.StatusInternalServerError, "failed to get skill", err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSONResponse(w, r, skill.Detail())
	case "html":
		html, err := skills.RenderHTML(skill)
		if err != nil {
			s.writeErrorResponse(w, r, http.StatusInternalServerError, "failed to render skill", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(skill.Body))
	default:
		s.writeErrorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("unsupported format '%s'", format), nil)
	}
}

// handleReload handles POST /api/reload
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	after, changes, err := s.registry.ReloadChanges(r.Context())
	if err != nil {
		switch {
		case skills.IsMalformedHeader(err), skills.IsDuplicateIdentifier(err):
			s.writeErrorResponse(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			s.writeErrorResponse(w, r, http.StatusInternalServerError, "failed to reload skills", err)
		}
		return
	}

	s.writeJSONResponse(w, r, ReloadResponse{
		Success:    true,
		Total:      after.Len(),
		Generation: after.ID(),
		Changes:    changes,
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Snapshot()
	status := StatusResponse{
		Loaded:     snap != nil,
		Total:      snap.Len(),
		Generation: snap.ID(),
		Source:     snap.Source(),
	}
	if snap != nil {
		loadedAt := snap.LoadedAt()
		status.LoadedAt = &loadedAt
	}
	s.writeJSONResponse(w, r, status)
}

// handleSchema handles GET /api/schema
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, r, skills.HeaderSchema())
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, r *http.Request, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode JSON response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeErrorResponse writes an error response. err is logged, not returned
// to the client.
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	if err != nil {
		logger.G(r.Context()).WithError(err).Error(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":   message,
		"status":  statusCode,
		"success": false,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.G(r.Context()).WithError(err).Error("failed to encode error response")
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	presenter.Info(fmt.Sprintf("Serving %d skills on http://%s", s.registry.Len(), address))

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrapf(err, "failed to serve on %s", address)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop stops the server immediately
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
