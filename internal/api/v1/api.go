// Package v1 implements the native REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vmunix/reelvault/internal/contentid"
	"github.com/vmunix/reelvault/internal/events"
	"github.com/vmunix/reelvault/internal/library"
)

// Server is the v1 API server.
type Server struct {
	deps     ServerDeps
	registry *events.Registry
	log      *slog.Logger
}

// New creates a new v1 API server with the given dependencies.
func New(deps ServerDeps, log *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDependency, err)
	}
	if deps.Encoder == nil {
		deps.Encoder = contentid.NewEncoder(nil)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, registry: events.DefaultRegistry(), log: log}, nil
}

// Routes returns the API handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		// Registration
		r.Post("/movies", s.addMovie)
		r.Get("/movies/{id}", s.getMovie)
		r.Post("/series", s.addSeries)
		r.Get("/series/{id}", s.getSeries)
		r.Post("/series/{id}/seasons", s.addSeason)
		r.Get("/series/{id}/seasons", s.listSeasons)
		r.Post("/series/{id}/seasons/{season}/episodes", s.addEpisode)
		r.Get("/series/{id}/seasons/{season}/episodes", s.listEpisodes)

		// Uploads
		r.Get("/queue", s.queueStatus)
		r.Get("/uploads", s.listUploads)
		r.Post("/uploads/{id}", s.resubmit)
		r.With(s.requireEventLog).Get("/uploads/{id}/events", s.listUploadEvents)

		// Resolution
		r.Get("/resolve/{id}", s.resolve)

		r.With(s.requireEventLog).Get("/events", s.listEvents)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.deps.Bus != nil {
		dropped := s.deps.Bus.Dropped()
		resp.DroppedEvents = &dropped
	}
	writeJSON(w, http.StatusOK, resp)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// writeStoreError maps library and identifier errors to HTTP responses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, library.ErrDuplicate):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, library.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, library.ErrConstraint):
		writeError(w, http.StatusUnprocessableEntity, "CONSTRAINT", err.Error())
	case errors.Is(err, contentid.ErrMalformed):
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return false
	}
	return true
}

// pathInt extracts a positive integer from the URL path.
func pathInt(r *http.Request, name string) (int, error) {
	val := chi.URLParam(r, name)
	if val == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, val)
	}
	return i, nil
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
