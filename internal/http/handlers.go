package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/dsjohal14/sitesearch/internal/scope/search"
	"github.com/rs/zerolog"
)

// Searcher runs one validated query
type Searcher interface {
	Search(ctx context.Context, query string) (*search.Response, error)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	searcher Searcher
	cfg      *config.Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(searcher Searcher, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Helper functions used across all handlers

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, errMsg, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errMsg,
		Message: message,
	})
}

// HandleMethodNotAllowed rejects unsupported methods on known routes
func (h *Handler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("method not allowed")
	msg := "Method not allowed."
	if r.URL.Path == "/search" {
		msg = "Method not allowed. Use POST."
	}
	writeError(w, http.StatusMethodNotAllowed, msg, "")
}

// HandleNotFound answers unknown routes with a JSON body
func (h *Handler) HandleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "Not found", "")
}

// HandlePreflight acknowledges a CORS preflight
func (h *Handler) HandlePreflight(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "CORS preflight OK"})
}
