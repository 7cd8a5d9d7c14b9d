package httpapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/sitesearch/internal/scope/search"
	"github.com/tidwall/gjson"
)

const maxBodyBytes = 64 << 10

// Client-facing validation messages
const (
	msgInvalidJSON   = "Invalid JSON in request body"
	msgQueryRequired = "Query is required and must be a non-empty string"
	msgQueryTooLong  = "Query is too long. Maximum 500 characters allowed."
)

// HandleSearch validates the request and forwards the query to the vector index
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read search request")
		writeError(w, http.StatusBadRequest, msgInvalidJSON, "")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if !gjson.ValidBytes(body) {
		h.logger.Warn().Int("bytes", len(body)).Msg("invalid search request")
		writeError(w, http.StatusBadRequest, msgInvalidJSON, "")
		return
	}

	// Validate query
	q := lastField(body, "query")
	if q.Type != gjson.String || strings.TrimSpace(q.Str) == "" {
		writeError(w, http.StatusBadRequest, msgQueryRequired, "")
		return
	}
	query := strings.TrimSpace(q.Str)
	if utf8.RuneCountInString(query) > search.MaxQueryLength {
		writeError(w, http.StatusBadRequest, msgQueryTooLong, "")
		return
	}

	// Backend settings are checked per request so the service can boot without them
	if missing := h.cfg.MissingBackend(); len(missing) > 0 {
		h.logger.Error().Strs("missing", missing).Msg("search backend is not configured")
		writeError(w, http.StatusInternalServerError, string(search.KindConfiguration), search.MsgConfiguration)
		return
	}

	resp, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		var f *search.Failure
		if !errors.As(err, &f) {
			f = search.Classify(err, h.cfg.Search.Contact)
		}
		writeError(w, f.Status, string(f.Kind), f.Message)
		return
	}

	results := make([]SearchResult, len(resp.Results))
	for i, res := range resp.Results {
		results[i] = SearchResult{
			Title:    res.Title,
			URL:      res.URL,
			Date:     res.Date,
			Category: res.Category,
			Tags:     res.Tags,
			Excerpt:  res.Excerpt,
			Score:    res.Score,
		}
		if results[i].Tags == nil {
			results[i].Tags = []string{}
		}
	}

	h.logger.Info().
		Str("query", query).
		Int("results", len(results)).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResponse{
		Results:   results,
		Query:     resp.Query,
		Timestamp: resp.Timestamp,
	})
}

// lastField returns the last top-level member named key; duplicate keys
// resolve the way JSON.parse does.
func lastField(body []byte, key string) gjson.Result {
	var out gjson.Result
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return out
	}
	root.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			out = v
		}
		return true
	})
	return out
}
