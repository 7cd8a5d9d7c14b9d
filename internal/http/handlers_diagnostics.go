package httpapi

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/dsjohal14/sitesearch/internal/scope/search"
)

// ServiceName identifies this deployment in diagnostics
const ServiceName = "sitesearch"

// HandleDiagnostics reports which backend settings are present without revealing them
func (h *Handler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	pc := h.cfg.Pinecone
	indexName := pc.Index
	if indexName == "" {
		indexName = "not-set"
	}

	writeJSON(w, http.StatusOK, DiagnosticsResponse{
		Message:   ServiceName,
		Timestamp: h.now().UTC().Format(search.TimestampFormat),
		Environment: DiagnosticsEnvironment{
			HasAPIKey:     pc.APIKey != "",
			HasIndex:      pc.Index != "",
			HasIndexHost:  pc.IndexHost != "",
			IndexName:     indexName,
			Namespace:     pc.Namespace,
			Preset:        h.cfg.Preset,
			TopK:          h.cfg.Search.TopK,
			RerankEnabled: h.cfg.Search.RerankEnabled,
			GoVersion:     runtime.Version(),
		},
		Endpoints: map[string]string{
			"search":      "POST /search with JSON body {\"query\": \"your search text\"}",
			"diagnostics": "GET /diagnostics",
			"health":      "GET /health",
		},
		Usage: DiagnosticsUsage{
			SearchEndpoint: `POST /search with JSON body: {"query": "your search text"}`,
			Example:        fmt.Sprintf(`curl -X POST %s/search -H "Content-Type: application/json" -d '{"query": "data science"}'`, baseURL(r)),
		},
	})
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
