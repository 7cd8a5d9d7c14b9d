// Package httpapi provides the HTTP gateway and data transfer objects for the search API.
package httpapi

// SearchRequest represents a search request body
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResult represents one normalized hit
type SearchResult struct {
	Title    string   `json:"title"`
	URL      string   `json:"url"`
	Date     string   `json:"date"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Excerpt  string   `json:"excerpt"`
	Score    float64  `json:"score"`
}

// SearchResponse represents search results
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Query     string         `json:"query"`
	Timestamp string         `json:"timestamp"`
}

// HealthResponse represents the liveness probe response
type HealthResponse struct {
	Status string `json:"status"`
}

// MessageResponse carries a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// DiagnosticsEnvironment reports configuration presence, never secret values
type DiagnosticsEnvironment struct {
	HasAPIKey     bool   `json:"hasApiKey"`
	HasIndex      bool   `json:"hasIndex"`
	HasIndexHost  bool   `json:"hasIndexHost"`
	IndexName     string `json:"indexName"`
	Namespace     string `json:"namespace"`
	Preset        string `json:"preset"`
	TopK          int    `json:"topK"`
	RerankEnabled bool   `json:"rerankEnabled"`
	GoVersion     string `json:"goVersion"`
}

// DiagnosticsResponse describes the running service
type DiagnosticsResponse struct {
	Message     string                 `json:"message"`
	Timestamp   string                 `json:"timestamp"`
	Environment DiagnosticsEnvironment `json:"environment"`
	Endpoints   map[string]string      `json:"endpoints"`
	Usage       DiagnosticsUsage       `json:"usage"`
}

// DiagnosticsUsage shows how to call the search endpoint
type DiagnosticsUsage struct {
	SearchEndpoint string `json:"search_endpoint"`
	Example        string `json:"example"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
