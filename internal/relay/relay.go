// Package relay forwards search queries to a Pinecone index with integrated
// inference and hands the hits back as raw JSON records.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/dsjohal14/sitesearch/internal/scope/search"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// RankField is the record field the reranker scores against
	RankField = "text"

	maxResponseBytes = 4 << 20
	errorBodyLimit   = 500
)

type searchRequest struct {
	Query  searchQuery `json:"query"`
	Rerank *rerankSpec `json:"rerank,omitempty"`
}

type searchQuery struct {
	TopK   int               `json:"top_k"`
	Inputs map[string]string `json:"inputs"`
}

type rerankSpec struct {
	Model      string   `json:"model"`
	RankFields []string `json:"rank_fields"`
	TopN       int      `json:"top_n,omitempty"`
}

// Client talks to one Pinecone index
type Client struct {
	cfg    config.Pinecone
	http   *http.Client
	logger zerolog.Logger

	mu   sync.Mutex
	host string // resolved index host, cached once known
}

// New creates a relay client. If httpClient is nil a pooled client is used.
func New(cfg config.Pinecone, logger zerolog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewPooledClient(30 * time.Second)
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
		host:   normalizeHost(cfg.IndexHost),
	}
}

// Search implements search.Backend
func (c *Client) Search(ctx context.Context, q search.Query) ([]search.RawHit, error) {
	host, err := c.indexHost(ctx)
	if err != nil {
		return nil, err
	}

	body := searchRequest{
		Query: searchQuery{
			TopK:   q.TopK,
			Inputs: map[string]string{"text": q.Text},
		},
	}
	if q.RerankModel != "" {
		body.Rerank = &rerankSpec{
			Model:      q.RerankModel,
			RankFields: []string{RankField},
			TopN:       q.TopK,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/records/namespaces/%s/search", host, url.PathEscape(c.cfg.Namespace))
	start := time.Now()

	raw, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		c.logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("pinecone search failed")
		return nil, err
	}

	hits, err := flattenHits(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("hits", len(hits)).
		Str("namespace", c.cfg.Namespace).
		Bool("rerank", body.Rerank != nil).
		Dur("elapsed", time.Since(start)).
		Msg("pinecone search completed")

	return hits, nil
}

// indexHost returns the configured host or looks it up through the control plane
func (c *Client) indexHost(ctx context.Context) (string, error) {
	c.mu.Lock()
	host := c.host
	c.mu.Unlock()
	if host != "" {
		return host, nil
	}

	endpoint := fmt.Sprintf("%s/indexes/%s", c.cfg.ControllerURL, url.PathEscape(c.cfg.Index))
	raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("describe index %q: %w", c.cfg.Index, err)
	}

	host = normalizeHost(gjson.GetBytes(raw, "host").String())
	if host == "" {
		return "", fmt.Errorf("describe index %q: %w", c.cfg.Index, ErrNoHost)
	}

	c.mu.Lock()
	c.host = host
	c.mu.Unlock()

	c.logger.Info().Str("index", c.cfg.Index).Str("host", host).Msg("resolved index host")
	return host, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Pinecone-API-Version", c.cfg.APIVersion)
	req.Header.Set("X-Request-Id", requestID(ctx))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinecone request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read pinecone response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), errorBodyLimit)}
	}
	return raw, nil
}

// flattenHits turns {"_id","_score","fields":{...}} into a single record
// object with "id" and "score" written over the stored fields.
func flattenHits(raw []byte) ([]search.RawHit, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("failed to decode pinecone response: invalid JSON")
	}

	result := gjson.GetBytes(raw, "result.hits")
	if !result.Exists() {
		return []search.RawHit{}, nil
	}
	if !result.IsArray() {
		return nil, fmt.Errorf("failed to decode pinecone response: result.hits is %s", result.Type)
	}

	hits := make([]search.RawHit, 0, len(result.Array()))
	for _, h := range result.Array() {
		record := []byte("{}")
		if fields := h.Get("fields"); fields.IsObject() {
			record = []byte(fields.Raw)
		}

		var err error
		if id := h.Get("_id"); id.Exists() {
			if record, err = sjson.SetBytes(record, "id", id.String()); err != nil {
				return nil, fmt.Errorf("failed to flatten hit: %w", err)
			}
		}
		if score := h.Get("_score"); score.Type == gjson.Number {
			if record, err = sjson.SetRawBytes(record, "score", []byte(score.Raw)); err != nil {
				return nil, fmt.Errorf("failed to flatten hit: %w", err)
			}
		}
		hits = append(hits, search.RawHit(record))
	}
	return hits, nil
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func normalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
