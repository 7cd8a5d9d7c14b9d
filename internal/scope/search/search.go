// Package search orchestrates one query against the vector-search backend and
// turns its hits into sanitized, frontend-safe results.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/rs/zerolog"
)

const (
	// MaxQueryLength is the longest accepted query, in characters, after trimming
	MaxQueryLength = 500

	// MinScore is the exclusive relevance threshold; results must score above it
	MinScore = 0.1

	// TimestampFormat renders response timestamps (RFC 3339, UTC, milliseconds)
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"
)

// RawHit is one backend record encoded as a JSON object.
// Fields may be flat or nested under "metadata"; none are guaranteed.
type RawHit []byte

// Query is what the orchestrator asks of the backend
type Query struct {
	Text        string
	TopK        int
	RerankModel string // empty disables reranking
}

// Backend runs a similarity search and returns hits in relevance order
type Backend interface {
	Search(ctx context.Context, q Query) ([]RawHit, error)
}

// Result is a normalized hit
type Result struct {
	Title    string
	URL      string
	Date     string
	Category string
	Tags     []string
	Excerpt  string
	Score    float64
}

// Response is the outcome of a successful search
type Response struct {
	Results   []Result
	Query     string
	Timestamp string
}

// Orchestrator issues bounded backend queries and normalizes their hits
type Orchestrator struct {
	backend Backend
	cfg     config.Search
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates an orchestrator for the given backend and search parameters
func New(backend Backend, cfg config.Search, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Settings returns the search parameters the orchestrator runs with
func (o *Orchestrator) Settings() config.Search {
	return o.cfg
}

type outcome struct {
	hits []RawHit
	err  error
}

// Search runs query (already trimmed and validated) against the backend.
// Any failure is returned as a *Failure.
func (o *Orchestrator) Search(ctx context.Context, query string) (*Response, error) {
	start := o.now()
	o.logger.Info().Str("query", query).Int("top_k", o.cfg.TopK).Bool("rerank", o.cfg.RerankEnabled).Msg("searching")

	hits, err := o.query(ctx, query)
	if err != nil {
		f := Classify(err, o.cfg.Contact)
		o.logger.Error().
			Err(err).
			Str("query", query).
			Str("kind", string(f.Kind)).
			Int("status", f.Status).
			Dur("timeout", o.cfg.Timeout).
			Dur("elapsed", o.now().Sub(start)).
			Msg("search failed")
		return nil, f
	}

	o.logger.Info().Int("hits", len(hits)).Msg("backend returned hits")

	norm := NewNormalizer(o.cfg)
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		r := norm.Normalize(hit)
		if r.Score > MinScore {
			results = append(results, r)
		}
	}

	o.logger.Info().
		Int("results", len(results)).
		Int("dropped", len(hits)-len(results)).
		Dur("elapsed", o.now().Sub(start)).
		Msg("search completed")

	return &Response{
		Results:   results,
		Query:     query,
		Timestamp: o.now().UTC().Format(TimestampFormat),
	}, nil
}

// query races the backend call against the configured deadline. A backend that
// ignores cancellation is abandoned; its late result lands in a buffered channel.
func (o *Orchestrator) query(ctx context.Context, text string) ([]RawHit, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	q := Query{Text: text, TopK: o.cfg.TopK}
	if o.cfg.RerankEnabled {
		q.RerankModel = o.cfg.RerankModel
	}

	done := make(chan outcome, 1)
	go func() {
		hits, err := o.backend.Search(ctx, q)
		done <- outcome{hits: hits, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil && ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("search request timeout: %w", out.err)
		}
		return out.hits, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("search request timeout: %w", ctx.Err())
		}
		return nil, fmt.Errorf("search abandoned: %w", ctx.Err())
	}
}
