// Package config provides application configuration management from environment variables.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Casing selects how result categories are normalized
type Casing string

const (
	// CasingTitle capitalizes the first letter of each space-separated word
	CasingTitle Casing = "title"
	// CasingLower lower-cases the whole category
	CasingLower Casing = "lower"
)

// Preset names
const (
	PresetCompact  = "compact"
	PresetReranked = "reranked"
)

// DefaultRerankModel is used by the reranked preset when no model is configured
const DefaultRerankModel = "bge-reranker-v2-m3"

// Search holds the orchestrator parameters
type Search struct {
	TopK           int
	RerankEnabled  bool
	RerankModel    string
	CategoryCasing Casing
	Timeout        time.Duration
	SiteOrigin     string
	Contact        string
}

// Presets returns the search parameter sets known to the service.
// compact: top 3, no rerank, title-cased categories.
// reranked: top 5, reranked, lower-cased categories.
func Presets() map[string]Search {
	base := Search{
		Timeout:    15 * time.Second,
		SiteOrigin: "https://tmfarrell.github.io",
		Contact:    "the site owner",
	}

	compact := base
	compact.TopK = 3
	compact.CategoryCasing = CasingTitle

	reranked := base
	reranked.TopK = 5
	reranked.RerankEnabled = true
	reranked.RerankModel = DefaultRerankModel
	reranked.CategoryCasing = CasingLower

	return map[string]Search{
		PresetCompact:  compact,
		PresetReranked: reranked,
	}
}

// Pinecone holds backend connection settings
type Pinecone struct {
	APIKey        string
	Index         string
	IndexHost     string
	Namespace     string
	ControllerURL string
	APIVersion    string
}

// Config holds application configuration
type Config struct {
	APIPort  string
	APIHost  string
	LogLevel string
	Env      string

	Preset   string
	Pinecone Pinecone
	Search   Search
}

// Load reads configuration from environment variables.
// Backend credentials are not required here; their presence is checked per request.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("API_PORT", "8080")
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PINECONE_NAMESPACE", "default")
	v.SetDefault("PINECONE_CONTROLLER_URL", "https://api.pinecone.io")
	v.SetDefault("PINECONE_API_VERSION", "2025-04")
	v.SetDefault("SEARCH_PRESET", PresetCompact)

	cfg := &Config{
		APIPort:  v.GetString("API_PORT"),
		APIHost:  v.GetString("API_HOST"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Env:      v.GetString("ENV"),
		Preset:   strings.ToLower(strings.TrimSpace(v.GetString("SEARCH_PRESET"))),
		Pinecone: Pinecone{
			APIKey:        strings.TrimSpace(v.GetString("PINECONE_API_KEY")),
			Index:         strings.TrimSpace(v.GetString("PINECONE_INDEX")),
			IndexHost:     strings.TrimSpace(v.GetString("PINECONE_INDEX_HOST")),
			Namespace:     v.GetString("PINECONE_NAMESPACE"),
			ControllerURL: strings.TrimRight(v.GetString("PINECONE_CONTROLLER_URL"), "/"),
			APIVersion:    v.GetString("PINECONE_API_VERSION"),
		},
	}

	search, ok := Presets()[cfg.Preset]
	if !ok {
		return nil, fmt.Errorf("unknown SEARCH_PRESET %q (want %s or %s)", cfg.Preset, PresetCompact, PresetReranked)
	}

	// Individual overrides on top of the preset
	if v.IsSet("SEARCH_TOP_K") {
		search.TopK = v.GetInt("SEARCH_TOP_K")
	}
	if v.IsSet("SEARCH_RERANK") {
		search.RerankEnabled = v.GetBool("SEARCH_RERANK")
	}
	if model := strings.TrimSpace(v.GetString("PINECONE_RERANK_MODEL")); model != "" {
		search.RerankModel = model
	}
	if search.RerankEnabled && search.RerankModel == "" {
		search.RerankModel = DefaultRerankModel
	}
	if v.IsSet("SEARCH_CATEGORY_CASING") {
		search.CategoryCasing = Casing(strings.ToLower(v.GetString("SEARCH_CATEGORY_CASING")))
	}
	if v.IsSet("SEARCH_TIMEOUT") {
		timeout, err := parseTimeout(v.GetString("SEARCH_TIMEOUT"))
		if err != nil {
			return nil, err
		}
		search.Timeout = timeout
	}
	if origin := v.GetString("SITE_ORIGIN"); origin != "" {
		search.SiteOrigin = strings.TrimRight(origin, "/")
	}
	if contact := v.GetString("SEARCH_CONTACT"); contact != "" {
		search.Contact = contact
	}
	cfg.Search = search

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseTimeout accepts Go durations ("15s", "1500ms") and bare numbers,
// which are read as seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("invalid SEARCH_TIMEOUT %q", raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid SEARCH_TIMEOUT %q: %w", raw, err)
	}
	return d, nil
}

func (c *Config) validate() error {
	if c.Search.TopK < 1 || c.Search.TopK > 100 {
		return fmt.Errorf("SEARCH_TOP_K must be between 1 and 100, got %d", c.Search.TopK)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT must be positive, got %s", c.Search.Timeout)
	}
	switch c.Search.CategoryCasing {
	case CasingTitle, CasingLower:
	default:
		return fmt.Errorf("SEARCH_CATEGORY_CASING must be %q or %q, got %q", CasingTitle, CasingLower, c.Search.CategoryCasing)
	}
	if c.Pinecone.Namespace == "" {
		return fmt.Errorf("PINECONE_NAMESPACE must not be empty")
	}
	return nil
}

// MissingBackend returns the names of required backend settings that are unset
func (c *Config) MissingBackend() []string {
	var missing []string
	if c.Pinecone.APIKey == "" {
		missing = append(missing, "PINECONE_API_KEY")
	}
	if c.Pinecone.Index == "" {
		missing = append(missing, "PINECONE_INDEX")
	}
	return missing
}
