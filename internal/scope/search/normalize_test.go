package search

import (
	"math"
	"strings"
	"testing"

	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func testSearchConfig() config.Search {
	cfg := config.Presets()[config.PresetCompact]
	cfg.SiteOrigin = origin
	return cfg
}

func TestResolvePrecedence(t *testing.T) {
	hit := gjson.Parse(`{"title":"","metadata":{"title":"Nested"},"alt":"Alternative"}`)

	got := resolve(hit, field("title"), field("metadata.title"), field("alt"), fixed("Default"))
	assert.Equal(t, "Nested", got.Str)

	got = resolve(hit, field("missing"), field("alt"))
	assert.Equal(t, "Alternative", got.Str)

	got = resolve(hit, field("missing"), fixed("Default"))
	assert.Equal(t, "Default", got.Str)

	got = resolve(hit, field("missing"))
	assert.False(t, got.Exists())
}

func TestPresent(t *testing.T) {
	hit := gjson.Parse(`{"s":"x","e":"","z":0,"n":null,"f":false,"t":true,"a":[],"o":{},"num":0.5}`)

	for path, want := range map[string]bool{
		"s": true, "e": false, "z": false, "n": false, "f": false,
		"t": true, "a": true, "o": true, "num": true, "missing": false,
	} {
		assert.Equal(t, want, present(hit.Get(path)), path)
	}
}

func TestNormalizeFlatFields(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	r := n.Normalize(RawHit(`{
		"title": "<b>Data Science</b> Notes",
		"permalink": "/2024/01/05/notes.html",
		"date": "2024-01-05",
		"category": "machine learning",
		"tags": ["ml", "<i>stats</i>"],
		"excerpt": "A <em>short</em> intro.",
		"score": 0.82
	}`))

	assert.Equal(t, Result{
		Title:    "Data Science Notes",
		URL:      origin + "/2024/01/05/notes.html",
		Date:     "Jan 5, 2024",
		Category: "Machine Learning",
		Tags:     []string{"ml", "stats"},
		Excerpt:  "A short intro.",
		Score:    0.82,
	}, r)
}

func TestNormalizeNestedMetadata(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	r := n.Normalize(RawHit(`{
		"score": 0.5,
		"metadata": {
			"title": "Nested Title",
			"permalink": "https://example.com/post",
			"date": "2023-11-20",
			"category": "Career",
			"tags": "go, search ,",
			"excerpt": "From metadata"
		}
	}`))

	assert.Equal(t, "Nested Title", r.Title)
	assert.Equal(t, "https://example.com/post", r.URL)
	assert.Equal(t, "Nov 20, 2023", r.Date)
	assert.Equal(t, "Career", r.Category)
	assert.Equal(t, []string{"go", "search"}, r.Tags)
	assert.Equal(t, "From metadata", r.Excerpt)
}

func TestNormalizeFlatBeatsNested(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	r := n.Normalize(RawHit(`{"title":"Flat","url":"flat","metadata":{"title":"Nested","permalink":"/nested"}}`))

	assert.Equal(t, "Flat", r.Title)
	// permalink outranks url even when nested
	assert.Equal(t, origin+"/nested", r.URL)
}

func TestNormalizeDerivedExcerpt(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	r := n.Normalize(RawHit(`{"content":"` + strings.Repeat("a", 300) + `"}`))
	assert.Equal(t, strings.Repeat("a", 200)+"...", r.Excerpt)

	r = n.Normalize(RawHit(`{"text":"short body"}`))
	assert.Equal(t, "short body...", r.Excerpt)
}

func TestNormalizeDefaults(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	for _, raw := range []string{`{}`, `[1,2]`, `not json`, ``} {
		r := n.Normalize(RawHit(raw))
		assert.Equal(t, DefaultTitle, r.Title, raw)
		assert.Equal(t, DefaultURL, r.URL, raw)
		assert.Equal(t, "", r.Date, raw)
		assert.Equal(t, "", r.Category, raw)
		assert.NotNil(t, r.Tags, raw)
		assert.Empty(t, r.Tags, raw)
		assert.Equal(t, NoPreview, r.Excerpt, raw)
		assert.Equal(t, 0.0, r.Score, raw)
	}
}

func TestNormalizeNonStringURL(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	r := n.Normalize(RawHit(`{"permalink": 42}`))
	assert.Equal(t, DefaultURL, r.URL)
}

func TestNormalizeCategories(t *testing.T) {
	cfg := testSearchConfig()
	cfg.CategoryCasing = config.CasingLower
	n := NewNormalizer(cfg)

	r := n.Normalize(RawHit(`{"categories":["Data Engineering","Other"]}`))
	assert.Equal(t, "data engineering", r.Category)

	r = n.Normalize(RawHit(`{"metadata":{"categories":"Single"}}`))
	assert.Equal(t, "single", r.Category)
}

func TestNormalizeScore(t *testing.T) {
	n := NewNormalizer(testSearchConfig())

	tests := []struct {
		raw  string
		want float64
	}{
		{`{"score": 1.7}`, 1},
		{`{"score": -0.3}`, 0},
		{`{"score": 0.42}`, 0.42},
		{`{"relevance": 0.6}`, 0.6},
		{`{"score": 0, "relevance": 0.7}`, 0.7},
		{`{"metadata": {"score": 0.3}}`, 0.3},
		{`{"score": "0.9"}`, 0.9},
		{`{"score": "high"}`, 0},
		{`{"score": null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(RawHit(tt.raw)).Score)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 1.0, ClampScore(1.7))
	assert.Equal(t, 0.0, ClampScore(-0.3))
	assert.Equal(t, 0.5, ClampScore(0.5))
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
}
