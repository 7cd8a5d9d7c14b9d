package search

import (
	"math"
	"strings"

	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/tidwall/gjson"
)

// Defaults for fields the backend did not supply
const (
	DefaultTitle   = "Untitled"
	DefaultURL     = "#"
	NoPreview      = "No preview available"
	derivedExcerpt = 200
	maxTags        = 10
)

// candidate yields one possible value for a field
type candidate func(hit gjson.Result) gjson.Result

// field reads a (possibly nested) path, e.g. "metadata.title"
func field(path string) candidate {
	return func(hit gjson.Result) gjson.Result {
		return hit.Get(path)
	}
}

// firstElem reads path and, when it is an array, its first element
func firstElem(path string) candidate {
	return func(hit gjson.Result) gjson.Result {
		r := hit.Get(path)
		if r.IsArray() {
			return r.Get("0")
		}
		return r
	}
}

// prefix derives a preview from the first n characters of a long-form text field
func prefix(path string, n int) candidate {
	return func(hit gjson.Result) gjson.Result {
		r := hit.Get(path)
		if r.Type != gjson.String || r.Str == "" {
			return gjson.Result{}
		}
		return stringResult(truncateRunes(r.Str, n) + "...")
	}
}

// fixed always yields s
func fixed(s string) candidate {
	return func(gjson.Result) gjson.Result {
		return stringResult(s)
	}
}

func stringResult(s string) gjson.Result {
	return gjson.Result{Type: gjson.String, Str: s}
}

// present reports whether r carries a usable value: not missing, null, false,
// zero or the empty string.
func present(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0 && !math.IsNaN(r.Num)
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}

// resolve evaluates candidates left to right and returns the first present value
func resolve(hit gjson.Result, candidates ...candidate) gjson.Result {
	for _, c := range candidates {
		if r := c(hit); present(r) {
			return r
		}
	}
	return gjson.Result{}
}

// Field precedence, highest first
var (
	titleCandidates    = []candidate{field("title"), field("metadata.title"), fixed(DefaultTitle)}
	urlCandidates      = []candidate{field("permalink"), field("metadata.permalink"), field("url"), field("metadata.url")}
	dateCandidates     = []candidate{field("date"), field("metadata.date")}
	categoryCandidates = []candidate{field("category"), field("metadata.category"), firstElem("categories"), firstElem("metadata.categories")}
	tagsCandidates     = []candidate{field("tags"), field("metadata.tags")}
	excerptCandidates  = []candidate{
		field("excerpt"),
		field("metadata.excerpt"),
		prefix("content", derivedExcerpt),
		prefix("text", derivedExcerpt),
		prefix("metadata.content", derivedExcerpt),
		prefix("metadata.text", derivedExcerpt),
		fixed(NoPreview),
	}
	scoreCandidates = []candidate{field("score"), field("relevance"), field("metadata.score")}
)

// Normalizer maps raw hits onto the public result schema
type Normalizer struct {
	origin string
	casing config.Casing
}

// NewNormalizer creates a normalizer using the site origin and category casing from cfg
func NewNormalizer(cfg config.Search) *Normalizer {
	return &Normalizer{
		origin: cfg.SiteOrigin,
		casing: cfg.CategoryCasing,
	}
}

// Normalize extracts, defaults and sanitizes every field of hit.
// A hit that is not a JSON object normalizes to defaults with score 0.
func (n *Normalizer) Normalize(raw RawHit) Result {
	hit := gjson.ParseBytes(raw)
	if !hit.IsObject() {
		hit = gjson.Result{}
	}

	return Result{
		Title:    SanitizeText(stringOf(resolve(hit, titleCandidates...))),
		URL:      SanitizeURL(textOf(resolve(hit, urlCandidates...)), n.origin),
		Date:     FormatDate(stringOf(resolve(hit, dateCandidates...))),
		Category: FormatCategory(SanitizeText(stringOf(resolve(hit, categoryCandidates...))), n.casing),
		Tags:     SanitizeTags(tagsOf(resolve(hit, tagsCandidates...))),
		Excerpt:  SanitizeExcerpt(stringOf(resolve(hit, excerptCandidates...))),
		Score:    ClampScore(scoreOf(resolve(hit, scoreCandidates...))),
	}
}

// stringOf returns string values as-is, numbers in their raw form, and "" otherwise
func stringOf(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	default:
		return ""
	}
}

// textOf returns only genuine string values
func textOf(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.Str
	}
	return ""
}

func scoreOf(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number, gjson.String:
		return r.Float()
	default:
		return 0
	}
}

// ClampScore bounds a raw relevance score to [0, 1]; NaN becomes 0
func ClampScore(raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	return math.Max(0, math.Min(1, raw))
}

// tagsOf accepts an array of strings or a comma-separated string
func tagsOf(r gjson.Result) []string {
	var raw []string
	switch {
	case r.IsArray():
		for _, t := range r.Array() {
			if t.Type == gjson.String {
				raw = append(raw, t.Str)
			}
		}
	case r.Type == gjson.String:
		raw = strings.Split(r.Str, ",")
	}
	return raw
}
