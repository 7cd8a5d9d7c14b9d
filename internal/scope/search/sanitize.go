package search

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/dsjohal14/sitesearch/internal/libs/config"
)

const (
	maxTitleLength   = 200
	maxExcerptLength = 250
	ellipsis         = "..."

	// DateLayout renders dates as "Jan 5, 2024"
	DateLayout = "Jan 2, 2006"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	spacePattern  = regexp.MustCompile(`[\s\x{0B}\p{Z}\x{FEFF}]+`)
	unsafePattern = regexp.MustCompile(`[^\w\s.,!?;:-]`)
)

// SanitizeText strips markup tags, trims, and truncates to 200 characters
func SanitizeText(s string) string {
	s = strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
	return strings.TrimSpace(truncateRunes(s, maxTitleLength))
}

// SanitizeURL makes a result link absolute against origin.
// Empty input yields "#"; http(s) links pass through unchanged.
func SanitizeURL(u, origin string) string {
	switch {
	case u == "":
		return DefaultURL
	case strings.HasPrefix(u, "/"):
		return origin + u
	case hasScheme(u, "http://"), hasScheme(u, "https://"):
		return u
	default:
		return origin + "/" + u
	}
}

func hasScheme(u, scheme string) bool {
	return len(u) >= len(scheme) && strings.EqualFold(u[:len(scheme)], scheme)
}

// FormatDate renders a parseable date as "Jan 5, 2024" and returns anything
// else unchanged. Dates without a zone are read as UTC.
func FormatDate(s string) (out string) {
	if s == "" {
		return ""
	}
	// dateparse has panicked on some malformed inputs
	defer func() {
		if recover() != nil {
			out = s
		}
	}()
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return s
	}
	return t.In(time.UTC).Format(DateLayout)
}

// FormatCategory normalizes category casing
func FormatCategory(s string, casing config.Casing) string {
	if s == "" {
		return ""
	}
	if casing == config.CasingLower {
		return strings.ToLower(s)
	}

	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// SanitizeExcerpt strips tags and unsafe characters, collapses whitespace, and
// bounds the preview to 250 characters. An empty result becomes the
// "No preview available" placeholder.
func SanitizeExcerpt(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	s = unsafePattern.ReplaceAllString(s, "")
	// removals can leave runs of spaces behind
	s = spacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > maxExcerptLength {
		s = truncateRunes(s, maxExcerptLength-len(ellipsis)) + ellipsis
	}
	if s == "" {
		return NoPreview
	}
	return s
}

// SanitizeTags cleans each tag like a title and drops empties
func SanitizeTags(raw []string) []string {
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(tags) == maxTags {
			break
		}
		if s := SanitizeText(t); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
