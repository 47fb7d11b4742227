// Package news cleans up articles returned by the gateway before they are
// displayed: HTML removal, ticker paragraph extraction and de-duplication.
package news

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"stockboard/internal/domain"
)

// Categories are the market news categories the gateway serves.
var Categories = []string{"general", "forex", "crypto", "merger"}

// IsCategory reports whether c is a known category (case-insensitive).
func IsCategory(c string) bool {
	for _, k := range Categories {
		if strings.EqualFold(k, strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)
var htmlParaRe = regexp.MustCompile(`(?i)</?(p|br|div|li|h[1-6])\b[^>]*>`)

// StripHTML removes HTML tags and normalizes whitespace.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// ExtractTickerContent returns the paragraphs of rawHTML that mention
// ticker, falling back to the whole stripped text when none do.
func ExtractTickerContent(rawHTML, ticker string) string {
	upper := strings.ToUpper(strings.TrimSpace(ticker))
	if upper == "" {
		return StripHTML(rawHTML)
	}
	var matched []string
	for _, chunk := range htmlParaRe.Split(rawHTML, -1) {
		plain := StripHTML(chunk)
		if plain == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(plain), upper) {
			matched = append(matched, plain)
		}
	}
	if len(matched) > 0 {
		return strings.Join(matched, " ")
	}
	return StripHTML(rawHTML)
}

// RelatedTickers splits an article's comma-separated related field.
func RelatedTickers(a domain.Article) []string {
	var out []string
	for _, t := range strings.Split(a.Related, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Normalize strips HTML from headlines and summaries, drops articles with no
// headline, removes duplicates (same URL, or same headline when the URL is
// empty) and orders the rest newest first. When ticker is non-empty the
// summary is narrowed to the paragraphs that mention it.
func Normalize(articles []domain.Article, ticker string) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	seenURL := make(map[string]bool)
	seenHeadline := make(map[string]bool)

	for _, a := range articles {
		a.Headline = StripHTML(a.Headline)
		if a.Headline == "" {
			continue
		}
		if ticker != "" {
			a.Summary = ExtractTickerContent(a.Summary, ticker)
		} else {
			a.Summary = StripHTML(a.Summary)
		}
		a.URL = strings.TrimSpace(a.URL)

		key := strings.ToLower(a.Headline)
		if a.URL != "" {
			if seenURL[a.URL] {
				continue
			}
			seenURL[a.URL] = true
		} else if seenHeadline[key] {
			continue
		}
		seenHeadline[key] = true
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out
}
