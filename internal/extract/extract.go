// Package extract turns raw HTML into cleaned, length-capped plain text.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// noiseSelectors are removed from the document before any text extraction so
// their text never leaks into the result.
var noiseSelectors = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"nav",
	"header",
	"footer",
	"aside",
	"form",
	".ad",
	".ads",
	".advertisement",
	".sidebar",
	".promo",
	".cookie-banner",
	"[role=banner]",
	"[role=navigation]",
}

// contentSelectors is the candidate-region priority list. The first selector
// that matches at least one element wins.
var contentSelectors = []string{
	"article",
	"[role=main]",
	".post-content",
	".article-content",
	".entry-content",
	"main",
	".content",
}

var (
	newlineRunRe = regexp.MustCompile(`\n{2,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// Extractor converts HTML documents to plain text suitable for synthesis.
// It performs no I/O; identical input always yields identical output.
type Extractor struct {
	maxChars int
}

// New creates an Extractor that caps output at maxChars characters.
func New(maxChars int) *Extractor {
	return &Extractor{maxChars: maxChars}
}

// MaxChars reports the configured output cap.
func (e *Extractor) MaxChars() int { return e.maxChars }

// Extract parses html, strips noise subtrees, selects the highest-priority
// content region (falling back to the full body), normalizes whitespace, and
// truncates to the configured cap.
func (e *Extractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", eris.Wrap(err, "extract: parse html")
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	text, matched := "", false
	for _, sel := range contentSelectors {
		if region := doc.Find(sel); region.Length() > 0 {
			text = region.Text()
			matched = true
			break
		}
	}
	if !matched {
		text = doc.Find("body").Text()
	}

	return truncate(normalizeWhitespace(text), e.maxChars), nil
}

// truncate cuts s at the last rune boundary at or before limit bytes so the
// cap never leaves a split multi-byte rune at the end.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// normalizeWhitespace collapses runs of 2+ newlines to one, runs of 2+
// spaces/tabs to one space, and trims the ends.
func normalizeWhitespace(s string) string {
	s = newlineRunRe.ReplaceAllString(s, "\n")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
