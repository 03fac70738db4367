package dive

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fathom-search/fathom/internal/model"
)

// SystemPrompt frames every synthesis call.
const SystemPrompt = "You are a search assistant that answers questions using only the " +
	"provided web sources. Be concise and factual. If the sources do not contain " +
	"the answer, say so."

// PromptBuilder assembles the synthesis prompt from acquired pages. Each
// source is truncated to a per-source cap that is independent of, and smaller
// than, the extractor's cap.
type PromptBuilder struct {
	maxSourceChars int
}

// NewPromptBuilder creates a PromptBuilder with the given per-source cap.
func NewPromptBuilder(maxSourceChars int) *PromptBuilder {
	return &PromptBuilder{maxSourceChars: maxSourceChars}
}

// Build returns the user prompt for one synthesis call. Sources are numbered
// from 1 in list order. Deterministic; performs no I/O.
func (b *PromptBuilder) Build(query string, pages []model.AcquiredPage) string {
	var sb strings.Builder

	for i, p := range pages {
		fmt.Fprintf(&sb, "Source %d: %s\n\n", i+1, truncate(p.Content, b.maxSourceChars))
	}

	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	sb.WriteString("Answer the question concisely using only the numbered sources above. " +
		"Cite sources by number where relevant.")

	return sb.String()
}

// truncate cuts s at the last rune boundary at or before limit bytes so the
// per-source cap never leaves a split multi-byte rune in the prompt.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
