package summarize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultBudgetChars bounds an extractive summary, excluding the ellipsis.
	DefaultBudgetChars = 500
	// Ellipsis marks a truncated extractive summary.
	Ellipsis = "..."
	// NoSummary is returned when there is no paragraph to draw from.
	NoSummary = "No summary available (extractive fallback)."
)

// Extractive builds a summary from verbatim paragraphs within a character budget.
type Extractive struct {
	budget int
}

// NewExtractive returns an extractive summarizer; non-positive budgets use the default.
func NewExtractive(budget int) *Extractive {
	if budget <= 0 {
		budget = DefaultBudgetChars
	}
	return &Extractive{budget: budget}
}

// Budget reports the configured character budget.
func (e *Extractive) Budget() int {
	return e.budget
}

// Summarize appends whole paragraphs, joined by single spaces, while they fit
// the budget. The first paragraph that does not fit is cut at a whitespace
// boundary and the result ends with Ellipsis.
func (e *Extractive) Summarize(paragraphs []string) string {
	parts := make([]string, 0, len(paragraphs))
	used := 0

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		sep := 0
		if len(parts) > 0 {
			sep = 1
		}

		n := utf8.RuneCountInString(p)
		if used+sep+n <= e.budget {
			parts = append(parts, p)
			used += sep + n
			continue
		}

		if cut := cutAtSpace(p, e.budget-used-sep); cut != "" {
			parts = append(parts, cut)
		}
		if len(parts) == 0 {
			return NoSummary
		}
		parts[len(parts)-1] += Ellipsis
		return strings.Join(parts, " ")
	}

	if len(parts) == 0 {
		return NoSummary
	}
	return strings.Join(parts, " ")
}

// cutAtSpace returns the longest prefix of s, at most limit runes, that ends
// on a word boundary. It returns "" when no such prefix exists.
func cutAtSpace(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	end := limit
	if !unicode.IsSpace(runes[limit]) {
		end = -1
		for i := limit - 1; i >= 0; i-- {
			if unicode.IsSpace(runes[i]) {
				end = i
				break
			}
		}
		if end < 0 {
			return ""
		}
	}

	return strings.TrimRightFunc(string(runes[:end]), unicode.IsSpace)
}
