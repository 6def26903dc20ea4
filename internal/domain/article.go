package domain

import "time"

// ArticleReference is a single listing entry published on the requested day.
type ArticleReference struct {
	Title         string
	URL           string
	PublishedDate time.Time
}

// WholePageSelector marks text extracted without a matched content region.
const WholePageSelector = "document"

// ExtractedText is the cleaned body of one article page.
type ExtractedText struct {
	Body           string
	SourceSelector string
	LengthChars    int
	// Paragraphs are the <p> blocks of the matched region (or the whole page)
	// used by the extractive fallback.
	Paragraphs []string
}

// Degraded reports whether no content region matched.
func (e ExtractedText) Degraded() bool {
	return e.SourceSelector == "" || e.SourceSelector == WholePageSelector
}

// SummaryMethod identifies which tier produced a summary.
type SummaryMethod string

const (
	MethodAbstractive SummaryMethod = "abstractive"
	MethodExtractive  SummaryMethod = "extractive"
)

// FallbackReason explains why the extractive tier was used.
type FallbackReason string

const (
	FallbackNone        FallbackReason = ""
	FallbackShortInput  FallbackReason = "short-input"
	FallbackUnavailable FallbackReason = "unavailable"
	FallbackModelError  FallbackReason = "model-error"
)

// SummaryResult is the final per-article summary.
type SummaryResult struct {
	Text   string
	Method SummaryMethod
	Reason FallbackReason
}

// ArticleDigest pairs an article with its computed summary for reporting.
type ArticleDigest struct {
	Article ArticleReference
	Summary SummaryResult
}

// SameDay compares calendar dates, ignoring time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
