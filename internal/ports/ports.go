package ports

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AdvisoryDigest/internal/domain"
)

// PageFetcher retrieves and parses a single HTML page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// ArticleSource lists the articles published on a given day.
type ArticleSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.ArticleReference, error)
}

// ContentExtractor turns a parsed article page into cleaned text.
type ContentExtractor interface {
	Extract(doc *goquery.Document) domain.ExtractedText
}

// AbstractiveSummarizer calls a model that paraphrases text within length bounds.
type AbstractiveSummarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// SummaryStrategy always produces a summary for extracted text.
type SummaryStrategy interface {
	Summarize(ctx context.Context, text domain.ExtractedText) domain.SummaryResult
}

// Reporter renders the run results.
type Reporter interface {
	ReportHeader(ctx context.Context, day time.Time, count int) error
	ReportArticle(ctx context.Context, digest domain.ArticleDigest) error
	ReportEmpty(ctx context.Context, day time.Time) error
}
