package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"AdvisoryDigest/internal/domain"
	"AdvisoryDigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the digest pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Fetcher    ports.PageFetcher
	Extractor  ports.ContentExtractor
	Summarizer ports.SummaryStrategy
	Reporter   ports.Reporter
	Logger     *slog.Logger
}

// Pipeline lists one day's articles and summarizes them one at a time.
type Pipeline struct {
	source     ports.ArticleSource
	fetcher    ports.PageFetcher
	extractor  ports.ContentExtractor
	summarizer ports.SummaryStrategy
	reporter   ports.Reporter
	logger     *slog.Logger
}

// Stats counts the outcome of one run.
type Stats struct {
	Listed      int
	Summarized  int
	Abstractive int
	Skipped     int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		fetcher:    deps.Fetcher,
		extractor:  deps.Extractor,
		summarizer: deps.Summarizer,
		reporter:   deps.Reporter,
		logger:     deps.Logger,
	}
}

// ProcessDay lists the day's articles, then fetches, extracts and summarizes
// each in listing order. Per-article failures are logged and skipped; a
// listing failure is reported as an empty day.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (Stats, error) {
	var stats Stats
	if p.source == nil || p.fetcher == nil || p.extractor == nil || p.summarizer == nil || p.reporter == nil {
		return stats, errors.New("pipeline is not configured")
	}

	p.info("searching for articles", "day", day.Format("2006-01-02"))

	articles, err := p.source.FetchDaily(ctx, day)
	if err != nil {
		p.logError("list articles failed", "error", err)
		articles = nil
	}

	stats.Listed = len(articles)
	if len(articles) == 0 {
		if err := p.reporter.ReportEmpty(ctx, day); err != nil {
			return stats, fmt.Errorf("report empty day: %w", err)
		}
		return stats, nil
	}

	if err := p.reporter.ReportHeader(ctx, day, len(articles)); err != nil {
		return stats, fmt.Errorf("report header: %w", err)
	}

	for _, article := range articles {
		summary, ok := p.summarizeArticle(ctx, article)
		if !ok {
			stats.Skipped++
			continue
		}

		stats.Summarized++
		if summary.Method == domain.MethodAbstractive {
			stats.Abstractive++
		}

		if err := p.reporter.ReportArticle(ctx, domain.ArticleDigest{Article: article, Summary: summary}); err != nil {
			return stats, fmt.Errorf("report article %s: %w", article.URL, err)
		}
	}

	p.info("digest complete",
		"listed", stats.Listed,
		"summarized", stats.Summarized,
		"abstractive", stats.Abstractive,
		"skipped", stats.Skipped)
	return stats, nil
}

func (p *Pipeline) summarizeArticle(ctx context.Context, article domain.ArticleReference) (domain.SummaryResult, bool) {
	doc, err := p.fetcher.Fetch(ctx, article.URL)
	if err != nil {
		p.logError("fetch article failed, skipping", "url", article.URL, "error", err)
		return domain.SummaryResult{}, false
	}

	text := p.extractor.Extract(doc)
	summary := p.summarizer.Summarize(ctx, text)

	p.debug("article summarized",
		"url", article.URL,
		"selector", text.SourceSelector,
		"chars", text.LengthChars,
		"method", summary.Method,
		"fallback", summary.Reason)
	return summary, true
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
