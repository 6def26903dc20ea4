package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"AdvisoryDigest/internal/domain"
	"AdvisoryDigest/internal/ports"
	"AdvisoryDigest/internal/scanner"
)

var defaultListing = scanner.Listing{
	Item: "article.c-teaser",
	Link: "h3.c-teaser__title a[href]",
	Date: "div.c-teaser__date time",
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TeaserScanner lists the teaser cards of a single listing page that were
// published on the requested day.
type TeaserScanner struct {
	fetcher ports.PageFetcher
	logger  *slog.Logger
}

// NewTeaserScanner wires the page fetcher used for the listing.
func NewTeaserScanner(fetcher ports.PageFetcher, logger *slog.Logger) *TeaserScanner {
	return &TeaserScanner{fetcher: fetcher, logger: logger}
}

// Name identifies the strategy inside the registry.
func (s *TeaserScanner) Name() string {
	return "teaser"
}

// Scan fetches the listing page and returns the matching articles in page order.
func (s *TeaserScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleReference, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no listing url provided for site %s", req.SiteName)
	}
	if s.fetcher == nil {
		return nil, errors.New("teaser scanner has no fetcher")
	}

	doc, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", req.URL, err)
	}

	base := doc.Url
	if base == nil {
		base, err = url.Parse(req.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid listing url %s: %w", req.URL, err)
		}
	}

	return s.extractArticles(doc, base, req.Day, withDefaults(req.Listing)), nil
}

func (s *TeaserScanner) extractArticles(doc *goquery.Document, base *url.URL, day time.Time, listing scanner.Listing) []domain.ArticleReference {
	collected := make([]domain.ArticleReference, 0)

	items := doc.Find(listing.Item)
	if items.Length() == 0 {
		s.log(slog.LevelWarn, "no listing items found, the page template may have changed",
			"selector", listing.Item, "url", base.String())
		return collected
	}

	valid := 0
	items.Each(func(_ int, item *goquery.Selection) {
		link := item.Find(listing.Link).First()
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			s.log(slog.LevelDebug, "skip listing item without link")
			return
		}

		title := nodeText(link)
		target, err := base.Parse(href)
		if err != nil {
			s.log(slog.LevelWarn, "skip listing item with invalid link", "title", title, "href", href, "error", err)
			return
		}

		dateTag := item.Find(listing.Date).First()
		if dateTag.Length() == 0 {
			s.log(slog.LevelWarn, "no date tag found for article", "title", title)
			return
		}

		published, err := parsePublished(dateTag)
		if err != nil {
			s.log(slog.LevelWarn, "could not parse article date", "title", title, "text", nodeText(dateTag), "error", err)
			return
		}

		valid++
		if !domain.SameDay(published, day) {
			return
		}

		collected = append(collected, domain.ArticleReference{
			Title:         title,
			URL:           target.String(),
			PublishedDate: published,
		})
	})

	if valid == 0 {
		s.log(slog.LevelWarn, "no valid listing items, the page template may have changed",
			"items", items.Length(), "url", base.String())
	}

	s.log(slog.LevelDebug, "listing parsed", "items", items.Length(), "valid", valid, "matched", len(collected))
	return collected
}

// parsePublished prefers the machine-readable datetime attribute and falls
// back to the visible "Jun 10, 2025" text.
func parsePublished(tag *goquery.Selection) (time.Time, error) {
	if iso, ok := tag.Attr("datetime"); ok {
		if parsed, err := parseISO(iso); err == nil {
			return parsed, nil
		}
	}

	text := nodeText(tag)
	if text == "" {
		return time.Time{}, errors.New("empty date text")
	}

	parsed, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date text %q: %w", text, err)
	}
	return parsed, nil
}

func parseISO(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty datetime attribute")
	}
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		value = value[:len(value)-1] + "+00:00"
	}

	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", value)
}

func withDefaults(l scanner.Listing) scanner.Listing {
	if l.Item == "" {
		l.Item = defaultListing.Item
	}
	if l.Link == "" {
		l.Link = defaultListing.Link
	}
	if l.Date == "" {
		l.Date = defaultListing.Date
	}
	return l
}

func nodeText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func (s *TeaserScanner) log(level slog.Level, msg string, args ...any) {
	if s.logger != nil {
		s.logger.Log(context.Background(), level, msg, args...)
	}
}
