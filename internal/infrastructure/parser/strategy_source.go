package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"AdvisoryDigest/internal/config"
	"AdvisoryDigest/internal/domain"
	"AdvisoryDigest/internal/ports"
	"AdvisoryDigest/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchDaily runs every configured site's scanner in order. A failing site is
// logged and skipped; an error is returned only when no site could be listed.
func (s *StrategySource) FetchDaily(ctx context.Context, day time.Time) ([]domain.ArticleReference, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sites) == 0 {
		return nil, fmt.Errorf("no sites configured")
	}

	s.debug("fetch daily", "sites", len(s.sites), "day", day.Format("2006-01-02"))

	var (
		aggregated []domain.ArticleReference
		failures   []error
	)
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "url", site.URL)
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("resolve scanner failed", "site", site.Name, "error", err)
			}
			failures = append(failures, fmt.Errorf("site %s: %w", site.Name, err))
			continue
		}

		req := scanner.Request{
			Day:      day,
			SiteName: site.Name,
			URL:      site.URL,
			Listing:  toScannerListing(site.Listing),
			Options:  site.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("scan site failed", "site", site.Name, "error", err)
			}
			failures = append(failures, fmt.Errorf("scan site %s: %w", site.Name, err))
			continue
		}

		s.debug("site produced articles", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(failures) == len(s.sites) {
		return nil, errors.Join(failures...)
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func toScannerListing(cfg config.ListingConfig) scanner.Listing {
	return scanner.Listing{
		Item: cfg.Item,
		Link: cfg.Link,
		Date: cfg.Date,
	}
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
