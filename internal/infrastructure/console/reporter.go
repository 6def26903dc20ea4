package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"AdvisoryDigest/internal/domain"
	"AdvisoryDigest/internal/ports"
)

const dateLayout = "January 2, 2006"

// Delimiter separates articles in the report.
var Delimiter = strings.Repeat("-", 50)

// Reporter prints the digest as plain text.
type Reporter struct {
	out io.Writer
}

var _ ports.Reporter = (*Reporter)(nil)

// NewReporter writes to out, or stdout when out is nil.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{out: out}
}

// ReportHeader announces how many articles matched.
func (r *Reporter) ReportHeader(_ context.Context, day time.Time, count int) error {
	_, err := fmt.Fprintf(r.out, "\nFound %d articles published on %s:\n", count, day.Format(dateLayout))
	return err
}

// ReportArticle prints title, URL and summary followed by the delimiter.
func (r *Reporter) ReportArticle(_ context.Context, digest domain.ArticleDigest) error {
	_, err := fmt.Fprintf(r.out, "\nTitle: %s\nURL: %s\nSummary: %s\n%s\n",
		digest.Article.Title,
		digest.Article.URL,
		digest.Summary.Text,
		Delimiter)
	return err
}

// ReportEmpty states that nothing was published on day.
func (r *Reporter) ReportEmpty(_ context.Context, day time.Time) error {
	_, err := fmt.Fprintf(r.out, "No articles found for %s.\n", day.Format(dateLayout))
	return err
}
