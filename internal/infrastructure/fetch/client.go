package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AdvisoryDigest/internal/ports"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "AdvisoryDigest/1.0"
)

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client downloads HTML pages and parses them into goquery documents.
type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration
}

var _ ports.PageFetcher = (*Client)(nil)

// NewClient wires an HTTP client; timeout defaults to 10 seconds.
func NewClient(client *http.Client, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{http: client, userAgent: userAgent, timeout: timeout}
}

// Fetch issues one bounded GET and parses the body. The returned document's
// Url is the final response URL so relative links resolve correctly.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", pageURL, err)
	}
	if scheme := strings.ToLower(parsed.Scheme); scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %q", parsed.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	doc.Url = parsed
	if resp.Request != nil && resp.Request.URL != nil {
		doc.Url = resp.Request.URL
	}

	return doc, nil
}
