package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"AdvisoryDigest/internal/ports"
)

// ErrEmptySummary is returned when the service answers without summary text.
var ErrEmptySummary = errors.New("inference service returned no summary")

// Client talks to a summarization inference service.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.AbstractiveSummarizer = (*Client)(nil)

// NewClient creates a reusable HTTP client; timeout defaults to 60 seconds.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type summarizeRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters summarizeOptions `json:"parameters"`
}

type summarizeOptions struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type summaryText struct {
	SummaryText string `json:"summary_text"`
}

// Summarize requests a summary bounded by maxLength and minLength tokens.
func (c *Client) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if c.endpoint == "" {
		return "", errors.New("inference endpoint is not configured")
	}

	payload := summarizeRequest{
		Inputs: text,
		Parameters: summarizeOptions{
			MaxLength: maxLength,
			MinLength: minLength,
		},
	}

	var raw json.RawMessage
	if err := c.post(ctx, "/summarize", payload, &raw); err != nil {
		return "", err
	}

	return decodeSummary(raw)
}

// Ping checks that the service is reachable before the first article.
func (c *Client) Ping(ctx context.Context) error {
	if c.endpoint == "" {
		return errors.New("inference endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

// decodeSummary accepts both {"summary_text": ...} and the list form
// [{"summary_text": ...}] returned by pipeline-style servers.
func decodeSummary(raw json.RawMessage) (string, error) {
	var list []summaryText
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 || strings.TrimSpace(list[0].SummaryText) == "" {
			return "", ErrEmptySummary
		}
		return list[0].SummaryText, nil
	}

	var single summaryText
	if err := json.Unmarshal(raw, &single); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	if strings.TrimSpace(single.SummaryText) == "" {
		return "", ErrEmptySummary
	}
	return single.SummaryText, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
