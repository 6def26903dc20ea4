package parser

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"AdvisoryDigest/internal/config"
	"AdvisoryDigest/internal/infrastructure/fetch"
	"AdvisoryDigest/internal/logging"
	"AdvisoryDigest/internal/scanner"
)

func newSourceServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingPage))
	})
	return httptest.NewServer(mux)
}

func newSource(server *httptest.Server, sites []config.SiteConfig, logs *bytes.Buffer) *StrategySource {
	logger := logging.NewWithWriter(logs, "debug")

	registry := scanner.NewRegistry()
	registry.Register(NewTeaserScanner(fetch.NewClient(server.Client(), "", time.Second), logger))
	return NewStrategySource(registry, sites, logger)
}

func TestFetchDailySkipsFailingSites(t *testing.T) {
	t.Parallel()

	server := newSourceServer()
	defer server.Close()

	var logs bytes.Buffer
	source := newSource(server, []config.SiteConfig{
		{Name: "broken", Scanner: "teaser", URL: server.URL + "/broken"},
		{Name: "unknown", Scanner: "nope", URL: server.URL + "/listing"},
		{Name: "cisa", Scanner: "teaser", URL: server.URL + "/listing"},
	}, &logs)

	articles, err := source.FetchDaily(context.Background(), targetDay)
	if err != nil {
		t.Fatalf("partial failure must not be an error: %v", err)
	}

	want := []string{"Siemens SIMATIC", "CISA Adds Two Known Exploited Vulnerabilities", "Broken ISO"}
	if len(articles) != len(want) {
		t.Fatalf("expected %d articles, got %d: %+v", len(want), len(articles), articles)
	}
	for i, title := range want {
		if articles[i].Title != title {
			t.Fatalf("article %d: got %q, want %q", i, articles[i].Title, title)
		}
	}

	out := logs.String()
	if !strings.Contains(out, `msg="scan site failed" site=broken`) {
		t.Fatalf("failed scan not logged:\n%s", out)
	}
	if !strings.Contains(out, `msg="resolve scanner failed" site=unknown`) {
		t.Fatalf("unregistered scanner not logged:\n%s", out)
	}
}

func TestFetchDailyAllSitesFail(t *testing.T) {
	t.Parallel()

	server := newSourceServer()
	defer server.Close()

	var logs bytes.Buffer
	source := newSource(server, []config.SiteConfig{
		{Name: "broken", Scanner: "teaser", URL: server.URL + "/broken"},
		{Name: "unknown", Scanner: "nope", URL: server.URL + "/listing"},
	}, &logs)

	articles, err := source.FetchDaily(context.Background(), targetDay)
	if err == nil {
		t.Fatalf("expected an error when every site fails, got %d articles", len(articles))
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %+v", articles)
	}
	for _, site := range []string{"scan site broken", "site unknown"} {
		if !strings.Contains(err.Error(), site) {
			t.Fatalf("error %q does not mention %q", err, site)
		}
	}
}
