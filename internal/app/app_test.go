package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"AdvisoryDigest/internal/config"
	"AdvisoryDigest/internal/logging"
)

func TestResolveCapability(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	cases := []struct {
		name  string
		cfg   config.SummarizerConfig
		ready bool
	}{
		{name: "disabled", cfg: config.SummarizerConfig{Provider: config.ProviderNone}},
		{name: "unknown provider", cfg: config.SummarizerConfig{Provider: "bart"}},
		{name: "ml without endpoint", cfg: config.SummarizerConfig{Provider: config.ProviderML}},
		{name: "ml unhealthy", cfg: config.SummarizerConfig{Provider: config.ProviderML, ML: config.MLConfig{Endpoint: broken.URL}}},
		{name: "ml healthy", cfg: config.SummarizerConfig{Provider: config.ProviderML, ML: config.MLConfig{Endpoint: healthy.URL}}, ready: true},
		{name: "openai without key", cfg: config.SummarizerConfig{Provider: config.ProviderOpenAI}},
		{name: "openai with key", cfg: config.SummarizerConfig{Provider: config.ProviderOpenAI, OpenAI: config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}}, ready: true},
	}

	for _, tc := range cases {
		got := resolveCapability(context.Background(), tc.cfg)
		if got.Ready() != tc.ready {
			t.Fatalf("%s: expected ready=%v, got %v (%s)", tc.name, tc.ready, got.Ready(), got.Reason())
		}
		if !tc.ready && got.Reason() == "" {
			t.Fatalf("%s: unavailable capability must carry a reason", tc.name)
		}
	}
}

func TestExtractOptionsKeepsOrder(t *testing.T) {
	t.Parallel()

	opts := extractOptions(config.ExtractionConfig{
		Candidates: []config.NamedValue{
			{Name: "field-body", Value: "div.field--name-body"},
			{Name: "main", Value: "main#main"},
		},
		BoilerplateRegions: []config.NamedValue{{Name: "footer", Value: "footer"}},
		BoilerplatePhrases: []config.NamedValue{{Name: "privacy", Value: "privacy policy"}},
		TextTags:           []string{"p"},
	}, nil)

	if len(opts.Candidates) != 2 || opts.Candidates[0].Selector != "div.field--name-body" || opts.Candidates[1].Name != "main" {
		t.Fatalf("unexpected candidates: %+v", opts.Candidates)
	}
	if len(opts.Regions) != 1 || opts.Regions[0].Expr != "footer" {
		t.Fatalf("unexpected regions: %+v", opts.Regions)
	}
	if len(opts.Phrases) != 1 || opts.Phrases[0].Text != "privacy policy" {
		t.Fatalf("unexpected phrases: %+v", opts.Phrases)
	}
}

func TestRunProducesDigest(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("A remote attacker can execute code through the management console. ", 3)
	mux := http.NewServeMux()
	mux.HandleFunc("/listing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<article class="c-teaser">
		  <h3 class="c-teaser__title"><a href="/advisory">Console Advisory</a></h3>
		  <div class="c-teaser__date"><time datetime="2025-06-10T12:00:00Z">Jun 10, 2025</time></div>
		</article>`))
	})
	mux.HandleFunc("/advisory", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<div class="field--name-body"><p>` + body + `</p></div>`))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/summarize", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"summary_text": "Attackers can run code via the console."}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.Config{
		Schedule: config.ScheduleConfig{TargetDate: "June 10, 2025"},
		Sites: []config.SiteConfig{
			{Name: "test", Scanner: "teaser", URL: server.URL + "/listing"},
		},
		Extraction: config.ExtractionConfig{
			Candidates: []config.NamedValue{{Name: "field-body", Value: "div.field--name-body"}},
		},
		Summarizer: config.SummarizerConfig{
			Provider: config.ProviderML,
			ML:       config.MLConfig{Endpoint: server.URL},
		},
	}

	var out bytes.Buffer
	application, err := New(context.Background(), cfg, logging.Discard(), &out)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if err := application.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	report := out.String()
	for _, want := range []string{
		"Found 1 articles published on June 10, 2025:",
		"Title: Console Advisory",
		"URL: " + server.URL + "/advisory",
		"Summary: Attackers can run code via the console.",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestNewRejectsInvalidExtraction(t *testing.T) {
	t.Parallel()

	cfg := config.Config{
		Extraction: config.ExtractionConfig{
			Candidates: []config.NamedValue{{Name: "broken", Value: "div[["}},
		},
	}
	if _, err := New(context.Background(), cfg, logging.Discard(), &bytes.Buffer{}); err == nil {
		t.Fatalf("expected invalid selector error")
	}
}
