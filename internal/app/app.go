package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"AdvisoryDigest/internal/config"
	"AdvisoryDigest/internal/extract"
	"AdvisoryDigest/internal/infrastructure/console"
	"AdvisoryDigest/internal/infrastructure/fetch"
	"AdvisoryDigest/internal/infrastructure/llm"
	"AdvisoryDigest/internal/infrastructure/ml"
	"AdvisoryDigest/internal/infrastructure/parser"
	"AdvisoryDigest/internal/logging"
	"AdvisoryDigest/internal/scanner"
	"AdvisoryDigest/internal/summarize"
	"AdvisoryDigest/internal/usecase"
)

const probeTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application. The summarizer capability is resolved
// once here; an unreachable backend only degrades the run to extractive mode.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, out io.Writer) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if out == nil {
		out = os.Stdout
	}

	fetcher := fetch.NewClient(nil, cfg.HTTP.UserAgent, cfg.HTTP.Timeout)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewTeaserScanner(fetcher, baseLogger.With("component", "scanner.teaser")))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))

	extractor, err := extract.New(extractOptions(cfg.Extraction, baseLogger.With("component", "extract")))
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	capability := buildCapability(ctx, cfg.Summarizer, baseLogger.With("component", "capability"))
	summarizer := summarize.NewOrchestrator(capability, summarize.Settings{
		MinInputChars: cfg.Summarizer.MinInputChars,
		MaxLength:     cfg.Summarizer.MaxLength,
		MinLength:     cfg.Summarizer.MinLength,
		BudgetChars:   cfg.Summarizer.BudgetChars,
	}, baseLogger.With("component", "summarize"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Fetcher:    fetcher,
		Extractor:  extractor,
		Summarizer: summarizer,
		Reporter:   console.NewReporter(out),
		Logger:     baseLogger.With("component", "pipeline"),
	})
	return &Application{cfg: cfg, pipeline: pipeline, logger: baseLogger}, nil
}

// Run produces the digest for the configured day.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	_, err := a.pipeline.ProcessDay(ctx, a.cfg.Schedule.Day(time.Now()))
	return err
}

func buildCapability(ctx context.Context, cfg config.SummarizerConfig, logger *slog.Logger) summarize.Capability {
	capability := resolveCapability(ctx, cfg)
	if capability.Ready() {
		logger.Info("abstractive summarizer ready", "provider", cfg.Provider)
	} else {
		logger.Warn("abstractive summarizer unavailable, using extractive summaries",
			"provider", cfg.Provider, "reason", capability.Reason())
	}
	return capability
}

func resolveCapability(ctx context.Context, cfg config.SummarizerConfig) summarize.Capability {
	switch cfg.Provider {
	case config.ProviderML:
		if cfg.ML.Endpoint == "" {
			return summarize.Unavailable("summarizer endpoint is not configured")
		}
		client := ml.NewClient(cfg.ML.Endpoint, cfg.ML.APIKey, cfg.ML.Timeout)
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()
		if err := client.Ping(probeCtx); err != nil {
			return summarize.Unavailable(err.Error())
		}
		return summarize.Available(client)
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return summarize.Unavailable("openai api key is not configured")
		}
		client := llm.NewSummarizer(cfg.OpenAI)
		if cfg.OpenAI.Probe {
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			if err := client.Probe(probeCtx); err != nil {
				return summarize.Unavailable(err.Error())
			}
		}
		return summarize.Available(client)
	case config.ProviderNone, "":
		return summarize.Unavailable("summarizer disabled")
	default:
		return summarize.Unavailable(fmt.Sprintf("unknown summarizer provider %q", cfg.Provider))
	}
}

func extractOptions(cfg config.ExtractionConfig, logger *slog.Logger) extract.Options {
	opts := extract.Options{TextTags: cfg.TextTags, Logger: logger}
	for _, c := range cfg.Candidates {
		opts.Candidates = append(opts.Candidates, extract.Candidate{Name: c.Name, Selector: c.Value})
	}
	for _, r := range cfg.BoilerplateRegions {
		opts.Regions = append(opts.Regions, extract.RegionPattern{Name: r.Name, Expr: r.Value})
	}
	for _, p := range cfg.BoilerplatePhrases {
		opts.Phrases = append(opts.Phrases, extract.Phrase{Name: p.Name, Text: p.Value})
	}
	return opts
}
