package summarize

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"AdvisoryDigest/internal/domain"
	"AdvisoryDigest/internal/ports"
)

// ErrMalformedSummary marks model output with no usable text.
var ErrMalformedSummary = errors.New("malformed abstractive summary")

// Settings holds the fixed tier thresholds and model length bounds.
type Settings struct {
	MinInputChars int
	MaxLength     int
	MinLength     int
	BudgetChars   int
}

// DefaultSettings mirrors the values the summarizer model was tuned for.
func DefaultSettings() Settings {
	return Settings{
		MinInputChars: 100,
		MaxLength:     150,
		MinLength:     30,
		BudgetChars:   DefaultBudgetChars,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.MinInputChars <= 0 {
		s.MinInputChars = def.MinInputChars
	}
	if s.MaxLength <= 0 {
		s.MaxLength = def.MaxLength
	}
	if s.MinLength <= 0 || s.MinLength > s.MaxLength {
		s.MinLength = min(def.MinLength, s.MaxLength)
	}
	if s.BudgetChars <= 0 {
		s.BudgetChars = def.BudgetChars
	}
	return s
}

// Orchestrator picks between the abstractive and extractive tiers per article.
// The abstractive tier is attempted at most once and the extractive tier
// always produces a result.
type Orchestrator struct {
	capability Capability
	extractive *Extractive
	settings   Settings
	policy     *bluemonday.Policy
	logger     *slog.Logger
}

var _ ports.SummaryStrategy = (*Orchestrator)(nil)

// NewOrchestrator wires the capability chosen at startup.
func NewOrchestrator(capability Capability, settings Settings, logger *slog.Logger) *Orchestrator {
	settings = settings.withDefaults()
	return &Orchestrator{
		capability: capability,
		extractive: NewExtractive(settings.BudgetChars),
		settings:   settings,
		policy:     bluemonday.StrictPolicy(),
		logger:     logger,
	}
}

// Summarize never fails; model errors degrade to the extractive tier.
func (o *Orchestrator) Summarize(ctx context.Context, text domain.ExtractedText) domain.SummaryResult {
	if text.LengthChars < o.settings.MinInputChars {
		o.log(ctx, slog.LevelInfo, "extracted text too short for abstractive summary",
			"chars", text.LengthChars, "min", o.settings.MinInputChars, "selector", text.SourceSelector)
		return o.fallback(text, domain.FallbackShortInput)
	}

	if !o.capability.Ready() {
		o.log(ctx, slog.LevelDebug, "abstractive summarizer unavailable", "reason", o.capability.Reason())
		return o.fallback(text, domain.FallbackUnavailable)
	}

	summary, err := o.abstractive(ctx, text.Body)
	if err != nil {
		o.log(ctx, slog.LevelWarn, "abstractive summary failed, using extractive fallback", "error", err)
		return o.fallback(text, domain.FallbackModelError)
	}

	return domain.SummaryResult{Text: summary, Method: domain.MethodAbstractive}
}

func (o *Orchestrator) abstractive(ctx context.Context, body string) (string, error) {
	raw, err := o.capability.Summarize(ctx, body, o.settings.MaxLength, o.settings.MinLength)
	if err != nil {
		return "", err
	}

	clean := html.UnescapeString(o.policy.Sanitize(raw))
	clean = strings.Join(strings.Fields(clean), " ")
	if clean == "" {
		return "", ErrMalformedSummary
	}
	return clean, nil
}

func (o *Orchestrator) fallback(text domain.ExtractedText, reason domain.FallbackReason) domain.SummaryResult {
	return domain.SummaryResult{
		Text:   o.extractive.Summarize(text.Paragraphs),
		Method: domain.MethodExtractive,
		Reason: reason,
	}
}

func (o *Orchestrator) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Log(ctx, level, msg, args...)
	}
}
