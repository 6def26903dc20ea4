package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"AdvisoryDigest/internal/domain"
)

type stubSummarizer struct {
	calls  int
	output string
	err    error
	panics bool

	gotMax, gotMin int
}

func (s *stubSummarizer) Summarize(_ context.Context, _ string, maxLength, minLength int) (string, error) {
	s.calls++
	s.gotMax, s.gotMin = maxLength, minLength
	if s.panics {
		panic("model exploded")
	}
	return s.output, s.err
}

func extracted(body string, paragraphs ...string) domain.ExtractedText {
	return domain.ExtractedText{
		Body:           body,
		SourceSelector: "field-body",
		LengthChars:    utf8.RuneCountInString(body),
		Paragraphs:     paragraphs,
	}
}

func longBody() string {
	return strings.Repeat("The advisory describes a remote code execution vulnerability. ", 4)
}

func TestOrchestratorSkipsModelForShortInput(t *testing.T) {
	t.Parallel()

	stub := &stubSummarizer{output: "model output"}
	o := NewOrchestrator(Available(stub), DefaultSettings(), nil)

	got := o.Summarize(context.Background(), extracted("Too short.", "Too short."))

	if stub.calls != 0 {
		t.Fatalf("model must not be called for short input, calls=%d", stub.calls)
	}
	if got.Method != domain.MethodExtractive || got.Reason != domain.FallbackShortInput {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Text != "Too short." {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestOrchestratorUsesModel(t *testing.T) {
	t.Parallel()

	stub := &stubSummarizer{output: "  <p>Vendor patched an RCE &amp; published   guidance.</p> "}
	o := NewOrchestrator(Available(stub), DefaultSettings(), nil)

	got := o.Summarize(context.Background(), extracted(longBody(), "paragraph"))

	if stub.calls != 1 {
		t.Fatalf("expected one model call, got %d", stub.calls)
	}
	if stub.gotMax != 150 || stub.gotMin != 30 {
		t.Fatalf("unexpected bounds: max=%d min=%d", stub.gotMax, stub.gotMin)
	}
	if got.Method != domain.MethodAbstractive || got.Reason != domain.FallbackNone {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Text != "Vendor patched an RCE & published guidance." {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestOrchestratorFallsBackOnModelFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		stub *stubSummarizer
	}{
		{name: "error", stub: &stubSummarizer{err: errors.New("CUDA out of memory")}},
		{name: "empty output", stub: &stubSummarizer{output: "   "}},
		{name: "markup only", stub: &stubSummarizer{output: "<div><br/></div>"}},
		{name: "panic", stub: &stubSummarizer{panics: true}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := NewOrchestrator(Available(tt.stub), DefaultSettings(), nil)
			got := o.Summarize(context.Background(), extracted(longBody(), "First paragraph.", "Second paragraph."))

			if tt.stub.calls != 1 {
				t.Fatalf("expected exactly one model attempt, got %d", tt.stub.calls)
			}
			if got.Method != domain.MethodExtractive || got.Reason != domain.FallbackModelError {
				t.Fatalf("unexpected result: %+v", got)
			}
			if got.Text != "First paragraph. Second paragraph." {
				t.Fatalf("unexpected text: %q", got.Text)
			}
		})
	}
}

func TestOrchestratorUnavailableCapability(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(Unavailable("model download failed"), DefaultSettings(), nil)

	got := o.Summarize(context.Background(), extracted(longBody()))
	if got.Method != domain.MethodExtractive || got.Reason != domain.FallbackUnavailable {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Text != NoSummary {
		t.Fatalf("expected sentinel without paragraphs, got %q", got.Text)
	}
}

func TestCapabilityVariants(t *testing.T) {
	t.Parallel()

	if Available(nil).Ready() {
		t.Fatalf("nil summarizer must be unavailable")
	}

	c := Unavailable("")
	if c.Ready() || c.Reason() == "" {
		t.Fatalf("unexpected unavailable capability: %+v", c)
	}

	_, err := c.Summarize(context.Background(), "text", 150, 30)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSettingsDefaults(t *testing.T) {
	t.Parallel()

	s := Settings{MaxLength: 20, MinLength: 50}.withDefaults()
	if s.MinInputChars != 100 || s.BudgetChars != DefaultBudgetChars {
		t.Fatalf("defaults not applied: %+v", s)
	}
	if s.MinLength != 20 {
		t.Fatalf("min length must not exceed max length: %+v", s)
	}
}
