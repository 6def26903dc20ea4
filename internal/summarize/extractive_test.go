package summarize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractiveKeepsParagraphsWithinBudget(t *testing.T) {
	t.Parallel()

	e := NewExtractive(60)
	got := e.Summarize([]string{"First paragraph.", "  ", "Second paragraph."})

	if got != "First paragraph. Second paragraph." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestExtractiveTruncatesOnWordBoundary(t *testing.T) {
	t.Parallel()

	sentence := "Threat actors exploited a deserialization flaw in the management console. "
	paragraphs := []string{
		strings.Repeat(sentence, 3),
		strings.Repeat(sentence, 4),
		"Apply the patch.",
	}

	e := NewExtractive(DefaultBudgetChars)
	got := e.Summarize(paragraphs)

	if n := utf8.RuneCountInString(got); n > DefaultBudgetChars+len(Ellipsis) {
		t.Fatalf("summary length %d exceeds budget", n)
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Fatalf("expected ellipsis suffix: %q", got)
	}

	body := strings.TrimSuffix(got, Ellipsis)
	words := strings.Fields(body)
	last := words[len(words)-1]
	if !strings.Contains(sentence, last) {
		t.Fatalf("last word %q was cut mid-word", last)
	}
	if strings.Contains(got, "Apply the patch.") {
		t.Fatalf("paragraphs after the cut must be dropped")
	}
}

func TestExtractiveCutAtExactBoundary(t *testing.T) {
	t.Parallel()

	e := NewExtractive(10)
	got := e.Summarize([]string{"alpha beta gamma"})

	if got != "alpha beta..." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestExtractiveSingleOversizedWord(t *testing.T) {
	t.Parallel()

	e := NewExtractive(12)

	if got := e.Summarize([]string{"short", "supercalifragilistic"}); got != "short..." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if got := e.Summarize([]string{"supercalifragilistic"}); got != NoSummary {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestExtractiveNoParagraphs(t *testing.T) {
	t.Parallel()

	e := NewExtractive(0)
	if e.Budget() != DefaultBudgetChars {
		t.Fatalf("expected default budget, got %d", e.Budget())
	}
	if got := e.Summarize(nil); got != NoSummary {
		t.Fatalf("expected sentinel, got %q", got)
	}
}
