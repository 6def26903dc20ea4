package summarize

import (
	"context"
	"errors"
	"fmt"

	"AdvisoryDigest/internal/ports"
)

// ErrUnavailable is returned when the abstractive capability was never initialised.
var ErrUnavailable = errors.New("abstractive summarizer unavailable")

// Capability is the process-wide abstractive summarizer handle. It is either
// Available (wrapping a model client) or Unavailable with a reason, so callers
// branch on Ready instead of checking for nil clients.
type Capability struct {
	summarizer ports.AbstractiveSummarizer
	reason     string
}

// Available wraps an initialised summarizer. A nil summarizer yields Unavailable.
func Available(s ports.AbstractiveSummarizer) Capability {
	if s == nil {
		return Unavailable("no abstractive summarizer configured")
	}
	return Capability{summarizer: s}
}

// Unavailable records why the process runs in extractive-only mode.
func Unavailable(reason string) Capability {
	if reason == "" {
		reason = "unavailable"
	}
	return Capability{reason: reason}
}

// Ready reports whether abstractive summarization can be attempted.
func (c Capability) Ready() bool {
	return c.summarizer != nil
}

// Reason explains an Unavailable capability; empty when Ready.
func (c Capability) Reason() string {
	return c.reason
}

// Summarize invokes the wrapped model. Panics raised by the model client are
// converted into errors.
func (c Capability) Summarize(ctx context.Context, text string, maxLength, minLength int) (summary string, err error) {
	if !c.Ready() {
		return "", fmt.Errorf("%w: %s", ErrUnavailable, c.reason)
	}

	defer func() {
		if r := recover(); r != nil {
			summary = ""
			err = fmt.Errorf("abstractive summarizer panicked: %v", r)
		}
	}()

	return c.summarizer.Summarize(ctx, text, maxLength, minLength)
}
