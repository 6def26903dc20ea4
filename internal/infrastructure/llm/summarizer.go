package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"AdvisoryDigest/internal/config"
	"AdvisoryDigest/internal/ports"
)

// ErrTruncated marks a completion cut off by the token limit.
var ErrTruncated = errors.New("completion truncated by token limit")

// ChatClient is the subset of *openai.Client used for summaries.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ModelLister is implemented by clients that can enumerate models.
type ModelLister interface {
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Summarizer implements ports.AbstractiveSummarizer on an OpenAI-compatible API.
type Summarizer struct {
	client       ChatClient
	model        string
	systemPrompt string
}

var _ ports.AbstractiveSummarizer = (*Summarizer)(nil)

// NewSummarizer builds a client from configuration.
func NewSummarizer(cfg config.OpenAIConfig) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return NewSummarizerWithClient(openai.NewClientWithConfig(clientCfg), cfg.Model, cfg.SystemPrompt)
}

// NewSummarizerWithClient wires an arbitrary chat backend.
func NewSummarizerWithClient(client ChatClient, model, systemPrompt string) *Summarizer {
	return &Summarizer{client: client, model: model, systemPrompt: systemPrompt}
}

// Summarize asks the model for a plain-text summary of roughly minLength to
// maxLength words.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if s == nil || s.client == nil || s.model == "" {
		return "", errors.New("llm summarizer misconfigured")
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: safePrompt(s.systemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(text, maxLength, minLength)},
		},
		MaxTokens:   maxLength * 2,
		Temperature: 0,
		N:           1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", ErrTruncated
	}

	out := strings.TrimSpace(choice.Message.Content)
	if out == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return out, nil
}

// Probe lists models once to verify credentials and the configured model.
func (s *Summarizer) Probe(ctx context.Context) error {
	lister, ok := s.client.(ModelLister)
	if !ok {
		return nil
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models.Models {
		if m.ID == s.model {
			return nil
		}
	}
	return fmt.Errorf("model %s is not served by the endpoint", s.model)
}

func buildUserMessage(text string, maxLength, minLength int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following advisory in plain prose between %d and %d words. ", minLength, maxLength)
	b.WriteString("Do not add headings, lists or markup.\n\n")
	b.WriteString(text)
	return b.String()
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You summarize cybersecurity advisories."
	}
	return prompt
}
