// Package llm wraps the external text-generation provider behind a small
// interface so services depend on a contract, not on a vendor SDK. The
// production implementation targets any OpenAI-compatible chat-completions
// endpoint.
package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nourish-labs/go-coach-backend/internal/config"
)

// ErrEmptyCompletion is returned when the provider answers with no choices.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Client is the text-generation contract consumed by the chat, digest, and
// photo-analysis paths. Implementations must be safe for concurrent use.
type Client interface {
	// Complete sends a system prompt plus one user message and returns the
	// model's reply text.
	Complete(ctx context.Context, system, user string) (string, error)

	// CompleteVision sends a prompt together with an image reference to a
	// vision-capable model and returns the reply text.
	CompleteVision(ctx context.Context, prompt, imageURL string) (string, error)
}

// OpenAI implements Client on top of the go-openai SDK.
type OpenAI struct {
	api         *openai.Client
	chatModel   string
	visionModel string
}

// NewOpenAI builds an OpenAI client from configuration. A non-empty
// BaseURL redirects requests to a compatible self-hosted endpoint.
func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		api:         openai.NewClientWithConfig(c),
		chatModel:   cfg.ChatModel,
		visionModel: cfg.VisionModel,
	}
}

// Complete implements Client.
func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// CompleteVision implements Client.
func (o *OpenAI) CompleteVision(ctx context.Context, prompt, imageURL string) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
