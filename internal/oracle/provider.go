package oracle

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"aura_oracle/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

// Prompt is what the service sends to a generative provider.
type Prompt struct {
	Kind        domain.Kind // Reading kind, used for logging
	System      string
	User        string
	Temperature float32 // Sampling temperature
}

// Provider turns a prompt into free text.
type Provider interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, p Prompt) (string, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }

// OpenAIProvider calls an OpenAI-compatible chat completion endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a provider. baseURL and httpClient are optional.
func NewOpenAIProvider(apiKey, baseURL, model string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/") // OpenAI-compatible endpoint
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient // Custom transport, mainly for tests
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg), model: model}
}

// Complete sends one chat completion request and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: prompt.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices") // Treated as a provider failure
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
