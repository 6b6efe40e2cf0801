package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/amirkhadim36-creator/reelpress/internal/config"
)

// AnthropicProvider generates reviews through Anthropic's Claude API
type AnthropicProvider struct {
	client    *anthropic.Client
	provider  string // e.g. "anthropic"
	model     string
	maxTokens int
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, model string, maxTokens int) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicProvider{
		client:    &client,
		provider:  config.ProviderAnthropic,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Review generates a structured review post for a catalog entry
func (c *AnthropicProvider) Review(ctx context.Context, req ReviewRequest) (*ReviewPayload, error) {
	prompt := BuildReviewPrompt(req)

	// Use prefilling to ensure Claude continues with valid JSON (starting after the "{")
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock("{")),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	// Extract text from response
	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	// Cache the prompt/response for debugging
	if cachePath, err := SaveExchange(Exchange{
		Timestamp: time.Now(),
		Provider:  c.provider,
		Model:     c.model,
		Prompt:    prompt,
		Response:  responseText,
	}); err != nil {
		log.Printf("Failed to cache LLM exchange: %v", err)
	} else {
		log.Printf("Cached LLM exchange to: %s", cachePath)
	}

	if responseText == "" {
		return nil, fmt.Errorf("Claude returned empty response")
	}

	// Prepend "{" since we used prefilling - the response continues from after the "{"
	return ParseReviewResponse([]byte("{" + responseText))
}

// ParseReviewResponse decodes a provider JSON payload and validates
// the required fields.
func ParseReviewResponse(data []byte) (*ReviewPayload, error) {
	var payload ReviewPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse review JSON: %w (response was: %s)", err, string(data))
	}

	if payload.Title == "" || payload.Content == "" || payload.Category == "" {
		return nil, fmt.Errorf("review payload missing required fields: %s", string(data))
	}
	if payload.Sentiment < 0 || payload.Sentiment > 100 {
		return nil, fmt.Errorf("review sentiment out of range: %d", payload.Sentiment)
	}

	return &payload, nil
}
