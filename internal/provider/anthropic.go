package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicFamily is the model family served by the Anthropic API.
var AnthropicFamily = ModelFamily{
	Marker:           "claude",
	Heavy:            "claude-opus-4-20250514",
	Light:            "claude-sonnet-4-20250514",
	CapabilityMarker: "opus",
}

const anthropicMaxTokens = 4096

// AnthropicGenerator calls the Anthropic Messages API. It has no search
// tool, so SearchGrounding is ignored and no sources are returned.
type AnthropicGenerator struct {
	clients *clientCache[*anthropic.Client]
}

// NewAnthropicGenerator creates a generator with an empty client cache.
func NewAnthropicGenerator() (*AnthropicGenerator, error) {
	clients, err := newClientCache(func(key string) (*anthropic.Client, error) {
		apiKey, baseURL, _ := strings.Cut(key, "\x00")
		if apiKey == "" {
			return nil, errors.New("anthropic API key is required")
		}
		opts := []option.RequestOption{option.WithAPIKey(apiKey)}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
		client := anthropic.NewClient(opts...)
		return &client, nil
	})
	if err != nil {
		return nil, err
	}
	return &AnthropicGenerator{clients: clients}, nil
}

func (g *AnthropicGenerator) Family() ModelFamily { return AnthropicFamily }

func (g *AnthropicGenerator) Generate(ctx context.Context, p GenerateParams) (*Generation, error) {
	client, err := g.clients.get(p.APIKey + "\x00" + p.BaseURL)
	if err != nil {
		return nil, err
	}

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.Model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: p.SystemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.Prompt)),
		},
		Temperature: anthropic.Float(p.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return &Generation{Text: b.String()}, nil
}

// Close releases cached clients.
func (g *AnthropicGenerator) Close() {
	g.clients.close()
}
