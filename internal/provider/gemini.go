package provider

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/rcliao/coldsteel/internal/model"
)

// GeminiFamily is the model family served by the Gemini API.
var GeminiFamily = ModelFamily{
	Marker:           "gemini",
	Heavy:            "gemini-3-pro-preview",
	Light:            "gemini-3-flash-preview",
	CapabilityMarker: "pro",
}

// GeminiGenerator calls the Gemini API through google.golang.org/genai.
type GeminiGenerator struct {
	clients *clientCache[*genai.Client]
}

// NewGeminiGenerator creates a generator with an empty client cache.
func NewGeminiGenerator() (*GeminiGenerator, error) {
	clients, err := newClientCache(func(key string) (*genai.Client, error) {
		if key == "" {
			return nil, errors.New("GenAI API key is required")
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create GenAI client: %w", err)
		}
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{clients: clients}, nil
}

func (g *GeminiGenerator) Family() ModelFamily { return GeminiFamily }

func (g *GeminiGenerator) Generate(ctx context.Context, p GenerateParams) (*Generation, error) {
	client, err := g.clients.get(p.APIKey)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(p.Temperature)),
		TopP:              genai.Ptr(float32(p.TopP)),
	}
	if p.SearchGrounding {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := client.Models.GenerateContent(ctx, p.Model, genai.Text(p.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	return &Generation{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}, nil
}

// groundingSources extracts web citations from the first candidate.
func groundingSources(resp *genai.GenerateContentResponse) []model.GroundingSource {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []model.GroundingSource
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, model.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}

// Close releases cached clients.
func (g *GeminiGenerator) Close() {
	g.clients.close()
}
