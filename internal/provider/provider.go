// Package provider sends compiled requests to a remote model and normalizes
// the response.
package provider

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/compiler"
	"github.com/rcliao/coldsteel/internal/model"
)

const (
	// ReasoningModelID is the configured model id that signals the reasoning tier.
	ReasoningModelID = "gpt-reasoning"
	// EmptyResponseText replaces an empty model response.
	EmptyResponseText = "No response content generated."
	// DefaultTopP is attached to every call.
	DefaultTopP = 0.95
)

// Request is one compiled call to a provider.
type Request struct {
	Task     string
	Identity model.Identity
	Config   model.ProviderConfig
	Priority model.PriorityLevel
	// CustomSystemInstruction, when set, is appended as a special agent directive.
	CustomSystemInstruction string
}

// Response is the normalized model answer.
type Response struct {
	Text string
	// GroundingSources is nil when the model returned no citations.
	GroundingSources []model.GroundingSource
}

// Sender is implemented by Gateway and by test fakes.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// ModelFamily names the concrete models of one backend.
type ModelFamily struct {
	// Marker identifies a configured model id that already names a backing model.
	Marker string
	// Heavy is the high-capability model.
	Heavy string
	// Light is the lightweight default model.
	Light string
	// CapabilityMarker identifies high-capability model names.
	CapabilityMarker string
}

// IsHighCapability reports whether name is a high-capability model.
func (f ModelFamily) IsHighCapability(name string) bool {
	return name == f.Heavy || (f.CapabilityMarker != "" && strings.Contains(name, f.CapabilityMarker))
}

// GenerateParams is the provider boundary's generate-content input.
type GenerateParams struct {
	APIKey            string
	BaseURL           string
	Model             string
	Prompt            string
	SystemInstruction string
	Temperature       float64
	TopP              float64
	SearchGrounding   bool
}

// Generation is the provider boundary's generate-content output.
type Generation struct {
	Text    string
	Sources []model.GroundingSource
}

// Generator performs one generate-content call against a backend.
type Generator interface {
	Family() ModelFamily
	Generate(ctx context.Context, p GenerateParams) (*Generation, error)
}

// SelectModel applies the model policy. Precedence is fixed: the reasoning
// tier or a HIGH/CRITICAL priority always wins over a user-selected model.
func SelectModel(f ModelFamily, selectedID string, priority model.PriorityLevel, hasCustom bool) string {
	switch {
	case selectedID == ReasoningModelID || priority == model.PriorityCritical || priority == model.PriorityHigh:
		return f.Heavy
	case f.Marker != "" && strings.Contains(selectedID, f.Marker):
		name, _, _ := strings.Cut(selectedID, ":")
		return name
	case hasCustom:
		return f.Heavy
	default:
		return f.Light
	}
}

// UseGrounding reports whether web grounding is enabled for the call.
func UseGrounding(f ModelFamily, modelName string, priority model.PriorityLevel) bool {
	return f.IsHighCapability(modelName) || priority == model.PriorityCritical
}

// SystemInstruction joins compiled directives with an optional agent directive.
func SystemInstruction(directives, custom string) string {
	if custom == "" {
		return directives
	}
	return directives + "\n\nSPECIAL AGENT DIRECTIVE:\n" + custom
}

// Gateway routes requests to a Generator by provider type.
type Gateway struct {
	def         Generator
	generators  map[model.ProviderType]Generator
	fallbackKey string
	timeout     time.Duration
	logger      *zap.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithGenerator routes configs of type t to g.
func WithGenerator(t model.ProviderType, g Generator) Option {
	return func(gw *Gateway) {
		gw.generators[t] = g
	}
}

// WithFallbackKey sets the credential used when a config carries no API key.
func WithFallbackKey(key string) Option {
	return func(gw *Gateway) {
		gw.fallbackKey = key
	}
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(gw *Gateway) {
		gw.timeout = d
	}
}

// WithLogger sets the gateway's logger.
func WithLogger(l *zap.Logger) Option {
	return func(gw *Gateway) {
		if l != nil {
			gw.logger = l
		}
	}
}

// NewGateway creates a gateway whose default backend is def.
func NewGateway(def Generator, opts ...Option) *Gateway {
	gw := &Gateway{
		def:        def,
		generators: map[model.ProviderType]Generator{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(gw)
	}
	return gw
}

func (gw *Gateway) generatorFor(t model.ProviderType) Generator {
	if g, ok := gw.generators[t]; ok {
		return g
	}
	return gw.def
}

// Send performs one call. It never retries, and any failure is returned as
// an *UplinkError with no partial response.
func (gw *Gateway) Send(ctx context.Context, req Request) (*Response, error) {
	priority := req.Priority
	if !priority.Valid() {
		priority = model.PriorityNormal
	}
	gen := gw.generatorFor(req.Config.Type)
	if gen == nil {
		return nil, &UplinkError{Err: errNoGenerator}
	}
	family := gen.Family()
	compiled := compiler.Compile(req.Identity, priority)
	modelName := SelectModel(family, req.Config.SelectedModelID, priority, req.CustomSystemInstruction != "")

	key := req.Config.APIKey
	if key == "" {
		key = gw.fallbackKey
	}
	params := GenerateParams{
		APIKey:            key,
		BaseURL:           req.Config.BaseURL,
		Model:             modelName,
		Prompt:            req.Task,
		SystemInstruction: SystemInstruction(compiled.SystemDirectives, req.CustomSystemInstruction),
		Temperature:       compiled.Tuning.Creativity,
		TopP:              DefaultTopP,
		SearchGrounding:   UseGrounding(family, modelName, priority),
	}

	if gw.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, gw.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := gen.Generate(ctx, params)
	log := gw.logger.With(
		zap.String("provider", req.Config.ID),
		zap.String("model", modelName),
		zap.String("priority", string(priority)),
		zap.Bool("grounding", params.SearchGrounding),
		zap.Duration("took", time.Since(start)),
	)
	if err != nil {
		log.Warn("provider uplink failure", zap.Error(err))
		return nil, &UplinkError{Err: err}
	}
	log.Debug("provider call complete")

	if out == nil {
		out = &Generation{}
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		text = EmptyResponseText
	}
	resp := &Response{Text: text}
	if len(out.Sources) > 0 {
		resp.GroundingSources = out.Sources
	}
	return resp, nil
}
