// Package synthesis merges the team's outputs into one artifact.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/provider"
)

// Instruction is the Dev-Master directive attached to the synthesis call.
const Instruction = "Act as the Dev-Master. You are the final compiler of thought. " +
	"Synthesize the agent team's outputs into a single, high-precision artifact. " +
	"Resolve conflicts among the four inputs and produce one directive consistent with the declared priority."

// DegradedText replaces the synthesis when the provider call fails.
const DegradedText = "Error synthesizing multi-agent output. Displaying raw team data."

// Request is the synthesis input for one task.
type Request struct {
	Task     string
	Outputs  []model.AgentOutput
	Identity model.Identity
	Config   model.ProviderConfig
	Online   bool
	Priority model.PriorityLevel
}

// Compiler produces artifacts.
type Compiler struct {
	sender provider.Sender
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the compiler's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the artifact timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Compiler) { c.now = now }
}

// WithIDs overrides artifact id generation.
func WithIDs(newID func() string) Option {
	return func(c *Compiler) { c.newID = newID }
}

// New returns a Compiler that uses sender for online synthesis.
func New(sender provider.Sender, opts ...Option) *Compiler {
	c := &Compiler{
		sender: sender,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile always returns an artifact. A failed provider call yields a
// degraded artifact carrying DegradedText.
func (c *Compiler) Compile(ctx context.Context, req Request) model.Artifact {
	var (
		content  string
		sources  []model.GroundingSource
		degraded bool
	)

	if req.Online {
		resp, err := c.sender.Send(ctx, provider.Request{
			Task:                    Prompt(req.Task, req.Priority, req.Outputs),
			Identity:                req.Identity,
			Config:                  req.Config,
			Priority:                req.Priority,
			CustomSystemInstruction: Instruction,
		})
		if err != nil {
			c.logger.Warn("synthesis degraded", zap.Error(err))
			content = DegradedText
			degraded = true
		} else {
			content = resp.Text
			sources = resp.GroundingSources
		}
	} else {
		content = OfflineText(req.Task, req.Priority)
	}

	a := model.Artifact{
		ID:           c.newID(),
		Title:        model.TitleFromTask(req.Task),
		Content:      content,
		AgentOutputs: append([]model.AgentOutput(nil), req.Outputs...),
		Timestamp:    c.now(),
		Priority:     req.Priority,
		Degraded:     degraded,
	}
	if len(sources) > 0 {
		a.GroundingSources = sources
	}
	return a
}

// Prompt builds the online synthesis prompt.
func Prompt(task string, priority model.PriorityLevel, outputs []model.AgentOutput) string {
	inputs := make([]string, 0, len(outputs))
	for _, o := range outputs {
		inputs = append(inputs, fmt.Sprintf("[%s]: %s", o.Role, o.Content))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TASK: %s\nPRIORITY: %s\n\n", task, priority)
	b.WriteString("AGENT INPUTS:\n")
	b.WriteString(strings.Join(inputs, "\n\n"))
	fmt.Fprintf(&b, "\n\nBased on the agent inputs above, provide a final, cohesive directive aligned with the %s priority level.\n", priority)
	b.WriteString("Resolve any conflicts and ensure the response follows the Cold Steel doctrine.")
	return b.String()
}

// OfflineText is the fixed template used without network access.
func OfflineText(task string, priority model.PriorityLevel) string {
	return strings.Join([]string{
		"FINAL DIRECTIVE: " + strings.ToUpper(task),
		strings.Repeat("-", 41),
		"[OFFLINE MODE] Synthesized from deterministic stubs.",
		"PRIORITY STATUS: " + string(priority),
		"",
		"1. ARCHITECTURAL RESOLUTION: System integrity verified.",
		"2. ENGINEERING SPEC: Local-first implementation approved.",
		"3. CRITIC CLEARANCE: No vendor leakage detected.",
		"4. RESEARCH CONTEXT: Alignment with Cold Steel doctrine.",
	}, "\n")
}
