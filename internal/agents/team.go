// Package agents runs the fixed four-role specialist team over one task.
package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/provider"
)

// Instructions are the role-specific agent directives.
var Instructions = map[model.AgentRole]string{
	model.RoleArchitect:  "Act as the Lead Architect. Provide a high-level systemic strategy, focusing on structure, modularity, and trade-offs. No implementation code.",
	model.RoleEngineer:   "Act as the Principal Engineer. Provide concrete implementation patterns, structural specs, and optimization strategies for local/offline execution.",
	model.RoleCritic:     "Act as the Internal Critic. Challenge assumptions, identify risks, security holes, and potential amnesia vectors in the proposed task.",
	model.RoleResearcher: "Act as the Systems Researcher. Cross-reference patterns, mention industry standards, and identify relevant paradigms.",
}

// Request is one task for the team.
type Request struct {
	Task     string
	Identity model.Identity
	Config   model.ProviderConfig
	Online   bool
	Priority model.PriorityLevel
}

// Runner fans a task out to the four specialists.
type Runner struct {
	sender provider.Sender
	logger *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner that calls sender once per role when online.
func NewRunner(sender provider.Sender, opts ...Option) *Runner {
	r := &Runner{sender: sender, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stream delivers each agent output as it settles. Events is closed once all
// four have settled; Wait blocks until then and returns the outputs in role
// order.
type Stream struct {
	events  chan model.AgentOutput
	done    chan struct{}
	outputs [len(model.TeamRoles)]model.AgentOutput
}

func newStream() *Stream {
	s := &Stream{
		events: make(chan model.AgentOutput, len(model.TeamRoles)),
		done:   make(chan struct{}),
	}
	for i, role := range model.TeamRoles {
		s.outputs[i] = model.AgentOutput{Role: role, Status: model.StatusPending}
	}
	return s
}

// Events returns the settlement-ordered output channel.
func (s *Stream) Events() <-chan model.AgentOutput { return s.events }

// Wait returns all four outputs in role order after every agent settles.
func (s *Stream) Wait() []model.AgentOutput {
	<-s.done
	return append([]model.AgentOutput(nil), s.outputs[:]...)
}

func (s *Stream) settle(i int, out model.AgentOutput) {
	s.outputs[i] = out
	s.events <- out
}

func (s *Stream) finish() {
	close(s.events)
	close(s.done)
}

// Start launches the team and returns immediately. When online all four
// provider calls are issued concurrently; a failed call yields an error
// output and never cancels its siblings. There is no early abort: ctx is
// passed to each call but the stream always completes with four outputs.
func (r *Runner) Start(ctx context.Context, req Request) *Stream {
	s := newStream()
	if !req.Online {
		for i, out := range OfflineOutputs(req.Task, req.Priority) {
			s.settle(i, out)
		}
		s.finish()
		return s
	}

	var g errgroup.Group
	for i, role := range model.TeamRoles {
		g.Go(func() error {
			out := r.runAgent(ctx, role, req)
			r.logger.Debug("agent settled",
				zap.String("role", string(role)),
				zap.String("status", string(out.Status)))
			s.settle(i, out)
			return nil
		})
	}
	go func() {
		g.Wait()
		s.finish()
	}()
	return s
}

// Run starts the team, invokes onComplete for each output as it settles and
// returns the four outputs in role order.
func (r *Runner) Run(ctx context.Context, req Request, onComplete func(model.AgentOutput)) []model.AgentOutput {
	s := r.Start(ctx, req)
	for out := range s.Events() {
		if onComplete != nil {
			onComplete(out)
		}
	}
	return s.Wait()
}

// runAgent never panics; a panicking sender yields an error output like any
// other failed call.
func (r *Runner) runAgent(ctx context.Context, role model.AgentRole, req Request) (out model.AgentOutput) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("agent panicked", zap.String("role", string(role)), zap.Any("panic", p))
			out = model.AgentOutput{Role: role, Content: fmt.Sprintf("Error: %v", p), Status: model.StatusError}
		}
	}()
	resp, err := r.sender.Send(ctx, provider.Request{
		Task:                    req.Task,
		Identity:                req.Identity,
		Config:                  req.Config,
		Priority:                req.Priority,
		CustomSystemInstruction: Instructions[role],
	})
	if err != nil {
		return model.AgentOutput{Role: role, Content: "Error: " + err.Error(), Status: model.StatusError}
	}
	return model.AgentOutput{Role: role, Content: resp.Text, Status: model.StatusComplete}
}

// OfflineOutputs returns the deterministic stub outputs in role order.
func OfflineOutputs(task string, priority model.PriorityLevel) []model.AgentOutput {
	return []model.AgentOutput{
		{Role: model.RoleArchitect, Status: model.StatusComplete,
			Content: fmt.Sprintf("[OFFLINE] Strategy for \"%s\" collated. Systemic integrity assumed. Priority: %s", task, priority)},
		{Role: model.RoleEngineer, Status: model.StatusComplete,
			Content: fmt.Sprintf("[OFFLINE] Local specs for \"%s\" generated. Persistence active. Priority: %s", task, priority)},
		{Role: model.RoleCritic, Status: model.StatusComplete,
			Content: fmt.Sprintf("[OFFLINE] Critic stub. No risks detected in air-gapped environment. Priority: %s", priority)},
		{Role: model.RoleResearcher, Status: model.StatusComplete,
			Content: fmt.Sprintf("[OFFLINE] Researcher stub. Standard patterns applied. Priority: %s", priority)},
	}
}
