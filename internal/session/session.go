// Package session drives one task at a time end to end and owns the
// operator-facing state: identity, provider configs, online flag, priority
// and the voice bridge.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/agents"
	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/provider"
	"github.com/rcliao/coldsteel/internal/store"
	"github.com/rcliao/coldsteel/internal/synthesis"
	"github.com/rcliao/coldsteel/internal/voice"
)

// Store is the persistence the session needs. *store.SQLiteStore implements it.
type Store interface {
	Bootstrap(ctx context.Context) (*store.BootstrapResult, error)
	SaveIdentity(ctx context.Context, id model.Identity) error
	SaveProvider(ctx context.Context, p model.ProviderConfig) error
	DeleteProvider(ctx context.Context, id string) error
	SaveMessage(ctx context.Context, m model.Message) error
	SaveArtifact(ctx context.Context, a model.Artifact) error
	SemanticRecall(ctx context.Context, query string) (string, error)
	PurgeLogs(ctx context.Context) error
	FactoryReset(ctx context.Context, identityID string) error
}

// Result is the outcome of one successful task.
type Result struct {
	Artifact     model.Artifact
	Confirmation model.Message
}

// Session is safe for concurrent use, but only one task runs at a time.
type Session struct {
	store  Store
	runner *agents.Runner
	synth  *synthesis.Compiler
	bridge voice.Bridge
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	fallbackKey  string
	onTranscript func(model.Message)

	mu         sync.Mutex
	identity   *model.Identity
	providers  []model.ProviderConfig
	activeID   string
	online     bool
	priority   model.PriorityLevel
	processing bool

	live      bool
	dictating bool
	voiceGen  uint64
	input     strings.Builder
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger. It is shared with the agent runner
// and synthesis compiler.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the message and artifact timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithMessageIDs overrides message id generation.
func WithMessageIDs(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// WithBridge attaches a live voice bridge.
func WithBridge(b voice.Bridge) Option {
	return func(s *Session) { s.bridge = b }
}

// WithFallbackKey sets the credential used by the voice bridge when the
// active provider has none.
func WithFallbackKey(key string) Option {
	return func(s *Session) { s.fallbackKey = key }
}

// WithOnline sets the initial online flag.
func WithOnline(online bool) Option {
	return func(s *Session) { s.online = online }
}

// WithPriority sets the initial task priority. Invalid values are ignored.
func WithPriority(p model.PriorityLevel) Option {
	return func(s *Session) {
		if p.Valid() {
			s.priority = p
		}
	}
}

// WithActiveProvider sets the initially selected provider id.
func WithActiveProvider(id string) Option {
	return func(s *Session) { s.activeID = id }
}

// WithTranscriptObserver is called after each voice transcript is persisted.
func WithTranscriptObserver(fn func(model.Message)) Option {
	return func(s *Session) { s.onTranscript = fn }
}

// New returns a session that sends provider calls through sender. Call Load
// before submitting tasks.
func New(st Store, sender provider.Sender, opts ...Option) *Session {
	s := &Session{
		store:    st,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    store.NewID,
		activeID: model.DefaultProviderID,
		online:   true,
		priority: model.PriorityNormal,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = agents.NewRunner(sender, agents.WithLogger(s.logger))
	s.synth = synthesis.New(sender,
		synthesis.WithLogger(s.logger),
		synthesis.WithClock(s.now))
	return s
}

// Load bootstraps the store and adopts its identity and provider configs.
func (s *Session) Load(ctx context.Context) error {
	res, err := s.store.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ident := res.Identity.Clone()
	s.identity = &ident
	s.providers = make([]model.ProviderConfig, 0, len(res.Providers))
	for _, p := range res.Providers {
		s.providers = append(s.providers, p.Clone())
	}
	return nil
}

// Processing reports whether a task is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// Submit runs task through recall, the agent team and synthesis, persists
// the artifact and returns it. onAgent, if non-nil, receives each agent
// output as it settles. Failures after the user message is recorded are
// reported once as a system message and returned as *Failure.
func (s *Session) Submit(ctx context.Context, task string, onAgent func(model.AgentOutput)) (*Result, error) {
	if strings.TrimSpace(task) == "" {
		return nil, ErrEmptyTask
	}

	s.mu.Lock()
	switch {
	case s.processing:
		s.mu.Unlock()
		return nil, ErrBusy
	case s.identity == nil:
		s.mu.Unlock()
		return nil, ErrNoIdentity
	}
	cfg, ok := s.activeLocked()
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoProvider
	}
	s.processing = true
	ident := s.identity.Clone()
	online, priority := s.online, s.priority
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.processing = false
		s.mu.Unlock()
	}()

	userMsg := model.Message{
		ID:        s.newID(),
		Role:      model.RoleUser,
		Content:   task,
		Timestamp: s.now(),
		Priority:  priority,
	}
	if err := s.store.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	ident.LastActiveAt = s.now()
	if err := s.store.SaveIdentity(ctx, ident); err != nil {
		return nil, fmt.Errorf("persist identity: %w", err)
	}
	s.mu.Lock()
	kept := ident.Clone()
	s.identity = &kept
	s.mu.Unlock()

	start := s.now()
	res, err := s.orchestrate(ctx, task, ident, cfg, online, priority, onAgent)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	s.logger.Info("task vaulted",
		zap.String("artifact", res.Artifact.ID),
		zap.String("priority", string(priority)),
		zap.Bool("online", online),
		zap.Bool("degraded", res.Artifact.Degraded),
		zap.Duration("elapsed", s.now().Sub(start)))
	return res, nil
}

func (s *Session) orchestrate(ctx context.Context, task string, ident model.Identity, cfg model.ProviderConfig,
	online bool, priority model.PriorityLevel, onAgent func(model.AgentOutput)) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	memory, err := s.store.SemanticRecall(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("semantic recall: %w", err)
	}
	augmented := task + "\n\n[SEMANTIC CONTEXT]\n" + memory

	outputs := s.runner.Run(ctx, agents.Request{
		Task:     augmented,
		Identity: ident,
		Config:   cfg,
		Online:   online,
		Priority: priority,
	}, onAgent)

	artifact := s.synth.Compile(ctx, synthesis.Request{
		Task:     task,
		Outputs:  outputs,
		Identity: ident,
		Config:   cfg,
		Online:   online,
		Priority: priority,
	})
	if err := s.store.SaveArtifact(ctx, artifact); err != nil {
		return nil, fmt.Errorf("persist artifact: %w", err)
	}

	confirm := model.Message{
		ID:        s.newID(),
		Role:      model.RoleSystem,
		Content:   fmt.Sprintf("Synthesis Vaulted: %s (Priority: %s)", artifact.Title, priority),
		Timestamp: s.now(),
		Priority:  priority,
	}
	if err := s.store.SaveMessage(ctx, confirm); err != nil {
		return nil, fmt.Errorf("persist confirmation: %w", err)
	}
	return &Result{Artifact: artifact, Confirmation: confirm}, nil
}

// fail records err as a single system message. Saving the message is best
// effort since the store itself may be the cause.
func (s *Session) fail(ctx context.Context, err error) *Failure {
	msg := model.Message{
		ID:        s.newID(),
		Role:      model.RoleSystem,
		Content:   "UPLINK FAILURE: " + err.Error(),
		Timestamp: s.now(),
	}
	s.logger.Error("task failed", zap.Error(err))
	if serr := s.store.SaveMessage(ctx, msg); serr != nil {
		s.logger.Warn("failure message not persisted", zap.Error(serr))
	}
	return &Failure{Err: err, Message: msg}
}
