package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rcliao/coldsteel/internal/agents"
	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/provider"
)

type fakeSender struct {
	got  []provider.Request
	resp *provider.Response
	err  error
}

func (f *fakeSender) Send(ctx context.Context, req provider.Request) (*provider.Response, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

var fixed = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCompiler(s provider.Sender) *Compiler {
	return New(s, WithClock(func() time.Time { return fixed }), WithIDs(func() string { return "art-1" }))
}

func teamOutputs() []model.AgentOutput {
	return []model.AgentOutput{
		{Role: model.RoleArchitect, Content: "layers", Status: model.StatusComplete},
		{Role: model.RoleEngineer, Content: "sqlite", Status: model.StatusComplete},
		{Role: model.RoleCritic, Content: "Error: [UPLINK ERROR] down", Status: model.StatusError},
		{Role: model.RoleResearcher, Content: "prior art", Status: model.StatusComplete},
	}
}

func onlineRequest() Request {
	return Request{
		Task:     "design the memory vault",
		Outputs:  teamOutputs(),
		Identity: model.DefaultIdentity(fixed),
		Config:   model.DefaultProviders()[0],
		Online:   true,
		Priority: model.PriorityCritical,
	}
}

func TestOfflineArtifact(t *testing.T) {
	sender := &fakeSender{}
	outs := agents.OfflineOutputs("ship it", model.PriorityNormal)

	a := newCompiler(sender).Compile(context.Background(), Request{Task: "ship it", Outputs: outs, Priority: model.PriorityNormal})

	assert.Empty(t, sender.got)
	assert.Equal(t, "art-1", a.ID)
	assert.Equal(t, "ship it", a.Title)
	assert.Equal(t, fixed, a.Timestamp)
	assert.Equal(t, model.PriorityNormal, a.Priority)
	assert.Equal(t, outs, a.AgentOutputs)
	assert.Nil(t, a.GroundingSources)
	assert.False(t, a.Degraded)

	lines := strings.Split(a.Content, "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "FINAL DIRECTIVE: SHIP IT", lines[0])
	assert.Equal(t, "PRIORITY STATUS: NORMAL", lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "4. RESEARCH CONTEXT: Alignment with Cold Steel doctrine.", lines[8])
}

func TestOnlineArtifact(t *testing.T) {
	src := []model.GroundingSource{{Title: "Go", URI: "https://go.dev"}}
	sender := &fakeSender{resp: &provider.Response{Text: "FINAL: keep it local", GroundingSources: src}}

	a := newCompiler(sender).Compile(context.Background(), onlineRequest())

	require.Len(t, sender.got, 1)
	call := sender.got[0]
	assert.Equal(t, Instruction, call.CustomSystemInstruction)
	assert.Equal(t, model.PriorityCritical, call.Priority)
	assert.Contains(t, call.Task, "TASK: design the memory vault\nPRIORITY: CRITICAL\n\nAGENT INPUTS:\n[Architect]: layers\n\n[Engineer]: sqlite")
	assert.Contains(t, call.Task, "[Critic]: Error: [UPLINK ERROR] down")
	assert.Contains(t, call.Task, "aligned with the CRITICAL priority level.")

	assert.Equal(t, "FINAL: keep it local", a.Content)
	assert.Equal(t, src, a.GroundingSources)
	assert.Equal(t, model.PriorityCritical, a.Priority)
	assert.Len(t, a.AgentOutputs, 4)
	assert.False(t, a.Degraded)
}

func TestOnlineWithoutSourcesOmitsField(t *testing.T) {
	sender := &fakeSender{resp: &provider.Response{Text: "ok", GroundingSources: []model.GroundingSource{}}}
	a := newCompiler(sender).Compile(context.Background(), onlineRequest())
	assert.Nil(t, a.GroundingSources)
}

func TestProviderFailureDegrades(t *testing.T) {
	sender := &fakeSender{err: &provider.UplinkError{Err: errors.New("quota")}}

	a := newCompiler(sender).Compile(context.Background(), onlineRequest())

	assert.True(t, a.Degraded)
	assert.Equal(t, DegradedText, a.Content)
	assert.Nil(t, a.GroundingSources)
	assert.Len(t, a.AgentOutputs, 4)
	assert.Equal(t, "design the memory vault", a.Title)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	c := New(nil)
	a := c.Compile(context.Background(), Request{Task: "x"})
	b := c.Compile(context.Background(), Request{Task: "x"})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
}

func TestProperty_TitleTruncation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := rapid.String().Draw(rt, "task")
		a := newCompiler(nil).Compile(context.Background(), Request{Task: task})

		runes := []rune(task)
		if len(runes) <= 30 {
			if a.Title != task {
				rt.Fatalf("short task title changed: %q", a.Title)
			}
			return
		}
		if a.Title != string(runes[:30])+"..." {
			rt.Fatalf("title %q", a.Title)
		}
	})
}
