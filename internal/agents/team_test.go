package agents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/rcliao/coldsteel/internal/model"
	"github.com/rcliao/coldsteel/internal/provider"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreTopFunction("github.com/golang/glog.(*fileSink).flushDaemon"))
}

// scriptedSender answers by agent directive. Roles listed in fail return an
// error; roles listed in gate block until their channel is closed.
type scriptedSender struct {
	mu    sync.Mutex
	calls []provider.Request
	fail  map[model.AgentRole]bool
	crash map[model.AgentRole]bool
	gate  map[model.AgentRole]chan struct{}
}

func roleOf(instruction string) model.AgentRole {
	for role, text := range Instructions {
		if text == instruction {
			return role
		}
	}
	return ""
}

func (s *scriptedSender) Send(ctx context.Context, req provider.Request) (*provider.Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	role := roleOf(req.CustomSystemInstruction)
	if ch, ok := s.gate[role]; ok {
		<-ch
	}
	if s.crash[role] {
		panic(string(role) + " backend exploded")
	}
	if s.fail[role] {
		return nil, &provider.UplinkError{Err: errors.New("model overloaded")}
	}
	return &provider.Response{Text: string(role) + " says ok"}, nil
}

func onlineRequest() Request {
	return Request{
		Task:     "build a vault",
		Identity: model.DefaultIdentity(time.Unix(0, 0)),
		Config:   model.DefaultProviders()[0],
		Online:   true,
		Priority: model.PriorityHigh,
	}
}

func roles(outs []model.AgentOutput) []model.AgentRole {
	var r []model.AgentRole
	for _, o := range outs {
		r = append(r, o.Role)
	}
	return r
}

func TestOfflineTeam(t *testing.T) {
	sender := &scriptedSender{}
	r := NewRunner(sender)

	var seen []model.AgentOutput
	outs := r.Run(context.Background(), Request{Task: "audit logs", Priority: model.PriorityLow}, func(o model.AgentOutput) {
		seen = append(seen, o)
	})

	require.Len(t, outs, 4)
	assert.Equal(t, model.TeamRoles[:], roles(outs))
	assert.Equal(t, outs, seen)
	assert.Empty(t, sender.calls, "offline mode must not call the provider")
	assert.Contains(t, outs[0].Content, `Strategy for "audit logs" collated`)
	for _, o := range outs {
		assert.Equal(t, model.StatusComplete, o.Status)
		assert.Contains(t, o.Content, "Priority: LOW")
	}
}

func TestProperty_OfflineAlwaysComplete(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := rapid.String().Draw(rt, "task")
		p := rapid.SampledFrom(model.Priorities).Draw(rt, "priority")

		outs := NewRunner(nil).Run(context.Background(), Request{Task: task, Priority: p}, nil)
		if len(outs) != 4 {
			rt.Fatalf("got %d outputs", len(outs))
		}
		for i, o := range outs {
			if o.Role != model.TeamRoles[i] {
				rt.Fatalf("output %d role %s", i, o.Role)
			}
			if o.Status != model.StatusComplete {
				rt.Fatalf("output %d status %s", i, o.Status)
			}
		}
	})
}

func TestOnlineAllSucceed(t *testing.T) {
	sender := &scriptedSender{}
	outs := NewRunner(sender).Run(context.Background(), onlineRequest(), nil)

	require.Len(t, outs, 4)
	assert.Equal(t, model.TeamRoles[:], roles(outs))
	for _, o := range outs {
		assert.Equal(t, model.StatusComplete, o.Status)
		assert.Equal(t, string(o.Role)+" says ok", o.Content)
	}

	require.Len(t, sender.calls, 4)
	for _, c := range sender.calls {
		assert.Equal(t, "build a vault", c.Task)
		assert.Equal(t, model.PriorityHigh, c.Priority)
		assert.NotEmpty(t, c.CustomSystemInstruction)
	}
}

func TestOnlineOneFailure(t *testing.T) {
	sender := &scriptedSender{fail: map[model.AgentRole]bool{model.RoleCritic: true}}

	calls := 0
	outs := NewRunner(sender).Run(context.Background(), onlineRequest(), func(model.AgentOutput) { calls++ })

	assert.Equal(t, 4, calls)
	complete, failed := 0, 0
	for _, o := range outs {
		switch o.Status {
		case model.StatusComplete:
			complete++
		case model.StatusError:
			failed++
			assert.Equal(t, model.RoleCritic, o.Role)
			assert.True(t, strings.HasPrefix(o.Content, "Error: "))
			assert.Contains(t, o.Content, "model overloaded")
		}
	}
	assert.Equal(t, 3, complete)
	assert.Equal(t, 1, failed)
}

func TestOnlineEventsInSettlementOrder(t *testing.T) {
	gates := map[model.AgentRole]chan struct{}{}
	for _, role := range model.TeamRoles {
		gates[role] = make(chan struct{})
	}
	sender := &scriptedSender{gate: gates}
	s := NewRunner(sender).Start(context.Background(), onlineRequest())

	// Release in reverse declaration order and check each settles in turn.
	order := []model.AgentRole{model.RoleResearcher, model.RoleCritic, model.RoleEngineer, model.RoleArchitect}
	for _, role := range order {
		close(gates[role])
		select {
		case out := <-s.Events():
			assert.Equal(t, role, out.Role)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", role)
		}
	}

	_, open := <-s.Events()
	assert.False(t, open, "events must close after all four settle")
	assert.Equal(t, model.TeamRoles[:], roles(s.Wait()))
}

func TestOnlineCallsAreConcurrent(t *testing.T) {
	// Each call blocks until all four have started; a sequential runner deadlocks.
	var started sync.WaitGroup
	started.Add(4)
	sender := &barrierSender{started: &started}

	done := make(chan []model.AgentOutput)
	go func() { done <- NewRunner(sender).Run(context.Background(), onlineRequest(), nil) }()

	select {
	case outs := <-done:
		assert.Len(t, outs, 4)
	case <-time.After(5 * time.Second):
		t.Fatal("agent calls were not issued concurrently")
	}
}

type barrierSender struct {
	started *sync.WaitGroup
}

func (b *barrierSender) Send(ctx context.Context, req provider.Request) (*provider.Response, error) {
	b.started.Done()
	b.started.Wait()
	return &provider.Response{Text: "ok"}, nil
}

func TestWaitWithoutDraining(t *testing.T) {
	outs := NewRunner(&scriptedSender{}).Start(context.Background(), onlineRequest()).Wait()
	assert.Len(t, outs, 4)
}

func TestOnlinePanicIsolated(t *testing.T) {
	sender := &scriptedSender{crash: map[model.AgentRole]bool{model.RoleCritic: true}}

	events := 0
	outs := NewRunner(sender).Run(context.Background(), onlineRequest(), func(model.AgentOutput) { events++ })

	assert.Equal(t, 4, events)
	require.Len(t, outs, 4)
	for _, o := range outs {
		if o.Role == model.RoleCritic {
			assert.Equal(t, model.StatusError, o.Status)
			assert.Equal(t, "Error: Critic backend exploded", o.Content)
			continue
		}
		assert.Equal(t, model.StatusComplete, o.Status)
	}
}
