package model

import "time"

// AgentRole is one of the four fixed specialist lenses.
type AgentRole string

const (
	RoleArchitect  AgentRole = "Architect"
	RoleEngineer   AgentRole = "Engineer"
	RoleCritic     AgentRole = "Critic"
	RoleResearcher AgentRole = "Researcher"
)

// TeamRoles is the closed role set in declaration order.
var TeamRoles = [4]AgentRole{RoleArchitect, RoleEngineer, RoleCritic, RoleResearcher}

// Index returns the declaration position of r, or -1.
func (r AgentRole) Index() int {
	for i, q := range TeamRoles {
		if q == r {
			return i
		}
	}
	return -1
}

// AgentStatus is the lifecycle state of one specialist output.
type AgentStatus string

const (
	StatusPending  AgentStatus = "pending"
	StatusComplete AgentStatus = "complete"
	StatusError    AgentStatus = "error"
)

// AgentOutput is one specialist's result for one task.
type AgentOutput struct {
	Role    AgentRole   `json:"role"`
	Content string      `json:"content"`
	Status  AgentStatus `json:"status"`
}

// GroundingSource is a web citation returned by a grounded model call.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Artifact is the durable, synthesized product of one completed task.
type Artifact struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	AgentOutputs     []AgentOutput     `json:"agentOutputs"`
	Timestamp        time.Time         `json:"timestamp"`
	GroundingSources []GroundingSource `json:"groundingSources,omitempty"`
	Priority         PriorityLevel     `json:"priority,omitempty"`
	// Degraded is set when synthesis fell back to fixed text after a provider failure.
	Degraded bool `json:"degraded,omitempty"`
}

// RecordID implements store.Record.
func (a Artifact) RecordID() string { return a.ID }

// RecordTime implements store.Record.
func (a Artifact) RecordTime() time.Time { return a.Timestamp }

const titleLimit = 30

// TitleFromTask derives an artifact title: the first 30 characters of the
// task, followed by "..." when the task is longer.
func TitleFromTask(task string) string {
	r := []rune(task)
	if len(r) <= titleLimit {
		return task
	}
	return string(r[:titleLimit]) + "..."
}
