package model

import "time"

// MessageRole is the author of a log message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one append-only turn in the conversational log.
type Message struct {
	ID              string        `json:"id"`
	Role            MessageRole   `json:"role"`
	Content         string        `json:"content"`
	Timestamp       time.Time     `json:"timestamp"`
	IsTranscription bool          `json:"isTranscription,omitempty"`
	Priority        PriorityLevel `json:"priority,omitempty"`
}

// RecordID implements store.Record.
func (m Message) RecordID() string { return m.ID }

// RecordTime implements store.Record.
func (m Message) RecordTime() time.Time { return m.Timestamp }
