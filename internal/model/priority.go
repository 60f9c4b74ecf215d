package model

import (
	"fmt"
	"strings"
)

// PriorityLevel is the caller-selected rigor tier for one task.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "LOW"
	PriorityNormal   PriorityLevel = "NORMAL"
	PriorityHigh     PriorityLevel = "HIGH"
	PriorityCritical PriorityLevel = "CRITICAL"
)

// Priorities lists every level in ascending order.
var Priorities = []PriorityLevel{PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical}

// Rank returns the position of p in the total order, or -1 if unknown.
func (p PriorityLevel) Rank() int {
	for i, q := range Priorities {
		if q == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the four levels.
func (p PriorityLevel) Valid() bool { return p.Rank() >= 0 }

// ParsePriority accepts any casing of a level name.
func ParsePriority(s string) (PriorityLevel, error) {
	p := PriorityLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (use LOW, NORMAL, HIGH, CRITICAL)", s)
	}
	return p, nil
}
