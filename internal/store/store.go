// Package store provides the memory store contract and its SQLite implementation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// Collection names one of the four keyed record sets.
type Collection string

const (
	Identities      Collection = "identities"
	ProviderConfigs Collection = "provider_configs"
	Logs            Collection = "logs"
	Artifacts       Collection = "artifacts"
)

// Collections lists every collection in schema order.
var Collections = []Collection{Identities, ProviderConfigs, Logs, Artifacts}

func (c Collection) valid() bool {
	for _, k := range Collections {
		if k == c {
			return true
		}
	}
	return false
}

var (
	// ErrUnavailable wraps every storage-engine failure on open or transaction.
	ErrUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned by Get when no record has the id.
	ErrNotFound = errors.New("record not found")
)

// Record is anything that can be put into a collection.
type Record interface {
	RecordID() string
	RecordTime() time.Time
}

// Store defines the generic collection contract.
type Store interface {
	// Put inserts or replaces the record with the same id.
	Put(ctx context.Context, c Collection, r Record) error

	// Get decodes the record with id into dst. Returns ErrNotFound if absent.
	Get(ctx context.Context, c Collection, id string, dst any) error

	// Delete removes the record with id. Deleting a missing id is not an error.
	Delete(ctx context.Context, c Collection, id string) error

	// ListAll returns every record body. Logs are ascending by timestamp,
	// artifacts descending, other collections in insertion order.
	ListAll(ctx context.Context, c Collection) ([]json.RawMessage, error)

	// Clear removes every record of a collection.
	Clear(ctx context.Context, c Collection) error

	// Close closes the store.
	Close() error
}

// NewID returns a time-ordered unique id for log messages.
func NewID() string {
	return ulid.Make().String()
}
