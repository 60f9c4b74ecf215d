package session

import (
	"errors"
	"fmt"

	"github.com/rcliao/coldsteel/internal/model"
)

// Submission rejections. No state is changed when one is returned.
var (
	ErrEmptyTask  = errors.New("task is empty")
	ErrBusy       = errors.New("a task is already processing")
	ErrNoIdentity = errors.New("no identity loaded")
	ErrNoProvider = errors.New("no active provider")
)

var (
	// ErrUnknownProvider is returned when a provider id is not configured.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNoBridge is returned when voice is requested without a bridge.
	ErrNoBridge = errors.New("no voice bridge configured")
	// ErrNoCredential is returned when the live bridge has no api key to use.
	ErrNoCredential = errors.New("provider api key missing for live bridge")
)

// Failure is a task failure caught at the session boundary. Message is the
// system message that reported it.
type Failure struct {
	Err     error
	Message model.Message
}

func (f *Failure) Error() string { return fmt.Sprintf("task failed: %v", f.Err) }

func (f *Failure) Unwrap() error { return f.Err }
