package provider

import "errors"

var errNoGenerator = errors.New("no generator configured")

// UplinkError wraps any failure from a remote model call.
type UplinkError struct {
	Err error
}

func (e *UplinkError) Error() string {
	msg := "Unknown provider error"
	if e.Err != nil && e.Err.Error() != "" {
		msg = e.Err.Error()
	}
	return "[UPLINK ERROR] " + msg
}

func (e *UplinkError) Unwrap() error { return e.Err }
