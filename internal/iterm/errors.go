package iterm

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionClosed is returned by calls made on, or pending when,
	// the connection goes away.
	ErrConnectionClosed = errors.New("iterm: connection closed")

	// ErrNotRunning is returned when iTerm2 is needed but not running.
	ErrNotRunning = errors.New("iterm: iTerm2 is not running")

	// ErrProfileNotFound is returned when a profile GUID has no match.
	ErrProfileNotFound = errors.New("iterm: profile not found")
)

// APIError is a request rejected by iTerm2 with an error string instead
// of a response.
type APIError struct {
	Op     string
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("iterm: %s: %s", e.Op, e.Reason)
}

func unexpectedResponse(op string) error {
	return fmt.Errorf("iterm: %s: unexpected response type", op)
}
