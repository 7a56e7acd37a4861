package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for server conditions.
var (
	// ErrInvalidTickRate is returned by ValidateConfig for a tick rate out of range.
	ErrInvalidTickRate = errors.New("server: invalid tick rate")

	// ErrAlreadyRunning is returned when Run is called while another Run is active.
	ErrAlreadyRunning = errors.New("server: already running")

	// ErrRecvOverflow is returned when a client sends bytes that are never consumed.
	ErrRecvOverflow = errors.New("server: too many unread bytes")

	// ErrNoSession is returned for events on a connection without a session.
	ErrNoSession = errors.New("server: no session")
)

// SessionError wraps an error with connection context.
type SessionError struct {
	ConnID uint64
	Op     string // Operation that failed
	Err    error  // Underlying error
}

// Error returns the error message with connection context.
func (e *SessionError) Error() string {
	return fmt.Sprintf("server: conn %d: %s: %v", e.ConnID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(connID uint64, op string, err error) *SessionError {
	return &SessionError{ConnID: connID, Op: op, Err: err}
}
