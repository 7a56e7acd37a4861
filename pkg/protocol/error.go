package protocol

import (
	"errors"
	"fmt"
)

// ErrorKind identifies why a complete frame was rejected.
type ErrorKind uint8

const (
	BadLength    ErrorKind = iota + 1 // Declared payload length is not the fixed size
	Truncated                         // Payload ended before all fields were read
	TrailingData                      // Bytes left over after all fields were read
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case BadLength:
		return "BadLength"
	case Truncated:
		return "Truncated"
	case TrailingData:
		return "TrailingData"
	default:
		return "Unknown"
	}
}

// Sentinels matched by errors.Is against a *ProtocolError of the same kind.
var (
	ErrBadLength    = errors.New("protocol: bad payload length")
	ErrTruncated    = errors.New("protocol: truncated payload")
	ErrTrailingData = errors.New("protocol: trailing data in payload")
)

// ProtocolError reports a malformed frame from the peer.
// It is always fatal to the connection: there is no resynchronization
// inside a corrupted stream.
type ProtocolError struct {
	Kind   ErrorKind
	Type   MessageType
	Length int    // declared payload length
	Detail string // optional extra context
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol: %s message: %s (length %d)", e.Type, e.Kind, e.Length)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is the sentinel for e's kind.
func (e *ProtocolError) Is(target error) bool {
	switch target {
	case ErrBadLength:
		return e.Kind == BadLength
	case ErrTruncated:
		return e.Kind == Truncated
	case ErrTrailingData:
		return e.Kind == TrailingData
	}
	return false
}

// IsFatal returns true if err means the connection must be closed.
func IsFatal(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

func newProtocolError(kind ErrorKind, mt MessageType, length int, detail string) *ProtocolError {
	return &ProtocolError{
		Kind:   kind,
		Type:   mt,
		Length: length,
		Detail: detail,
	}
}
