package protocol

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestProtocolErrorMessage(t *testing.T) {
	err := newProtocolError(BadLength, MsgControls, 6, "expected 5")
	msg := err.Error()
	for _, want := range []string{"Controls", "BadLength", "length 6", "expected 5"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestProtocolErrorIs(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
	}{
		{BadLength, ErrBadLength},
		{Truncated, ErrTruncated},
		{TrailingData, ErrTrailingData},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("poll: %w", newProtocolError(tc.kind, MsgState, 1, ""))
			if !errors.Is(err, tc.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tc.sentinel)
			}
			for _, other := range tests {
				if other.kind != tc.kind && errors.Is(err, other.sentinel) {
					t.Errorf("errors.Is(%v, %v) = true", err, other.sentinel)
				}
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(nil) {
		t.Error("IsFatal(nil) = true")
	}
	if IsFatal(errors.New("other")) {
		t.Error("IsFatal(other) = true")
	}
	if !IsFatal(fmt.Errorf("wrapped: %w", newProtocolError(Truncated, MsgState, 0, ""))) {
		t.Error("IsFatal(wrapped ProtocolError) = false")
	}
}

func TestErrorKindString(t *testing.T) {
	if got := ErrorKind(0).String(); got != "Unknown" {
		t.Errorf("ErrorKind(0).String() = %q, want Unknown", got)
	}
}
