package protocol

import (
	"errors"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the largest length the 24-bit header can carry.
	MaxPayloadSize = 1<<24 - 1
)

// MessageType identifies the kind of message carried by a frame.
type MessageType uint8

const (
	MsgControls MessageType = 0x01 // Client → Server input sample
	MsgState    MessageType = 's'  // Server → Client authoritative snapshot
)

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	switch mt {
	case MsgControls:
		return "Controls"
	case MsgState:
		return "State"
	default:
		return "Unknown"
	}
}

// FrameStatus is the outcome of a non-blocking frame decode attempt.
type FrameStatus uint8

const (
	// FrameIncomplete means more bytes are needed. Nothing was consumed.
	FrameIncomplete FrameStatus = iota

	// FrameWrongKind means the next frame is of another message type.
	// Nothing was consumed.
	FrameWrongKind

	// FrameComplete means one whole frame was consumed.
	FrameComplete
)

// String returns the string representation of the status.
func (fs FrameStatus) String() string {
	switch fs {
	case FrameIncomplete:
		return "Incomplete"
	case FrameWrongKind:
		return "WrongKind"
	case FrameComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge = errors.New("protocol: frame payload too large")
)

// Wire format (4 bytes header + variable payload):
//
//	┌─────────────┬───────────────────────────────────────────┐
//	│ Type        │ Payload Length                            │
//	│ (1 byte)    │ (3 bytes, little-endian, unsigned)        │
//	└─────────────┴───────────────────────────────────────────┘
//	│                                                         │
//	│  Payload (length bytes)                                 │
//	│                                                         │
//	└─────────────────────────────────────────────────────────┘

// AppendFrame appends a complete frame carrying payload to e.
func AppendFrame(e *Encoder, mt MessageType, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	e.WriteByte(byte(mt))
	e.WriteUint24(uint32(len(payload)))
	e.WriteBytes(payload)
	return nil
}

// FrameMark records where BeginFrame wrote a header.
type FrameMark struct {
	header int
}

// BeginFrame appends a header with a zero length placeholder. The payload is
// written directly into e and the length is patched by FinishFrame.
func BeginFrame(e *Encoder, mt MessageType) FrameMark {
	m := FrameMark{header: e.Len()}
	e.WriteByte(byte(mt))
	e.WriteUint24(0)
	return m
}

// FinishFrame patches the length of the frame started at m.
// If the payload is too large the partial frame is removed from e.
func FinishFrame(e *Encoder, m FrameMark) error {
	size := e.Len() - m.header - FrameHeaderSize
	if size > MaxPayloadSize {
		e.buf = e.buf[:m.header]
		return ErrFrameTooLarge
	}
	e.putUint24(m.header+1, uint32(size))
	return nil
}

// PeekFrameHeader reads the header of the next frame without consuming it.
// ok is false when fewer than FrameHeaderSize bytes are buffered.
func PeekFrameHeader(r *RecvBuffer) (mt MessageType, length int, ok bool) {
	return ParseFrameHeader(r.Bytes())
}

// ParseFrameHeader reads a frame header from the start of b.
func ParseFrameHeader(b []byte) (mt MessageType, length int, ok bool) {
	if len(b) < FrameHeaderSize {
		return 0, 0, false
	}
	length = int(b[1]) | int(b[2])<<8 | int(b[3])<<16
	return MessageType(b[0]), length, true
}

// PeekFrame looks for one complete frame of type want at the front of r
// without consuming it. Codecs use it to validate a payload before
// committing to Consume.
func PeekFrame(r *RecvBuffer, want MessageType) ([]byte, FrameStatus) {
	mt, length, ok := PeekFrameHeader(r)
	if !ok {
		return nil, FrameIncomplete
	}
	if mt != want {
		return nil, FrameWrongKind
	}
	b := r.Bytes()
	if len(b) < FrameHeaderSize+length {
		return nil, FrameIncomplete
	}
	end := FrameHeaderSize + length
	return b[FrameHeaderSize:end:end], FrameComplete
}

// DecodeFrame tries to take one frame of type want off the front of r.
//
// It never blocks and never consumes a partial frame: on FrameIncomplete and
// FrameWrongKind the buffer is left byte-for-byte unchanged. On FrameComplete
// exactly FrameHeaderSize+len(payload) bytes are consumed. The payload
// aliases r's storage and is valid until the next Append.
func DecodeFrame(r *RecvBuffer, want MessageType) ([]byte, FrameStatus) {
	payload, status := PeekFrame(r, want)
	if status == FrameComplete {
		r.Consume(FrameHeaderSize + len(payload))
	}
	return payload, status
}
