package protocol

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Encoder is an append-only send buffer. Frames are written into it back to
// back and the transport drains it with Bytes/Reset.
//
// All fixed-width values are little-endian.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{
		buf: make([]byte, 0, 256),
	}
}

// NewEncoderWithCap creates a new encoder with the specified initial capacity.
func NewEncoderWithCap(cap int) *Encoder {
	return &Encoder{
		buf: make([]byte, 0, cap),
	}
}

// Reset resets the encoder to empty state, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteByte appends a single byte.
// Note: This intentionally doesn't return error (unlike io.ByteWriter)
// because our buffer is unbounded and can always append.
func (e *Encoder) WriteByte(b byte) {
	e.buf = append(e.buf, b)
}

// WriteBytes appends raw bytes.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteBool appends a boolean as a single byte (0x00 or 0x01).
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 0x01)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

// WriteUint24 appends the low 24 bits of v.
func (e *Encoder) WriteUint24(v uint32) {
	e.buf = append(e.buf, byte(v), byte(v>>8), byte(v>>16))
}

// WriteUint32 appends a uint32.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = append(e.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteFloat32 appends a float32 in IEEE 754 format.
func (e *Encoder) WriteFloat32(v float32) {
	e.WriteUint32(math.Float32bits(v))
}

// WriteVec3 appends three float32 components (12 bytes).
func (e *Encoder) WriteVec3(v mgl32.Vec3) {
	e.WriteFloat32(v[0])
	e.WriteFloat32(v[1])
	e.WriteFloat32(v[2])
}

// putUint24 overwrites three bytes at off. Used to patch frame lengths.
func (e *Encoder) putUint24(off int, v uint32) {
	e.buf[off] = byte(v)
	e.buf[off+1] = byte(v >> 8)
	e.buf[off+2] = byte(v >> 16)
}
