package protocol

// compactThreshold is the minimum number of consumed bytes before Append
// considers sliding the unread tail back to the start of the buffer.
const compactThreshold = 4096

// RecvBuffer is an append-only receive queue with a read offset.
//
// The transport appends arrived bytes; decoders look at the unread bytes
// with Bytes and drop a complete frame with Consume. Consume only moves the
// offset, so a drain loop over many frames does not copy or reallocate.
// Storage is reclaimed lazily on the next Append.
//
// A RecvBuffer has exactly one writer and one reader and is not safe for
// concurrent use.
type RecvBuffer struct {
	buf []byte
	off int
}

// NewRecvBuffer creates an empty receive buffer.
func NewRecvBuffer() *RecvBuffer {
	return &RecvBuffer{buf: make([]byte, 0, 1024)}
}

// Append adds arrived bytes to the end of the queue.
func (r *RecvBuffer) Append(p []byte) {
	if r.off > 0 && (r.off == len(r.buf) || (r.off >= compactThreshold && r.off >= len(r.buf)/2)) {
		n := copy(r.buf, r.buf[r.off:])
		r.buf = r.buf[:n]
		r.off = 0
	}
	r.buf = append(r.buf, p...)
}

// Bytes returns the unread bytes. The slice is valid until the next Append.
func (r *RecvBuffer) Bytes() []byte {
	return r.buf[r.off:]
}

// Len returns the number of unread bytes.
func (r *RecvBuffer) Len() int {
	return len(r.buf) - r.off
}

// Consume drops the first n unread bytes. It panics if n exceeds Len.
func (r *RecvBuffer) Consume(n int) {
	if n < 0 || n > r.Len() {
		panic("protocol: RecvBuffer.Consume out of range")
	}
	r.off += n
}

// Reset discards all buffered bytes.
func (r *RecvBuffer) Reset() {
	r.buf = r.buf[:0]
	r.off = 0
}
