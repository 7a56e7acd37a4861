package protocol

import (
	"bytes"
	"testing"
)

func TestRecvBufferConsume(t *testing.T) {
	r := NewRecvBuffer()
	r.Append([]byte{1, 2, 3, 4, 5})

	r.Consume(2)
	if got := r.Bytes(); !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Errorf("Bytes() = %v, want [3 4 5]", got)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}

	r.Append([]byte{6})
	if got := r.Bytes(); !bytes.Equal(got, []byte{3, 4, 5, 6}) {
		t.Errorf("Bytes() after Append = %v, want [3 4 5 6]", got)
	}
}

func TestRecvBufferCompaction(t *testing.T) {
	r := NewRecvBuffer()
	chunk := bytes.Repeat([]byte{0xAB}, compactThreshold)
	r.Append(chunk)
	r.Append([]byte{1, 2})
	r.Consume(compactThreshold)

	r.Append([]byte{3})
	if r.off != 0 {
		t.Errorf("off = %d after compaction, want 0", r.off)
	}
	if got := r.Bytes(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Bytes() = %v, want [1 2 3]", got)
	}
}

func TestRecvBufferFullyDrainedResets(t *testing.T) {
	var r RecvBuffer
	r.Append([]byte{1, 2, 3})
	r.Consume(3)
	r.Append([]byte{4})
	if r.off != 0 || len(r.buf) != 1 {
		t.Errorf("off=%d len=%d, want 0 and 1", r.off, len(r.buf))
	}
}

func TestRecvBufferConsumeOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Consume past Len() did not panic")
		}
	}()
	r := NewRecvBuffer()
	r.Append([]byte{1})
	r.Consume(2)
}

func TestRecvBufferReset(t *testing.T) {
	r := NewRecvBuffer()
	r.Append([]byte{1, 2})
	r.Consume(1)
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", r.Len())
	}
}
