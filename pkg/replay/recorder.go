package replay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vango-dev/duel/pkg/protocol"
)

// Recorder accumulates State frames in memory.
type Recorder struct {
	mu       sync.Mutex
	buf      *protocol.Encoder
	frames   int
	first    uint64
	last     uint64
	maxBytes int
	started  time.Time
}

// NewRecorder creates a recorder that holds at most maxBytes of frames.
// Zero means no limit.
func NewRecorder(maxBytes int) *Recorder {
	return &Recorder{
		buf:      protocol.NewEncoderWithCap(64 * 1024),
		maxBytes: maxBytes,
		started:  time.Now(),
	}
}

// Record appends one complete State frame. Ticks must increase by one
// between calls; a gap is reported as ErrTickGap and the frame is dropped.
func (r *Recorder) Record(tick uint64, frame []byte) error {
	mt, length, ok := protocol.ParseFrameHeader(frame)
	if !ok || mt != protocol.MsgState || protocol.FrameHeaderSize+length != len(frame) {
		return fmt.Errorf("%w: tick %d", ErrBadFrame, tick)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frames > 0 && tick != r.last+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrTickGap, r.last, tick)
	}
	if r.maxBytes > 0 && r.buf.Len()+len(frame) > r.maxBytes {
		return ErrFull
	}
	if r.frames == 0 {
		r.first = tick
	}
	r.buf.WriteBytes(frame)
	r.last = tick
	r.frames++
	return nil
}

// Frames returns the number of recorded frames.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Ticks returns the first and last recorded tick.
func (r *Recorder) Ticks() (first, last uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.first, r.last
}

// Bytes returns a copy of the recorded frames.
func (r *Recorder) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// Name returns the default replay name, derived from the start time.
func (r *Recorder) Name() string {
	return NameFor(r.started)
}

// Save writes the recording to store under name. An empty name uses Name.
func (r *Recorder) Save(ctx context.Context, store Store, name string) (string, error) {
	if name == "" {
		name = r.Name()
	}
	data := r.Bytes()
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if err := store.Save(ctx, name, data); err != nil {
		return "", err
	}
	return name, nil
}

// Reset discards every recorded frame.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Reset()
	r.frames = 0
	r.first, r.last = 0, 0
	r.started = time.Now()
}

// NameFor returns the replay name for a match started at t.
func NameFor(t time.Time) string {
	return "duel-" + t.UTC().Format("20060102-150405") + Ext
}
