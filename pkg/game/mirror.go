package game

import (
	"github.com/vango-dev/duel/pkg/protocol"
)

// Mirror is a client's copy of the authoritative entities.
//
// It is only ever overwritten wholesale from State frames. Every fire flag
// seen while applying a frame becomes a pending Shot, so a shot survives
// even when a later frame in the same drain overwrites the flag. TakeShots
// hands each pending shot to the renderer exactly once.
type Mirror struct {
	entities [SlotCount]protocol.EntityState
	score    Scoreboard
	frames   uint64
	pending  []Shot

	// perspective is the slot the server puts first, or -1 for slot order.
	perspective int
}

// NewMirror creates a mirror expecting State frames in slot order.
func NewMirror() *Mirror {
	return &Mirror{perspective: -1}
}

// SetPerspective tells the mirror that the server writes slot s first.
// Pass -1 for plain slot order.
func (m *Mirror) SetPerspective(s Slot) {
	m.perspective = int(s)
}

// Apply decodes every complete State frame at the front of r, in arrival
// order, and returns how many were applied. A *protocol.ProtocolError is
// fatal to the connection.
func (m *Mirror) Apply(r *protocol.RecvBuffer) (int, error) {
	n := 0
	for {
		ok, err := protocol.DecodeState(r, m.entities[:])
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		protocol.RestoreSlotOrder(m.entities[:], m.perspective)
		m.collectShots()
		m.frames++
		n++
	}
}

// Entity returns the last received state of slot s.
func (m *Mirror) Entity(s Slot) protocol.EntityState {
	return m.entities[s]
}

// Frames returns the number of State frames applied so far.
func (m *Mirror) Frames() uint64 {
	return m.frames
}

// collectShots turns the fire flags of the frame just applied into pending
// shots, resolving hits against that frame's positions.
func (m *Mirror) collectShots() {
	n := len(m.pending)
	m.pending = FrameShots(m.pending, m.entities[:])
	for _, shot := range m.pending[n:] {
		m.score.Record(shot)
	}
}

// TakeShots returns the shots received since the previous call and clears
// every fire flag.
func (m *Mirror) TakeShots() []Shot {
	shots := m.pending
	m.pending = nil
	for s := range m.entities {
		m.entities[s].Fired = false
	}
	return shots
}

// Score returns the shots and hits observed by this client.
func (m *Mirror) Score() Scoreboard {
	return m.score
}
