package protocol

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// EntityWireSize is the number of payload bytes per entity:
// a 12-byte position followed by a 1-byte fired flag.
const EntityWireSize = 13

// EntityState is the authoritative, render-facing state of one entity.
type EntityState struct {
	Position mgl32.Vec3
	// Fired is true for exactly the tick in which a shot was taken.
	Fired bool
}

// StatePayloadSize returns the payload size of a State frame for n entities.
func StatePayloadSize(n int) int {
	return EntityWireSize * n
}

// EncodeState appends a State frame carrying entities to e.
//
// Entities are written in slot order. If first is a valid index, that
// entity is written first and the others follow in slot order; this is a
// convenience for the receiving client and not a security boundary. Pass
// -1 to keep plain slot order.
func EncodeState(e *Encoder, entities []EntityState, first int) error {
	m := BeginFrame(e, MsgState)
	if first >= 0 && first < len(entities) {
		writeEntity(e, &entities[first])
	}
	for i := range entities {
		if i == first {
			continue
		}
		writeEntity(e, &entities[i])
	}
	return FinishFrame(e, m)
}

func writeEntity(e *Encoder, es *EntityState) {
	e.WriteVec3(es.Position)
	e.WriteBool(es.Fired)
}

// DecodeState tries to read one State frame from r into entities.
//
// It returns false with a nil error when no complete State frame is at the
// front of r. The payload must hold exactly len(entities) records: running
// out of bytes is a Truncated *ProtocolError and leftover bytes are a
// TrailingData *ProtocolError. On error neither r nor entities is modified.
// On success every entity is overwritten and the frame is consumed.
func DecodeState(r *RecvBuffer, entities []EntityState) (bool, error) {
	payload, status := PeekFrame(r, MsgState)
	if status != FrameComplete {
		return false, nil
	}

	decoded := make([]EntityState, len(entities))
	d := NewDecoder(payload)
	for i := range decoded {
		pos, err := d.ReadVec3()
		if err != nil {
			return false, newProtocolError(Truncated, MsgState, len(payload),
				fmt.Sprintf("ran out of bytes reading entity %d position", i))
		}
		fired, err := d.ReadBool()
		if err != nil {
			return false, newProtocolError(Truncated, MsgState, len(payload),
				fmt.Sprintf("ran out of bytes reading entity %d fired flag", i))
		}
		decoded[i] = EntityState{Position: pos, Fired: fired}
	}
	if !d.EOF() {
		return false, newProtocolError(TrailingData, MsgState, len(payload),
			fmt.Sprintf("%d unread bytes", d.Remaining()))
	}

	copy(entities, decoded)
	r.Consume(FrameHeaderSize + len(payload))
	return true, nil
}

// RestoreSlotOrder undoes the perspective ordering of EncodeState in place:
// given entities as they appeared on the wire with first moved to the
// front, it puts them back in slot order. A negative first is a no-op.
func RestoreSlotOrder(entities []EntityState, first int) {
	if first <= 0 || first >= len(entities) {
		return
	}
	moved := entities[0]
	for i := 0; i < first; i++ {
		entities[i] = entities[i+1]
	}
	entities[first] = moved
}
