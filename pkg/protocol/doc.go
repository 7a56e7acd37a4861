// Package protocol implements the binary wire protocol between duel clients
// and the authoritative server.
//
// Clients send their input sample every frame; the server answers every
// tick with a snapshot of all entities. Both directions share one framing
// scheme over an ordered, reliable byte stream.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬───────────────────────────────────────────┐
//	│ Type        │ Payload Length                            │
//	│ (1 byte)    │ (3 bytes, little-endian)                  │
//	└─────────────┴───────────────────────────────────────────┘
//
// All integers are little-endian and all floats are IEEE-754 32-bit.
//
// # Message Types
//
//   - MsgControls (0x01): Client → Server, always 5 payload bytes, one per
//     button (left, right, up, down, fire). Bit 7 is the held state, bits
//     0-6 the number of press edges since the previous sample.
//   - MsgState ('s'): Server → Client, 13 bytes per entity in slot order:
//     a 12-byte position followed by a 1-byte fired flag.
//
// # Decoding
//
// Decoders never block. Each attempt looks at the front of a RecvBuffer and
// reports one of three outcomes:
//
//   - not enough bytes yet (false, nil): wait for the next poll
//   - a frame of another type is next (false, nil): try another decoder
//   - a complete frame was consumed (true, nil)
//
// Partial frames are never consumed. A complete but malformed frame is a
// *ProtocolError and the connection must be closed.
//
// Callers drain in a loop since one delivery may carry several frames:
//
//	for {
//	    ok, err := protocol.DecodeState(rb, entities)
//	    if err != nil {
//	        return err
//	    }
//	    if !ok {
//	        break
//	    }
//	}
package protocol
