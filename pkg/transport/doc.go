// Package transport turns WebSocket connections into ordered byte streams
// with an append-only send buffer and a consumable receive buffer.
//
// WebSocket message boundaries carry no meaning: every message is appended
// to the receive buffer and framing is left to package protocol.
//
// Reads happen on per-connection goroutines, but the bytes are handed over
// a channel and only reach the receive buffer inside Poll, which runs on
// the caller's goroutine. Decoding therefore never races with the network.
//
//	l := transport.NewListener(nil)
//	http.Handle("/ws", l)
//	for {
//	    l.Poll(func(c *transport.Conn, ev transport.Event) error {
//	        // decode from c.Recv(), append replies to c.Send()
//	        return nil
//	    }, 10*time.Millisecond)
//	}
package transport
