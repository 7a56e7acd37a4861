package transport

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/duel/pkg/protocol"
)

// Errors returned by Conn.
var (
	// ErrClosed is returned when writing to a closed connection.
	ErrClosed = errors.New("transport: connection closed")
)

// Event is a connection lifecycle event delivered by Poll.
type Event uint8

const (
	EventOpen  Event = iota // Connection established
	EventRecv               // New bytes appended to the receive buffer
	EventClose              // Connection gone; no more events follow
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventOpen:
		return "Open"
	case EventRecv:
		return "Recv"
	case EventClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Conn is one byte-stream connection.
//
// Send, Recv and Flush belong to the goroutine that calls Poll. Close may be
// called from anywhere.
type Conn struct {
	id   uint64
	ws   *websocket.Conn
	send *protocol.Encoder
	recv *protocol.RecvBuffer

	writeTimeout time.Duration
	logger       *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}

	// reported is set once EventClose was delivered to the poll callback.
	reported bool

	// Value is free for the owner of the connection, typically a session.
	Value any
}

func newConn(id uint64, ws *websocket.Conn, opts *Options) *Conn {
	ws.SetReadLimit(opts.MaxMessageSize)
	return &Conn{
		id:           id,
		ws:           ws,
		send:         protocol.NewEncoder(),
		recv:         protocol.NewRecvBuffer(),
		writeTimeout: opts.WriteTimeout,
		logger:       opts.Logger.With("conn", id),
		closed:       make(chan struct{}),
	}
}

// ID returns a process-unique connection number.
func (c *Conn) ID() uint64 {
	return c.id
}

// Send returns the append-only send buffer. Appended bytes go out on Flush.
func (c *Conn) Send() *protocol.Encoder {
	return c.send
}

// Recv returns the receive buffer.
func (c *Conn) Recv() *protocol.RecvBuffer {
	return c.recv
}

// Flush writes everything in the send buffer as one binary message and
// empties the buffer. It is a no-op when the buffer is empty.
func (c *Conn) Flush() error {
	if c.IsClosed() {
		return ErrClosed
	}
	if c.send.Len() == 0 {
		return nil
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	err := c.ws.WriteMessage(websocket.BinaryMessage, c.send.Bytes())
	c.send.Reset()
	return err
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

// IsClosed reports whether Close was called.
func (c *Conn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// readPump forwards incoming messages to events until the socket fails.
// It always ends by queueing an EventClose.
func (c *Conn) readPump(events chan<- netEvent, done <-chan struct{}) {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) && !c.IsClosed() {
				c.logger.Error("read error", "error", err)
			}
			select {
			case events <- netEvent{conn: c, kind: EventClose, err: err}:
			case <-done:
			}
			return
		}
		select {
		case events <- netEvent{conn: c, kind: EventRecv, data: msg}:
		case <-done:
			return
		}
	}
}
