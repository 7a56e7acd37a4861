package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the dialing side of a connection.
type Client struct {
	poller
	conn *Conn
}

// Dial connects to a WebSocket URL (ws:// or wss://). The first Poll
// delivers EventOpen. A nil opts uses DefaultOptions.
func Dial(ctx context.Context, url string, opts *Options) (*Client, error) {
	opts = opts.withDefaults()
	dialer := websocket.Dialer{
		ReadBufferSize:   opts.ReadBufferSize,
		WriteBufferSize:  opts.WriteBufferSize,
		HandshakeTimeout: 10 * time.Second,
		Proxy:            http.ProxyFromEnvironment,
	}

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", url, err)
	}

	cl := &Client{
		poller: newPoller(opts.QueueSize, opts.Logger),
		conn:   newConn(1, ws, opts),
	}
	cl.events <- netEvent{conn: cl.conn, kind: EventOpen}
	go cl.conn.readPump(cl.events, cl.done)
	return cl, nil
}

// Conn returns the connection.
func (cl *Client) Conn() *Conn {
	return cl.conn
}

// Poll waits up to timeout for events and hands them to fn on the calling
// goroutine. See Handler.
func (cl *Client) Poll(fn Handler, timeout time.Duration) int {
	return cl.poll(fn, timeout)
}

// Close closes the connection and stops the read goroutine.
func (cl *Client) Close() error {
	err := cl.conn.Close()
	cl.stop()
	return err
}
