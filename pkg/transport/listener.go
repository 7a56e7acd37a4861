package transport

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Listener accepts WebSocket connections and delivers their events through
// Poll. It implements http.Handler.
type Listener struct {
	poller

	upgrader websocket.Upgrader
	opts     *Options
	nextID   atomic.Uint64

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// NewListener creates a listener. A nil opts uses DefaultOptions.
func NewListener(opts *Options) *Listener {
	opts = opts.withDefaults()
	return &Listener{
		poller: newPoller(opts.QueueSize, opts.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin:     opts.CheckOrigin,
		},
		opts:  opts,
		conns: make(map[*Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and queues an EventOpen.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := newConn(l.nextID.Add(1), ws, l.opts)
	l.mu.Lock()
	l.conns[c] = struct{}{}
	l.mu.Unlock()

	c.logger.Info("connection opened", "remote", c.RemoteAddr())

	select {
	case l.events <- netEvent{conn: c, kind: EventOpen}:
	case <-l.done:
		_ = c.Close()
		return
	}
	go c.readPump(l.events, l.done)
}

// Poll waits up to timeout for connection events and hands them to fn on
// the calling goroutine. See Handler.
func (l *Listener) Poll(fn Handler, timeout time.Duration) int {
	return l.poll(func(c *Conn, ev Event) error {
		if ev == EventClose {
			l.mu.Lock()
			delete(l.conns, c)
			l.mu.Unlock()
			c.logger.Info("connection closed")
		}
		if fn == nil {
			return nil
		}
		return fn(c, ev)
	}, timeout)
}

// NumConns returns the number of open connections.
func (l *Listener) NumConns() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}

// Close stops accepting events and closes every connection.
func (l *Listener) Close() error {
	l.stop()
	l.mu.Lock()
	conns := make([]*Conn, 0, len(l.conns))
	for c := range l.conns {
		conns = append(conns, c)
	}
	l.conns = make(map[*Conn]struct{})
	l.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	return nil
}
