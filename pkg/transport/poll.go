package transport

import (
	"log/slog"
	"time"
)

// Handler receives connection events inside Poll. Returning an error closes
// the connection; the handler then sees EventClose for it right away.
type Handler func(c *Conn, ev Event) error

// netEvent travels from the read goroutines to Poll.
type netEvent struct {
	conn *Conn
	kind Event
	data []byte
	err  error
}

// poller is the event queue shared by Listener and Client.
type poller struct {
	events chan netEvent
	done   chan struct{}
	logger *slog.Logger
}

func newPoller(size int, logger *slog.Logger) poller {
	return poller{
		events: make(chan netEvent, size),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// poll waits up to timeout for the first event, then handles every event
// already queued without waiting again. A zero timeout never waits.
// It returns the number of events delivered to fn.
func (p *poller) poll(fn Handler, timeout time.Duration) int {
	n := 0
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case ev := <-p.events:
			n += p.dispatch(ev, fn)
		case <-timer.C:
			return n
		case <-p.done:
			return n
		}
	}
	for {
		select {
		case ev := <-p.events:
			n += p.dispatch(ev, fn)
		default:
			return n
		}
	}
}

func (p *poller) dispatch(ev netEvent, fn Handler) int {
	c := ev.conn
	if c.reported {
		// Bytes or a close that arrived after we already gave up on c.
		return 0
	}

	switch ev.kind {
	case EventRecv:
		c.recv.Append(ev.data)
	case EventClose:
		c.reported = true
		_ = c.Close()
		if fn != nil {
			_ = fn(c, EventClose)
		}
		return 1
	}

	if fn == nil {
		return 1
	}
	if err := fn(c, ev.kind); err != nil {
		p.logger.Warn("closing connection", "conn", c.id, "event", ev.kind.String(), "error", err)
		c.reported = true
		_ = c.Close()
		_ = fn(c, EventClose)
	}
	return 1
}

func (p *poller) stop() {
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}
