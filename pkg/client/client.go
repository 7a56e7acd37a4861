// Package client is the player side of a duel connection.
//
// A Client captures local input as button edges, sends one Controls frame
// per Update and mirrors the entities from the server's State frames. It
// never simulates: the server is authoritative and the client only shows
// what it was told.
//
// Losing the connection is fatal. Update returns ErrConnectionLost from then
// on and there is no reconnect.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/duel/pkg/game"
	"github.com/vango-dev/duel/pkg/protocol"
	"github.com/vango-dev/duel/pkg/transport"
)

// ErrConnectionLost is returned once the server connection has closed.
var ErrConnectionLost = errors.New("client: connection lost")

// Options configures a Client.
type Options struct {
	// PollTimeout is how long Update waits for server data.
	// Default: 0 (never waits).
	PollTimeout time.Duration

	// Transport configures the underlying connection.
	Transport *transport.Options

	// Logger is the client logger.
	// Default: slog.Default() with component=client.
	Logger *slog.Logger
}

// Client is a connected player.
type Client struct {
	conn     *transport.Client
	controls protocol.Controls
	mirror   *game.Mirror
	opts     Options
	logger   *slog.Logger

	// err is sticky: once set, every Update returns it.
	err error

	updates uint64
	clock   float64
}

// Dial connects to a server's WebSocket endpoint, e.g. ws://host:8080/ws.
func Dial(ctx context.Context, url string, opts *Options) (*Client, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.Default().With("component", "client")
	}
	topts := o.Transport
	if topts == nil {
		topts = &transport.Options{Logger: o.Logger.With("layer", "transport")}
	}

	conn, err := transport.Dial(ctx, url, topts)
	if err != nil {
		return nil, err
	}
	o.Logger.Info("connected", "url", url)

	return &Client{
		conn:   conn,
		mirror: game.NewMirror(),
		opts:   o,
		logger: o.Logger,
	}, nil
}

// Press records a key-down for id. Repeats while held are not new presses.
func (c *Client) Press(id protocol.ButtonID) {
	if b := c.controls.Button(id); b != nil {
		b.Press()
	}
}

// Release records a key-up for id.
func (c *Client) Release(id protocol.ButtonID) {
	if b := c.controls.Button(id); b != nil {
		b.Release()
	}
}

// Controls returns the local input state that the next Update sends.
func (c *Client) Controls() *protocol.Controls {
	return &c.controls
}

// SetPerspective tells the client that the server sends slot s first.
func (c *Client) SetPerspective(s game.Slot) {
	c.mirror.SetPerspective(s)
}

// Update runs one client frame: send the current controls, reset the press
// counters, then apply every State frame that has arrived. elapsed is the
// frame time in seconds.
func (c *Client) Update(elapsed float32) error {
	if c.err != nil {
		return c.err
	}
	c.clock += float64(elapsed)
	c.updates++

	protocol.EncodeControls(c.conn.Conn().Send(), &c.controls)
	c.controls.ResetDowns()
	if err := c.conn.Conn().Flush(); err != nil {
		c.fail(fmt.Errorf("%w: %v", ErrConnectionLost, err))
		return c.err
	}

	c.conn.Poll(c.handle, c.opts.PollTimeout)
	return c.err
}

// Wait polls for up to timeout without sending anything and applies the
// State frames that arrive.
func (c *Client) Wait(timeout time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.conn.Poll(c.handle, timeout)
	return c.err
}

func (c *Client) handle(_ *transport.Conn, ev transport.Event) error {
	switch ev {
	case transport.EventOpen:
		c.logger.Debug("connection open")
	case transport.EventRecv:
		if _, err := c.mirror.Apply(c.conn.Conn().Recv()); err != nil {
			c.fail(fmt.Errorf("client: %w", err))
			return err
		}
	case transport.EventClose:
		c.fail(ErrConnectionLost)
	}
	return nil
}

func (c *Client) fail(err error) {
	if c.err != nil {
		return
	}
	c.err = err
	c.logger.Error("connection failed", "error", err)
}

// Err returns the fatal error, if any.
func (c *Client) Err() error {
	return c.err
}

// Entity returns the last received state of slot s.
func (c *Client) Entity(s game.Slot) protocol.EntityState {
	return c.mirror.Entity(s)
}

// TakeShots returns shots received since the previous call. Each shot is
// returned once.
func (c *Client) TakeShots() []game.Shot {
	return c.mirror.TakeShots()
}

// Score returns the shots and hits seen by this client.
func (c *Client) Score() game.Scoreboard {
	return c.mirror.Score()
}

// Frames returns the number of State frames applied.
func (c *Client) Frames() uint64 {
	return c.mirror.Frames()
}

// Updates returns the number of Update calls that sent controls.
func (c *Client) Updates() uint64 {
	return c.updates
}

// Clock returns the sum of elapsed times passed to Update.
func (c *Client) Clock() float64 {
	return c.clock
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
