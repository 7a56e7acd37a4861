package server

import (
	"log/slog"
	"time"

	"github.com/vango-dev/duel/pkg/game"
	"github.com/vango-dev/duel/pkg/metrics"
	"github.com/vango-dev/duel/pkg/protocol"
	"github.com/vango-dev/duel/pkg/transport"
)

// Session binds one connection to one player slot.
type Session struct {
	conn   *transport.Conn
	player *game.Player
	logger *slog.Logger

	openedAt time.Time

	// unread is the receive buffer length after the last drain.
	unread int

	framesIn  uint64
	framesOut uint64
}

func newSession(c *transport.Conn, p *game.Player, logger *slog.Logger) *Session {
	return &Session{
		conn:     c,
		player:   p,
		logger:   logger.With("conn", c.ID(), "slot", p.Slot.String()),
		openedAt: time.Now(),
	}
}

// ID returns the connection ID.
func (s *Session) ID() uint64 {
	return s.conn.ID()
}

// Slot returns the player's slot.
func (s *Session) Slot() game.Slot {
	return s.player.Slot
}

// Player returns the session's player.
func (s *Session) Player() *game.Player {
	return s.player
}

// FramesIn returns the number of Controls frames decoded.
func (s *Session) FramesIn() uint64 {
	return s.framesIn
}

// FramesOut returns the number of State frames sent.
func (s *Session) FramesOut() uint64 {
	return s.framesOut
}

// drain decodes every complete Controls frame in the receive buffer into
// the player's controls. A malformed frame stops the drain with the
// protocol error; the caller drops the connection.
func (s *Session) drain(m *metrics.Metrics, maxPending int) error {
	recv := s.conn.Recv()
	if n := recv.Len() - s.unread; n > 0 {
		m.RecordBytesReceived(n)
	}
	defer func() { s.unread = recv.Len() }()

	for {
		ok, err := protocol.DecodeControls(recv, &s.player.Controls)
		if err != nil {
			m.RecordProtocolError(err)
			return NewSessionError(s.ID(), "decode controls", err)
		}
		if !ok {
			break
		}
		s.framesIn++
		m.RecordFrame(protocol.MsgControls)
	}

	if maxPending > 0 && recv.Len() > maxPending {
		return NewSessionError(s.ID(), "receive", ErrRecvOverflow)
	}
	return nil
}

// sendState appends one State frame and flushes it.
func (s *Session) sendState(m *metrics.Metrics, entities []protocol.EntityState, perspective bool) error {
	first := -1
	if perspective {
		first = int(s.player.Slot)
	}
	send := s.conn.Send()
	if err := protocol.EncodeState(send, entities, first); err != nil {
		send.Reset()
		return NewSessionError(s.ID(), "encode state", err)
	}
	n := send.Len()
	if err := s.conn.Flush(); err != nil {
		return NewSessionError(s.ID(), "flush", err)
	}
	s.framesOut++
	m.RecordBytesSent(n)
	return nil
}
