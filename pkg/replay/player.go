package replay

import (
	"time"

	"github.com/vango-dev/duel/pkg/game"
	"github.com/vango-dev/duel/pkg/protocol"
)

// Frame is one decoded tick of a replay.
type Frame struct {
	Index    int
	Entities [game.SlotCount]protocol.EntityState
	Shots    []game.Shot
}

// Player steps through a replay one frame at a time.
type Player struct {
	buf   *protocol.RecvBuffer
	index int
	frame Frame
}

// NewPlayer creates a player over data. data is copied.
func NewPlayer(data []byte) *Player {
	buf := protocol.NewRecvBuffer()
	buf.Append(data)
	return &Player{buf: buf}
}

// Next decodes the next frame. It returns false at the end of the replay.
// A trailing partial frame is reported as protocol.ErrTruncated.
func (p *Player) Next() (*Frame, bool, error) {
	if p.buf.Len() == 0 {
		return nil, false, nil
	}

	ok, err := protocol.DecodeState(p.buf, p.frame.Entities[:])
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, leftover(p.buf)
	}

	p.frame.Index = p.index
	p.index++
	p.frame.Shots = game.FrameShots(p.frame.Shots[:0], p.frame.Entities[:])
	return &p.frame, true, nil
}

// Summary describes a whole replay.
type Summary struct {
	Frames   int
	Duration time.Duration
	Score    game.Scoreboard
	Final    [game.SlotCount]protocol.EntityState
}

// Summarize decodes every frame of data.
func Summarize(data []byte) (Summary, error) {
	var s Summary
	p := NewPlayer(data)
	for {
		f, ok, err := p.Next()
		if err != nil {
			return Summary{}, err
		}
		if !ok {
			break
		}
		s.Frames++
		for _, shot := range f.Shots {
			s.Score.Record(shot)
		}
		s.Final = f.Entities
	}
	s.Duration = time.Duration(s.Frames) * game.TickDuration
	return s, nil
}

// leftover describes bytes that did not decode as a State frame.
func leftover(buf *protocol.RecvBuffer) error {
	mt, length, ok := protocol.PeekFrameHeader(buf)
	if ok && mt != protocol.MsgState {
		return ErrBadFrame
	}
	return &protocol.ProtocolError{
		Kind:   protocol.Truncated,
		Type:   protocol.MsgState,
		Length: length,
		Detail: "replay ends inside a frame",
	}
}
