package game

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vango-dev/duel/pkg/protocol"
)

// Errors returned by Game.
var (
	// ErrGameFull is returned by Spawn when every slot is taken.
	ErrGameFull = errors.New("game: all slots taken")

	// ErrNotInGame is returned by Remove for a player that holds no slot.
	ErrNotInGame = errors.New("game: player not in game")
)

// Player is one connected participant.
type Player struct {
	Slot Slot
	Name string

	// Controls accumulates decoded input until the next tick consumes it.
	Controls protocol.Controls
}

// Game is the authoritative state of one session.
//
// A Game is driven from a single goroutine: decoding into Player.Controls
// and Update must not run concurrently.
type Game struct {
	entities [SlotCount]protocol.EntityState
	players  [SlotCount]*Player

	score      Scoreboard
	tick       uint64
	lastShots  []Shot
	nextNumber int
}

// New creates a game with both entities at the origin and no players.
func New() *Game {
	return &Game{nextNumber: 1}
}

// Spawn places a new player in the first free slot, gun first.
// An empty name is replaced by "Player N".
func (g *Game) Spawn(name string) (*Player, error) {
	for s := Slot(0); s < SlotCount; s++ {
		if g.players[s] != nil {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("Player %d", g.nextNumber)
		}
		g.nextNumber++
		p := &Player{Slot: s, Name: name}
		g.players[s] = p
		return p, nil
	}
	return nil, ErrGameFull
}

// Remove frees p's slot. The entity stays where it was.
func (g *Game) Remove(p *Player) error {
	if p == nil || p.Slot < 0 || p.Slot >= SlotCount || g.players[p.Slot] != p {
		return ErrNotInGame
	}
	g.players[p.Slot] = nil
	p.Controls.ReleaseAll()
	return nil
}

// Player returns the player in slot s, or nil.
func (g *Game) Player(s Slot) *Player {
	if s < 0 || s >= SlotCount {
		return nil
	}
	return g.players[s]
}

// NumPlayers returns the number of occupied slots.
func (g *Game) NumPlayers() int {
	n := 0
	for _, p := range g.players {
		if p != nil {
			n++
		}
	}
	return n
}

// Entities returns the entity array in slot order. The slice aliases the
// game's storage.
func (g *Game) Entities() []protocol.EntityState {
	return g.entities[:]
}

// Entity returns a copy of the entity in slot s.
func (g *Game) Entity(s Slot) protocol.EntityState {
	return g.entities[s]
}

// SetPosition places the entity in slot s.
func (g *Game) SetPosition(s Slot, pos mgl32.Vec3) {
	g.entities[s].Position = pos
}

// Score returns the scoreboard.
func (g *Game) Score() Scoreboard {
	return g.score
}

// Tick returns the number of completed updates.
func (g *Game) Tick() uint64 {
	return g.tick
}

// LastShots returns the shots taken during the most recent Update.
// The slice is reused by the next Update.
func (g *Game) LastShots() []Shot {
	return g.lastShots
}

// Update advances the game by elapsed seconds.
//
// Fire flags from the previous tick are cleared first, so Fired is true for
// exactly the tick in which the fire edge was seen. Every player's edge
// counters are consumed and the fire latch released afterwards.
func (g *Game) Update(elapsed float32) {
	g.lastShots = g.lastShots[:0]
	for s := range g.entities {
		g.entities[s].Fired = false
	}

	for s := Slot(0); s < SlotCount; s++ {
		p := g.players[s]
		if p == nil {
			continue
		}
		kind := s.Kind()

		move := MoveIntent(&p.Controls)
		if move != (mgl32.Vec2{}) {
			move = move.Normalize().Mul(kind.Speed * elapsed)
		}
		g.entities[s].Position[0] += move.X()
		g.entities[s].Position[2] += move.Y()

		if kind.Armed && p.Controls.Fire.Downs > 0 {
			g.fire(s)
		}

		p.Controls.ResetDowns()
		p.Controls.Fire.Pressed = false
	}

	g.tick++
}

// fire marks slot s as having fired and resolves the shot against every
// unarmed slot.
func (g *Game) fire(s Slot) {
	g.entities[s].Fired = true
	shot := ShotFrom(g.entities[:], s)
	g.score.Record(shot)
	g.lastShots = append(g.lastShots, shot)
}

// MoveIntent combines the opposed direction pairs into a unit-axis vector.
// X is right minus left and Y is up minus down; a pair held together, or
// released together, cancels to zero.
func MoveIntent(c *protocol.Controls) mgl32.Vec2 {
	var move mgl32.Vec2
	if c.Left.Pressed && !c.Right.Pressed {
		move[0] = -1
	}
	if !c.Left.Pressed && c.Right.Pressed {
		move[0] = 1
	}
	if c.Down.Pressed && !c.Up.Pressed {
		move[1] = -1
	}
	if !c.Down.Pressed && c.Up.Pressed {
		move[1] = 1
	}
	return move
}
