package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vango-dev/duel/pkg/protocol"
)

// Shot is one fire event observed in a tick.
type Shot struct {
	Slot   Slot
	Origin mgl32.Vec3
	Hit    bool
}

// Scoreboard counts shots and hits. It is a side effect of fire events and
// never feeds back into the protocol state.
type Scoreboard struct {
	Shots int
	Hits  int
}

// Record adds a shot to the counters.
func (sb *Scoreboard) Record(s Shot) {
	sb.Shots++
	if s.Hit {
		sb.Hits++
	}
}

// ShotOrigin returns where a shot fired from shooter lands.
func ShotOrigin(shooter mgl32.Vec3) mgl32.Vec3 {
	return shooter.Add(ShotOffset)
}

// ResolveShot reports whether a shot fired from shooter hits target.
// Only the ground plane (X and Z) is considered.
func ResolveShot(shooter, target mgl32.Vec3) bool {
	origin := ShotOrigin(shooter)
	dx := origin.X() - target.X()
	dz := origin.Z() - target.Z()
	return dx*dx+dz*dz < HitRadiusSq
}

// ShotFrom resolves a shot fired by slot s against every unarmed slot in
// entities, which must be in slot order.
func ShotFrom(entities []protocol.EntityState, s Slot) Shot {
	shooter := entities[s].Position
	shot := Shot{Slot: s, Origin: ShotOrigin(shooter)}
	for t := Slot(0); t < SlotCount; t++ {
		if t == s || t.Kind().Armed {
			continue
		}
		if ResolveShot(shooter, entities[t].Position) {
			shot.Hit = true
		}
	}
	return shot
}

// FrameShots appends one Shot to dst for every armed slot whose fire flag
// is set in entities. Fire flags on unarmed slots are ignored.
func FrameShots(dst []Shot, entities []protocol.EntityState) []Shot {
	for s := Slot(0); s < SlotCount; s++ {
		if entities[s].Fired && s.Kind().Armed {
			dst = append(dst, ShotFrom(entities, s))
		}
	}
	return dst
}
