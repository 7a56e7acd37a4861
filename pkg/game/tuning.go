package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Tick is the server update interval in seconds.
const Tick float32 = 1.0 / 30.0

// TickDuration is Tick as a time.Duration.
const TickDuration = time.Second / 30

// Movement speeds in world units per second.
const (
	GunSpeed     float32 = 2.5
	ChickenSpeed float32 = 13
)

// Shot resolution.
const (
	// HitRadiusSq is the squared XZ distance under which a shot hits.
	HitRadiusSq float32 = 0.5
)

// ShotOffset is where a shot lands relative to the shooter.
var ShotOffset = mgl32.Vec3{0, 0, -3}
