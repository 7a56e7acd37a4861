package game

import "fmt"

// Slot is a fixed position in the entity ordering. Slot order is also the
// serialization order of State frames.
type Slot int

const (
	SlotGun Slot = iota
	SlotChicken

	SlotCount = 2
)

// String returns the slot's kind name.
func (s Slot) String() string {
	if s < 0 || s >= SlotCount {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotKinds[s].Name
}

// Kind returns the static description of the slot.
func (s Slot) Kind() SlotKind {
	return slotKinds[s]
}

// SlotKind describes what occupies a slot.
type SlotKind struct {
	Name string
	// Speed in world units per second.
	Speed float32
	// Armed slots turn a fire edge into a shot.
	Armed bool
}

var slotKinds = [SlotCount]SlotKind{
	SlotGun:     {Name: "gun", Speed: GunSpeed, Armed: true},
	SlotChicken: {Name: "chicken", Speed: ChickenSpeed, Armed: false},
}
