package protocol

// ControlsPayloadSize is the fixed payload size of a Controls frame.
const ControlsPayloadSize = 5

// Wire layout of one button byte.
const (
	buttonPressedBit = 0x80
	buttonDownsMask  = 0x7f
)

// Button is the state of one input button.
type Button struct {
	// Downs counts press edges since the last sample. Saturates at 255.
	Downs uint8
	// Pressed is the current held state.
	Pressed bool
}

// Press records a press edge. Calling Press on a button already held is a
// key repeat and only refreshes the held state.
func (b *Button) Press() {
	if b.Pressed {
		return
	}
	b.Pressed = true
	if b.Downs < 255 {
		b.Downs++
	}
}

// Release records the button going up.
func (b *Button) Release() {
	b.Pressed = false
}

// ButtonID names a button in wire order.
type ButtonID uint8

const (
	ButtonLeft ButtonID = iota
	ButtonRight
	ButtonUp
	ButtonDown
	ButtonFire

	ButtonCount = 5
)

// String returns the string representation of the button.
func (id ButtonID) String() string {
	switch id {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonFire:
		return "fire"
	default:
		return "unknown"
	}
}

// Controls is one player's most recent input sample.
type Controls struct {
	Left, Right, Up, Down Button
	Fire                  Button
}

// Button returns the button with the given id, or nil.
func (c *Controls) Button(id ButtonID) *Button {
	switch id {
	case ButtonLeft:
		return &c.Left
	case ButtonRight:
		return &c.Right
	case ButtonUp:
		return &c.Up
	case ButtonDown:
		return &c.Down
	case ButtonFire:
		return &c.Fire
	default:
		return nil
	}
}

// buttons returns the buttons in wire order.
func (c *Controls) buttons() [ButtonCount]*Button {
	return [ButtonCount]*Button{&c.Left, &c.Right, &c.Up, &c.Down, &c.Fire}
}

// ResetDowns zeroes every edge counter.
func (c *Controls) ResetDowns() {
	for _, b := range c.buttons() {
		b.Downs = 0
	}
}

// ReleaseAll clears every button.
func (c *Controls) ReleaseAll() {
	*c = Controls{}
}

// EncodeControls appends a Controls frame for c to e.
//
// Each button is one byte: bit 7 is the held state, bits 0-6 are the edge
// count. Counts of 128 or more do not fit; they are masked and a warning is
// logged.
func EncodeControls(e *Encoder, c *Controls) {
	e.WriteByte(byte(MsgControls))
	e.WriteUint24(ControlsPayloadSize)
	for i, b := range c.buttons() {
		if b.Downs&buttonPressedBit != 0 {
			log().Warn("button downs exceed wire range, masking",
				"button", ButtonID(i).String(), "downs", b.Downs)
		}
		var v byte
		if b.Pressed {
			v = buttonPressedBit
		}
		e.WriteByte(v | (b.Downs & buttonDownsMask))
	}
}

// DecodeControls tries to read one Controls frame from r into c.
//
// It returns false with a nil error when no complete Controls frame is at
// the front of r. A complete frame whose declared length is not
// ControlsPayloadSize is a *ProtocolError of kind BadLength; in that case
// neither r nor c is modified.
//
// Decoded edge counts are added to c's counters, clamped at 255, so samples
// that arrive between two ticks accumulate.
func DecodeControls(r *RecvBuffer, c *Controls) (bool, error) {
	payload, status := PeekFrame(r, MsgControls)
	if status != FrameComplete {
		return false, nil
	}
	if len(payload) != ControlsPayloadSize {
		return false, newProtocolError(BadLength, MsgControls, len(payload),
			"expected 5")
	}

	for i, b := range c.buttons() {
		v := payload[i]
		b.Pressed = v&buttonPressedBit != 0
		d := uint32(b.Downs) + uint32(v&buttonDownsMask)
		if d > 255 {
			log().Warn("button downs saturated",
				"button", ButtonID(i).String(), "downs", d)
			d = 255
		}
		b.Downs = uint8(d)
	}

	r.Consume(FrameHeaderSize + len(payload))
	return true, nil
}
