package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func controlsFrame(payload ...byte) []byte {
	e := NewEncoder()
	_ = AppendFrame(e, MsgControls, payload)
	return e.Bytes()
}

func TestEncodeControlsWire(t *testing.T) {
	c := Controls{
		Left:  Button{Downs: 2, Pressed: true},
		Right: Button{Downs: 0, Pressed: false},
		Up:    Button{Downs: 127, Pressed: false},
		Down:  Button{Downs: 0, Pressed: true},
		Fire:  Button{Downs: 1, Pressed: true},
	}

	e := NewEncoder()
	EncodeControls(e, &c)

	want := []byte{0x01, 5, 0, 0, 0x82, 0x00, 0x7f, 0x80, 0x81}
	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("EncodeControls() = %v, want %v", e.Bytes(), want)
	}
}

func TestEncodeControlsMasksHighDowns(t *testing.T) {
	c := Controls{Left: Button{Downs: 200, Pressed: true}}

	e := NewEncoder()
	EncodeControls(e, &c)

	// 200 = 0xC8, masked to 0x48, plus the pressed bit.
	if got := e.Bytes()[FrameHeaderSize]; got != 0xC8 {
		t.Errorf("left byte = %#x, want 0xc8", got)
	}
}

func TestControlsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Controls
	}{
		{"zero", Controls{}},
		{"all_pressed", Controls{
			Left: Button{Pressed: true}, Right: Button{Pressed: true},
			Up: Button{Pressed: true}, Down: Button{Pressed: true}, Fire: Button{Pressed: true},
		}},
		{"mixed", Controls{
			Left:  Button{Downs: 3, Pressed: true},
			Up:    Button{Downs: 127},
			Fire:  Button{Downs: 1},
			Right: Button{Downs: 64, Pressed: true},
		}},
		{"masked", Controls{Down: Button{Downs: 255, Pressed: true}, Fire: Button{Downs: 128}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEncoder()
			EncodeControls(e, &tc.in)

			r := NewRecvBuffer()
			r.Append(e.Bytes())

			var out Controls
			ok, err := DecodeControls(r, &out)
			if err != nil || !ok {
				t.Fatalf("DecodeControls() = %v, %v; want true, nil", ok, err)
			}

			in := tc.in
			for id := ButtonID(0); id < ButtonCount; id++ {
				want := in.Button(id)
				got := out.Button(id)
				if got.Pressed != want.Pressed {
					t.Errorf("%s.Pressed = %v, want %v", id, got.Pressed, want.Pressed)
				}
				if got.Downs != want.Downs&0x7f {
					t.Errorf("%s.Downs = %d, want %d", id, got.Downs, want.Downs&0x7f)
				}
			}
			if r.Len() != 0 {
				t.Errorf("Len() = %d after decode, want 0", r.Len())
			}
		})
	}
}

func TestDecodeControlsAccumulates(t *testing.T) {
	r := NewRecvBuffer()
	r.Append(controlsFrame(3, 0, 0, 0, 0))
	r.Append(controlsFrame(5, 0, 0, 0, 0))

	var c Controls
	for i := 0; i < 2; i++ {
		if ok, err := DecodeControls(r, &c); !ok || err != nil {
			t.Fatalf("DecodeControls() #%d = %v, %v", i, ok, err)
		}
	}
	if c.Left.Downs != 8 {
		t.Errorf("Left.Downs = %d, want 8", c.Left.Downs)
	}
}

func TestDecodeControlsSaturates(t *testing.T) {
	r := NewRecvBuffer()
	// 200 on the wire is 0xC8: pressed bit plus 0x48 (72) edges.
	for i := 0; i < 40; i++ {
		r.Append(controlsFrame(200, 0, 0, 0, 0))
	}

	var c Controls
	n := 0
	for {
		ok, err := DecodeControls(r, &c)
		if err != nil {
			t.Fatalf("DecodeControls() error = %v", err)
		}
		if !ok {
			break
		}
		n++
	}
	if n != 40 {
		t.Fatalf("decoded %d frames, want 40", n)
	}
	if c.Left.Downs != 255 {
		t.Errorf("Left.Downs = %d, want 255", c.Left.Downs)
	}
	if !c.Left.Pressed {
		t.Error("Left.Pressed = false, want true")
	}
}

func TestDecodeControlsBadLength(t *testing.T) {
	r := NewRecvBuffer()
	frame := controlsFrame(0x81, 0x81, 0x81, 0x81, 0x81, 0x81)
	r.Append(frame)

	c := Controls{Up: Button{Downs: 4, Pressed: true}}
	before := c

	ok, err := DecodeControls(r, &c)
	if ok {
		t.Error("DecodeControls() ok = true, want false")
	}
	if !errors.Is(err, ErrBadLength) {
		t.Fatalf("DecodeControls() error = %v, want ErrBadLength", err)
	}
	var pe *ProtocolError
	if !errors.As(err, &pe) || pe.Length != 6 {
		t.Errorf("ProtocolError = %+v, want Length 6", pe)
	}
	if c != before {
		t.Errorf("Controls mutated: %+v, want %+v", c, before)
	}
	if !bytes.Equal(r.Bytes(), frame) {
		t.Errorf("buffer modified on error")
	}
}

func TestDecodeControlsNotReady(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"partial_header", []byte{0x01, 5}},
		{"partial_payload", []byte{0x01, 5, 0, 0, 0x80, 0x80}},
		{"state_frame", []byte{'s', 0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRecvBuffer()
			r.Append(tc.data)
			var c Controls
			ok, err := DecodeControls(r, &c)
			if ok || err != nil {
				t.Errorf("DecodeControls() = %v, %v; want false, nil", ok, err)
			}
			if !bytes.Equal(r.Bytes(), tc.data) {
				t.Errorf("buffer = %v, want %v", r.Bytes(), tc.data)
			}
			if c != (Controls{}) {
				t.Errorf("Controls mutated: %+v", c)
			}
		})
	}
}

func TestButtonPressRelease(t *testing.T) {
	var b Button
	b.Press()
	b.Press() // key repeat while held
	if b.Downs != 1 || !b.Pressed {
		t.Errorf("after press+repeat: %+v, want {Downs:1 Pressed:true}", b)
	}

	b.Release()
	b.Press()
	if b.Downs != 2 {
		t.Errorf("Downs = %d after second edge, want 2", b.Downs)
	}

	b = Button{Downs: 255}
	b.Press()
	if b.Downs != 255 {
		t.Errorf("Downs = %d, want saturation at 255", b.Downs)
	}
}

func TestControlsResetDowns(t *testing.T) {
	c := Controls{
		Left: Button{Downs: 1, Pressed: true},
		Fire: Button{Downs: 9},
	}
	c.ResetDowns()
	if c.Left.Downs != 0 || c.Fire.Downs != 0 {
		t.Errorf("downs not reset: %+v", c)
	}
	if !c.Left.Pressed {
		t.Error("ResetDowns must keep held state")
	}
}

func TestControlsButtonLookup(t *testing.T) {
	var c Controls
	for id := ButtonID(0); id < ButtonCount; id++ {
		if c.Button(id) == nil {
			t.Errorf("Button(%s) = nil", id)
		}
	}
	if c.Button(ButtonCount) != nil {
		t.Error("Button(ButtonCount) != nil")
	}
}
