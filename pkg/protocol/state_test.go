package protocol

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestStateRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		entities []EntityState
	}{
		{"zero", make([]EntityState, 2)},
		{"two", []EntityState{
			{Position: mgl32.Vec3{1.25, 0, -3.5}, Fired: true},
			{Position: mgl32.Vec3{-7, 2, 0.1}},
		}},
		{"extremes", []EntityState{
			{Position: mgl32.Vec3{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32}},
			{Position: mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(-1)), 0}, Fired: true},
		}},
		{"three", []EntityState{
			{Position: mgl32.Vec3{1, 2, 3}},
			{Position: mgl32.Vec3{4, 5, 6}, Fired: true},
			{Position: mgl32.Vec3{7, 8, 9}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEncoder()
			if err := EncodeState(e, tc.entities, -1); err != nil {
				t.Fatalf("EncodeState() error = %v", err)
			}
			if got, want := e.Len(), FrameHeaderSize+StatePayloadSize(len(tc.entities)); got != want {
				t.Errorf("encoded length = %d, want %d", got, want)
			}

			r := NewRecvBuffer()
			r.Append(e.Bytes())

			out := make([]EntityState, len(tc.entities))
			ok, err := DecodeState(r, out)
			if err != nil || !ok {
				t.Fatalf("DecodeState() = %v, %v; want true, nil", ok, err)
			}
			for i := range out {
				for k := 0; k < 3; k++ {
					got := math.Float32bits(out[i].Position[k])
					want := math.Float32bits(tc.entities[i].Position[k])
					if got != want {
						t.Errorf("entity %d component %d bits = %08x, want %08x", i, k, got, want)
					}
				}
				if out[i].Fired != tc.entities[i].Fired {
					t.Errorf("entity %d Fired = %v, want %v", i, out[i].Fired, tc.entities[i].Fired)
				}
			}
		})
	}
}

func TestEncodeStateWire(t *testing.T) {
	entities := []EntityState{
		{Position: mgl32.Vec3{1, 0, 0}, Fired: true},
		{Position: mgl32.Vec3{0, 0, 2}},
	}
	e := NewEncoder()
	if err := EncodeState(e, entities, -1); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		's', 26, 0, 0,
		0x00, 0x00, 0x80, 0x3f, 0, 0, 0, 0, 0, 0, 0, 0, 0x01,
		0, 0, 0, 0, 0, 0, 0, 0, 0x00, 0x00, 0x00, 0x40, 0x00,
	}
	if !bytes.Equal(e.Bytes(), want) {
		t.Errorf("EncodeState() = %v, want %v", e.Bytes(), want)
	}
}

func TestEncodeStatePerspective(t *testing.T) {
	entities := []EntityState{
		{Position: mgl32.Vec3{1, 1, 1}},
		{Position: mgl32.Vec3{2, 2, 2}, Fired: true},
		{Position: mgl32.Vec3{3, 3, 3}},
	}
	e := NewEncoder()
	if err := EncodeState(e, entities, 1); err != nil {
		t.Fatal(err)
	}

	r := NewRecvBuffer()
	r.Append(e.Bytes())
	out := make([]EntityState, 3)
	if ok, err := DecodeState(r, out); !ok || err != nil {
		t.Fatalf("DecodeState() = %v, %v", ok, err)
	}

	wantOrder := []float32{2, 1, 3}
	for i, w := range wantOrder {
		if out[i].Position[0] != w {
			t.Errorf("wire slot %d x = %v, want %v", i, out[i].Position[0], w)
		}
	}

	RestoreSlotOrder(out, 1)
	for i := range out {
		if out[i] != entities[i] {
			t.Errorf("RestoreSlotOrder slot %d = %+v, want %+v", i, out[i], entities[i])
		}
	}
}

func TestRestoreSlotOrderLastSlot(t *testing.T) {
	in := []EntityState{
		{Position: mgl32.Vec3{3}},
		{Position: mgl32.Vec3{1}},
		{Position: mgl32.Vec3{2}},
	}
	RestoreSlotOrder(in, 2)
	for i, want := range []float32{1, 2, 3} {
		if in[i].Position[0] != want {
			t.Errorf("slot %d x = %v, want %v", i, in[i].Position[0], want)
		}
	}
}

func TestDecodeStateTruncated(t *testing.T) {
	e := NewEncoder()
	_ = AppendFrame(e, MsgState, make([]byte, EntityWireSize+5))
	frame := append([]byte(nil), e.Bytes()...)

	r := NewRecvBuffer()
	r.Append(frame)
	out := []EntityState{{Fired: true}, {Fired: true}}

	ok, err := DecodeState(r, out)
	if ok {
		t.Error("DecodeState() ok = true, want false")
	}
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("DecodeState() error = %v, want ErrTruncated", err)
	}
	if !out[0].Fired || !out[1].Fired {
		t.Error("entities overwritten by a rejected frame")
	}
	if !bytes.Equal(r.Bytes(), frame) {
		t.Error("buffer modified on error")
	}
}

func TestDecodeStateTrailingData(t *testing.T) {
	e := NewEncoder()
	_ = AppendFrame(e, MsgState, make([]byte, StatePayloadSize(2)+1))

	r := NewRecvBuffer()
	r.Append(e.Bytes())
	out := make([]EntityState, 2)

	ok, err := DecodeState(r, out)
	if ok {
		t.Error("DecodeState() ok = true, want false")
	}
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("DecodeState() error = %v, want ErrTrailingData", err)
	}
	if !IsFatal(err) {
		t.Error("IsFatal() = false, want true")
	}
}

func TestDecodeStateMultiFrameDrain(t *testing.T) {
	e := NewEncoder()
	first := []EntityState{{Position: mgl32.Vec3{1, 0, 0}}, {Position: mgl32.Vec3{0, 0, 1}}}
	second := []EntityState{{Position: mgl32.Vec3{2, 0, 0}, Fired: true}, {Position: mgl32.Vec3{0, 0, 2}}}
	_ = EncodeState(e, first, -1)
	_ = EncodeState(e, second, -1)

	r := NewRecvBuffer()
	r.Append(e.Bytes())

	out := make([]EntityState, 2)
	var seen [][]EntityState
	for {
		ok, err := DecodeState(r, out)
		if err != nil {
			t.Fatalf("DecodeState() error = %v", err)
		}
		if !ok {
			break
		}
		seen = append(seen, append([]EntityState(nil), out...))
	}

	if len(seen) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(seen))
	}
	if seen[0][0] != first[0] || seen[1][0] != second[0] {
		t.Errorf("frames applied out of order: %+v", seen)
	}
	if out[0] != second[0] || out[1] != second[1] {
		t.Errorf("final state = %+v, want %+v", out, second)
	}
}

func TestDecodeStateSkipsControls(t *testing.T) {
	r := NewRecvBuffer()
	r.Append(controlsFrame(0, 0, 0, 0, 0))

	out := make([]EntityState, 2)
	ok, err := DecodeState(r, out)
	if ok || err != nil {
		t.Errorf("DecodeState() = %v, %v; want false, nil", ok, err)
	}
	if r.Len() != FrameHeaderSize+ControlsPayloadSize {
		t.Errorf("buffer consumed on wrong kind")
	}
}
