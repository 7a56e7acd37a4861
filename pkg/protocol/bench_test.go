package protocol

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func BenchmarkEncodeControls(b *testing.B) {
	e := NewEncoderWithCap(64)
	c := Controls{Left: Button{Downs: 2, Pressed: true}, Fire: Button{Downs: 1}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Reset()
		EncodeControls(e, &c)
	}
}

func BenchmarkDecodeControls(b *testing.B) {
	frame := []byte{0x01, 5, 0, 0, 0x81, 0, 0x02, 0, 0x80}
	r := NewRecvBuffer()
	var c Controls
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Append(frame)
		if _, err := DecodeControls(r, &c); err != nil {
			b.Fatal(err)
		}
		c.ResetDowns()
	}
}

func BenchmarkEncodeState(b *testing.B) {
	e := NewEncoderWithCap(64)
	entities := []EntityState{
		{Position: mgl32.Vec3{1, 0, 2}, Fired: true},
		{Position: mgl32.Vec3{-3, 0, 4}},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		e.Reset()
		if err := EncodeState(e, entities, -1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeState(b *testing.B) {
	e := NewEncoder()
	entities := make([]EntityState, 2)
	_ = EncodeState(e, entities, -1)
	frame := append([]byte(nil), e.Bytes()...)

	r := NewRecvBuffer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Append(frame)
		if _, err := DecodeState(r, entities); err != nil {
			b.Fatal(err)
		}
	}
}
