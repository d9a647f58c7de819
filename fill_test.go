package pommel

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

func TestFillConstantI16(t *testing.T) {
	op := mustOperator(t, Constant{Value: 1}, DefaultModifiers())
	op.Play(440, 1, 0)
	out := make([]byte, 2*64)
	n, err := Fill(op, nil, 0, FrequencyToInterval(44100), 64, FormatI16, 0, out)
	if err != nil {
		t.Fatalf("can't fill: %v", err)
	}
	if n != len(out) {
		t.Fatalf("wrote %d bytes, want %d", n, len(out))
	}
	for i := 0; i < 64; i++ {
		if v := int16(binary.NativeEndian.Uint16(out[2*i:])); v != 32767 {
			t.Fatalf("element %d is %d", i, v)
		}
	}
}

func TestFillUnknownSampleIsSilent(t *testing.T) {
	op := mustOperator(t, PCM{ID: 1234}, DefaultModifiers())
	op.Play(440, 1, 0)
	out := make([]byte, 4*32)
	for i := range out {
		out[i] = 0xff
	}
	if _, err := Fill(op, NewBank(), 0, time.Millisecond, 32, FormatF32, 0, out); err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	for i := 0; i < 32; i++ {
		if v := math.Float32frombits(binary.NativeEndian.Uint32(out[4*i:])); v != 0 {
			t.Fatalf("element %d is %v", i, v)
		}
	}
}

func TestFillShortBufferWritesNothing(t *testing.T) {
	op := mustOperator(t, Constant{Value: 1}, DefaultModifiers())
	op.Play(1, 1, 0)
	out := make([]byte, 15)
	n, err := Fill(op, nil, 0, time.Millisecond, 2, FormatF64, 0, out)
	if !errors.Is(err, ErrInvalidInput) || n != 0 {
		t.Fatalf("got %d, %v", n, err)
	}
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d written", i)
		}
	}
	if _, err := Fill(op, nil, 0, time.Millisecond, 1, SampleFormat(-1), 0, make([]byte, 64)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unknown format: %v", err)
	}
}

func TestFillMatchesSample(t *testing.T) {
	a := mustOperator(t, Sine{}, DefaultModifiers())
	b := mustOperator(t, Triangle{}, Modifiers{FrequencyMultiplier: 2, VolumeMultiplier: 0.3})
	tree := NewModulate(b, a)
	tree.Play(261.6, 0.5, 0)

	start := 3 * time.Second
	interval := FrequencyToInterval(48000)
	out := make([]byte, 8*100)
	if _, err := Fill(tree, nil, start, interval, 100, FormatF64, 0.1, out); err != nil {
		t.Fatalf("can't fill: %v", err)
	}
	floats := make([]float64, 100)
	FillFloat64(tree, nil, start, interval, 0.1, floats)
	for k := 0; k < 100; k++ {
		want := Sample(tree, nil, start+time.Duration(k)*interval, 0.1)
		got := math.Float64frombits(binary.NativeEndian.Uint64(out[8*k:]))
		if got != want || floats[k] != want {
			t.Fatalf("sample %d: fill %v, floats %v, want %v", k, got, floats[k], want)
		}
	}
}

func TestPut(t *testing.T) {
	buf := make([]byte, 8)
	tests := []struct {
		format SampleFormat
		x      float64
		read   func([]byte) float64
		want   float64
	}{
		{FormatU8, 1, func(b []byte) float64 { return float64(b[0]) }, 255},
		{FormatU8, -1, func(b []byte) float64 { return float64(b[0]) }, 0},
		{FormatU8, 0, func(b []byte) float64 { return float64(b[0]) }, 128},
		{FormatI16, 2, func(b []byte) float64 { return float64(int16(binary.NativeEndian.Uint16(b))) }, 32767},
		{FormatI16, -1, func(b []byte) float64 { return float64(int16(binary.NativeEndian.Uint16(b))) }, -32767},
		{FormatI16, 0.5, func(b []byte) float64 { return float64(int16(binary.NativeEndian.Uint16(b))) }, 16384},
		{FormatI16, math.NaN(), func(b []byte) float64 { return float64(int16(binary.NativeEndian.Uint16(b))) }, 0},
		{FormatI32, -3, func(b []byte) float64 { return float64(int32(binary.NativeEndian.Uint32(b))) }, -2147483647},
		{FormatF32, 1.5, func(b []byte) float64 { return float64(math.Float32frombits(binary.NativeEndian.Uint32(b))) }, 1.5},
	}
	for _, tt := range tests {
		Put(buf, tt.format, tt.x)
		if got := tt.read(buf); got != tt.want {
			t.Errorf("%s(%v): got %v, want %v", tt.format, tt.x, got, tt.want)
		}
	}
}

func TestFrequencyToInterval(t *testing.T) {
	if got := FrequencyToInterval(1000); got != time.Millisecond {
		t.Fatalf("got %v", got)
	}
	if got := FrequencyToInterval(0); got != 0 {
		t.Fatalf("zero rate gave %v", got)
	}
}

func TestSampleNilRoot(t *testing.T) {
	if got := Sample(nil, nil, time.Second, 0); got != 0 {
		t.Fatalf("got %v", got)
	}
}
