package pommel

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleFormat values are fixed, they cross the capi boundary.
type SampleFormat int

const (
	FormatU8 SampleFormat = iota
	FormatI16
	FormatI32
	FormatF32
	FormatF64
)

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatI16:
		return "i16"
	case FormatI32:
		return "i32"
	case FormatF32:
		return "f32"
	case FormatF64:
		return "f64"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// Size is the number of bytes per element, 0 for unknown formats.
func (f SampleFormat) Size() int {
	switch f {
	case FormatU8:
		return 1
	case FormatI16:
		return 2
	case FormatI32, FormatF32:
		return 4
	case FormatF64:
		return 8
	}
	return 0
}

// Decode turns raw native-endian elements of format into amplitudes.
// Integer elements are mapped linearly from their full range onto [-1, 1].
func Decode(raw []byte, format SampleFormat) ([]float64, error) {
	size := format.Size()
	if size == 0 {
		return nil, fmt.Errorf("unknown sample format %d: %w", int(format), ErrInvalidInput)
	}
	if len(raw)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of %s elements: %w", len(raw), format, ErrInvalidInput)
	}
	out := make([]float64, len(raw)/size)
	ne := binary.NativeEndian
	for i := range out {
		b := raw[i*size:]
		switch format {
		case FormatU8:
			out[i] = normalise(float64(b[0]), 0, math.MaxUint8)
		case FormatI16:
			out[i] = normalise(float64(int16(ne.Uint16(b))), math.MinInt16, math.MaxInt16)
		case FormatI32:
			out[i] = normalise(float64(int32(ne.Uint32(b))), math.MinInt32, math.MaxInt32)
		case FormatF32:
			out[i] = float64(math.Float32frombits(ne.Uint32(b)))
		case FormatF64:
			out[i] = math.Float64frombits(ne.Uint64(b))
		}
	}
	return out, nil
}

func normalise(x, min, max float64) float64 {
	return 2*(x-min)/(max-min) - 1
}

// Put writes x into dst as one element of format. Integer formats clamp
// to [-1, 1] first; float formats store x as is. dst must hold
// format.Size() bytes.
func Put(dst []byte, format SampleFormat, x float64) {
	ne := binary.NativeEndian
	switch format {
	case FormatU8:
		dst[0] = uint8(math.Round((clamp(x) + 1) * 127.5))
	case FormatI16:
		ne.PutUint16(dst, uint16(QuantizeI16(x)))
	case FormatI32:
		ne.PutUint32(dst, uint32(int32(math.Round(clamp(x)*math.MaxInt32))))
	case FormatF32:
		ne.PutUint32(dst, math.Float32bits(float32(x)))
	case FormatF64:
		ne.PutUint64(dst, math.Float64bits(x))
	}
}

// QuantizeI16 is the 16-bit value Put writes for x. NaN maps to 0.
func QuantizeI16(x float64) int16 {
	return int16(math.Round(clamp(x) * math.MaxInt16))
}

func clamp(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < -1:
		return -1
	case x > 1:
		return 1
	}
	return x
}
