package pommel

import (
	"fmt"
	"time"
)

// Sample evaluates root once at t. It advances no clock and changes no
// state; a nil root is silent.
func Sample(root *Synth, bank *Bank, t time.Duration, offset float64) float64 {
	if root == nil {
		return 0
	}
	return root.Sample(bank, t, offset)
}

// Fill writes count samples of root, taken every interval from start, into
// out as elements of format. It returns the number of bytes written. If
// out is too small nothing is written.
func Fill(root *Synth, bank *Bank, start, interval time.Duration, count int, format SampleFormat, offset float64, out []byte) (int, error) {
	size := format.Size()
	if size == 0 {
		return 0, fmt.Errorf("unknown sample format %d: %w", int(format), ErrInvalidInput)
	}
	if count < 0 {
		return 0, fmt.Errorf("negative sample count %d: %w", count, ErrInvalidInput)
	}
	if len(out)/size < count {
		return 0, fmt.Errorf("buffer of %d bytes can't hold %d %s samples: %w", len(out), count, format, ErrInvalidInput)
	}
	t := start
	for i := 0; i < count; i++ {
		Put(out[i*size:], format, Sample(root, bank, t, offset))
		t += interval
	}
	return count * size, nil
}

// FillFloat64 fills dst with unconverted samples.
func FillFloat64(root *Synth, bank *Bank, start, interval time.Duration, offset float64, dst []float64) {
	t := start
	for i := range dst {
		dst[i] = Sample(root, bank, t, offset)
		t += interval
	}
}
