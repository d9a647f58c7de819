package pommel

import (
	"errors"
	"math"
	"testing"
	"time"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestWavePeriodic(t *testing.T) {
	waves := []Waveform{
		Sine{}, Pulse{DutyCycle: 0.3}, Triangle{}, Sawtooth{}, InvertedSawtooth{}, Constant{Value: 0.25},
	}
	phases := []float64{0, 0.1, 0.2499, 0.5, 0.77, 3.35, -0.4, 1234.56}
	for _, w := range waves {
		for _, p := range phases {
			a := Wave(w, p, nil)
			b := Wave(w, p+1, nil)
			// pulse edges may flip on rounding, none of the phases sit on one
			if !near(a, b) {
				t.Errorf("%s: wave(%v)=%v, wave(%v)=%v", w.Kind(), p, a, p+1, b)
			}
		}
	}
}

func TestWaveShapes(t *testing.T) {
	tests := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{Sine{}, 0, 0},
		{Sine{}, 0.25, 1},
		{Sine{}, 0.75, -1},
		{Pulse{DutyCycle: 0.5}, 0.25, 1},
		{Pulse{DutyCycle: 0.5}, 0.75, -1},
		{Pulse{DutyCycle: 0}, 0.1, -1},
		{Triangle{}, 0, -1},
		{Triangle{}, 0.25, 0},
		{Triangle{}, 0.5, 1},
		{Triangle{}, 0.75, 0},
		{Sawtooth{}, 0, -1},
		{Sawtooth{}, 0.5, 0},
		{Sawtooth{}, 0.75, 0.5},
		{InvertedSawtooth{}, 0, 1},
		{InvertedSawtooth{}, 0.75, -0.5},
		{Constant{Value: 0.4}, 17.3, 0.4},
	}
	for _, tt := range tests {
		if got := Wave(tt.w, tt.phase, nil); !near(got, tt.want) {
			t.Errorf("%s at %v: got %v, want %v", tt.w.Kind(), tt.phase, got, tt.want)
		}
	}
}

func TestTriangleSymmetric(t *testing.T) {
	for _, d := range []float64{0.05, 0.2, 0.37, 0.49} {
		a := Wave(Triangle{}, 0.5-d, nil)
		b := Wave(Triangle{}, 0.5+d, nil)
		if !near(a, b) {
			t.Fatalf("triangle not symmetric at %v: %v != %v", d, a, b)
		}
	}
}

func TestWaveUnknownSampleIsSilent(t *testing.T) {
	if got := Wave(PCM{ID: 42}, 0.3, NewBank()); got != 0 {
		t.Fatalf("expected silence, got %v", got)
	}
	if got := Wave(PCM{ID: 42}, 0.3, nil); got != 0 {
		t.Fatalf("expected silence for nil bank, got %v", got)
	}
}

func TestValidateWaveform(t *testing.T) {
	bad := []Waveform{
		nil,
		Pulse{DutyCycle: 1},
		Pulse{DutyCycle: -0.1},
		Pulse{DutyCycle: math.NaN()},
		Constant{Value: math.Inf(1)},
	}
	for _, w := range bad {
		if err := ValidateWaveform(w); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%#v: expected ErrInvalidInput, got %v", w, err)
		}
	}
	good := []Waveform{Sine{}, Pulse{DutyCycle: 0}, Pulse{DutyCycle: 0.999}, PCM{ID: 7}, Constant{}}
	for _, w := range good {
		if err := ValidateWaveform(w); err != nil {
			t.Errorf("%#v: unexpected error %v", w, err)
		}
	}
}

func TestWaveformKindCodes(t *testing.T) {
	codes := map[WaveformKind]int{
		KindSine: 0, KindPulse: 1, KindTriangle: 2, KindSawtooth: 3,
		KindInvertedSawtooth: 4, KindPCM: 5, KindConstant: 6,
	}
	for k, want := range codes {
		if int(k) != want {
			t.Errorf("%s has code %d, want %d", k, int(k), want)
		}
	}
}

func TestCompositeWaveforms(t *testing.T) {
	tests := []struct {
		w     Waveform
		phase float64
		want  float64
	}{
		{Thin{Base: Sawtooth{}, Active: 0.5}, 0.1, -0.6},
		{Thin{Base: Sawtooth{}, Active: 0.5}, 0.25, 0},
		{Thin{Base: Sine{}, Active: 0.5}, 0.125, 1},
		{Thin{Base: Sine{}, Active: 0.5}, 0.75, 0},
		{Chop{Base: Sine{}, Active: 0.5}, 0.25, 1},
		{Chop{Base: Sine{}, Active: 0.5}, 1.75, 0},
		{Chop{Base: Constant{Value: 2}, Active: 0.5}, 0.5, 2},
		{Abs{Base: Sawtooth{}}, 0.1, 0.8},
		{Abs{Base: Sine{}}, 0.75, 1},
		{Abs{Base: Thin{Base: Triangle{}, Active: 0.5}}, 0.0, 1},
	}
	for _, tt := range tests {
		if got := Wave(tt.w, tt.phase, nil); !near(got, tt.want) {
			t.Errorf("%s at %v: got %v, want %v", tt.w.Kind(), tt.phase, got, tt.want)
		}
	}
}

func TestValidateCompositeWaveform(t *testing.T) {
	bad := []Waveform{
		Thin{Base: Sine{}, Active: 0},
		Thin{Base: Sine{}, Active: math.Inf(1)},
		Thin{Base: nil, Active: 0.5},
		Chop{Base: Sine{}, Active: math.NaN()},
		Abs{},
		Abs{Base: Pulse{DutyCycle: 1}},
	}
	for _, w := range bad {
		if err := ValidateWaveform(w); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%#v: expected ErrInvalidInput, got %v", w, err)
		}
	}
	good := []Waveform{Thin{Base: Sine{}, Active: 2}, Chop{Base: PCM{ID: 1}, Active: 0}, Abs{Base: Abs{Base: Sine{}}}}
	for _, w := range good {
		if err := ValidateWaveform(w); err != nil {
			t.Errorf("%#v: unexpected error %v", w, err)
		}
	}
}

func TestAbsPCMIsNoteRelative(t *testing.T) {
	b := NewBank()
	if err := b.AddFloats(1, []float64{-0.5, -0.5}, SampleSettings{SamplesPerPeriod: 2}); err != nil {
		t.Fatalf("can't add: %v", err)
	}
	op := mustOperator(t, Abs{Base: PCM{ID: 1}}, DefaultModifiers())
	op.Play(1, 1, 10*time.Second)
	if got := op.Sample(b, 10*time.Second, 0); !near(got, 0.5) {
		t.Fatalf("got %v, want 0.5", got)
	}
}
