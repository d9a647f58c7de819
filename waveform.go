package pommel

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is wrapped by every construction-time validation failure.
var ErrInvalidInput = errors.New("invalid input")

// WaveformKind values are fixed, they cross the capi boundary.
type WaveformKind int

const (
	KindSine WaveformKind = iota
	KindPulse
	KindTriangle
	KindSawtooth
	KindInvertedSawtooth
	KindPCM
	KindConstant
	// Composite kinds wrap another waveform and have no capi code.
	KindThin
	KindChop
	KindAbs
)

func (k WaveformKind) String() string {
	switch k {
	case KindSine:
		return "sine"
	case KindPulse:
		return "pulse"
	case KindTriangle:
		return "triangle"
	case KindSawtooth:
		return "sawtooth"
	case KindInvertedSawtooth:
		return "invertedSawtooth"
	case KindPCM:
		return "pcm"
	case KindConstant:
		return "constant"
	case KindThin:
		return "thin"
	case KindChop:
		return "chop"
	case KindAbs:
		return "abs"
	}
	return fmt.Sprintf("WaveformKind(%d)", int(k))
}

// Waveform is the shape an operator produces. The payload lives on the
// concrete type, so a Pulse always carries a duty cycle and a PCM always
// carries a sample id.
type Waveform interface {
	Kind() WaveformKind
	waveform()
}

type Sine struct{}

type Pulse struct {
	// fraction of the period spent at +1, in [0, 1)
	DutyCycle float64
}

type Triangle struct{}

type Sawtooth struct{}

type InvertedSawtooth struct{}

// PCM plays sample data from a Bank.
type PCM struct {
	ID SampleID
}

// Constant ignores phase. Constant{0} as a modulator leaves the carrier untouched.
type Constant struct {
	Value float64
}

// Thin squeezes a whole cycle of Base into the first Active part of the
// period and is silent for the rest.
type Thin struct {
	Base   Waveform
	Active float64
}

// Chop plays Base unchanged up to Active and is silent after it.
type Chop struct {
	Base   Waveform
	Active float64
}

// Abs folds the negative half of Base up.
type Abs struct {
	Base Waveform
}

func (Sine) Kind() WaveformKind             { return KindSine }
func (Pulse) Kind() WaveformKind            { return KindPulse }
func (Triangle) Kind() WaveformKind         { return KindTriangle }
func (Sawtooth) Kind() WaveformKind         { return KindSawtooth }
func (InvertedSawtooth) Kind() WaveformKind { return KindInvertedSawtooth }
func (PCM) Kind() WaveformKind              { return KindPCM }
func (Constant) Kind() WaveformKind         { return KindConstant }
func (Thin) Kind() WaveformKind             { return KindThin }
func (Chop) Kind() WaveformKind             { return KindChop }
func (Abs) Kind() WaveformKind              { return KindAbs }

func (Sine) waveform()             {}
func (Pulse) waveform()            {}
func (Triangle) waveform()         {}
func (Sawtooth) waveform()         {}
func (InvertedSawtooth) waveform() {}
func (PCM) waveform()              {}
func (Constant) waveform()         {}
func (Thin) waveform()             {}
func (Chop) waveform()             {}
func (Abs) waveform()              {}

// ValidateWaveform rejects payloads no waveform can be built from.
func ValidateWaveform(w Waveform) error {
	switch w := w.(type) {
	case nil:
		return fmt.Errorf("missing waveform: %w", ErrInvalidInput)
	case Pulse:
		if !(w.DutyCycle >= 0 && w.DutyCycle < 1) {
			return fmt.Errorf("duty cycle %v outside [0, 1): %w", w.DutyCycle, ErrInvalidInput)
		}
	case Constant:
		if !finite(w.Value) {
			return fmt.Errorf("constant %v is not finite: %w", w.Value, ErrInvalidInput)
		}
	case Thin:
		if !(w.Active > 0) || math.IsInf(w.Active, 0) {
			return fmt.Errorf("thin active part %v must be finite and > 0: %w", w.Active, ErrInvalidInput)
		}
		return ValidateWaveform(w.Base)
	case Chop:
		if !finite(w.Active) {
			return fmt.Errorf("chop active part %v is not finite: %w", w.Active, ErrInvalidInput)
		}
		return ValidateWaveform(w.Base)
	case Abs:
		return ValidateWaveform(w.Base)
	}
	return nil
}

// noteRelative reports whether w reads PCM data, which is indexed by
// cycles since note-on instead of global time.
func noteRelative(w Waveform) bool {
	switch w := w.(type) {
	case PCM:
		return true
	case Thin:
		return noteRelative(w.Base)
	case Chop:
		return noteRelative(w.Base)
	case Abs:
		return noteRelative(w.Base)
	}
	return false
}

// Wave evaluates w at phase. Every kind except PCM and Abs only looks at
// phase modulo one; Abs passes phase through to its base. For PCM, phase is the unwrapped cycle count since the note
// started; a missing bank or sample gives silence.
func Wave(w Waveform, phase float64, bank *Bank) float64 {
	switch w := w.(type) {
	case Sine:
		return math.Sin(2 * math.Pi * wrap(phase))
	case Pulse:
		if wrap(phase) < w.DutyCycle {
			return 1
		}
		return -1
	case Triangle:
		p := wrap(phase)
		if p < 0.5 {
			return p*4 - 1
		}
		return 3 - p*4
	case Sawtooth:
		return wrap(phase)*2 - 1
	case InvertedSawtooth:
		return 1 - wrap(phase)*2
	case Constant:
		return w.Value
	case PCM:
		s, ok := bank.Lookup(w.ID)
		if !ok {
			return 0
		}
		return s.At(phase)
	case Thin:
		p := wrap(phase)
		if p > w.Active {
			return 0
		}
		return Wave(w.Base, p/w.Active, bank)
	case Chop:
		p := wrap(phase)
		if p > w.Active {
			return 0
		}
		return Wave(w.Base, p, bank)
	case Abs:
		return math.Abs(Wave(w.Base, phase, bank))
	}
	return 0
}

// wrap maps phase into [0, 1).
func wrap(phase float64) float64 {
	p := phase - math.Floor(phase)
	if p >= 1 {
		// rounding of tiny negative phases
		return 0
	}
	return p
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
