package pommel

import (
	"fmt"
	"time"
)

// Modifiers are static scalings applied on every sample of an operator.
type Modifiers struct {
	FrequencyMultiplier float64
	VolumeMultiplier    float64
	PhaseOffset         float64
}

func DefaultModifiers() Modifiers {
	return Modifiers{FrequencyMultiplier: 1, VolumeMultiplier: 1}
}

type OperatorSettings struct {
	Waveform  Waveform
	Envelope  EnvelopeSettings
	Modifiers Modifiers
}

func (s OperatorSettings) validate() error {
	if err := ValidateWaveform(s.Waveform); err != nil {
		return err
	}
	if err := s.Envelope.validate(); err != nil {
		return err
	}
	m := s.Modifiers
	if !finite(m.FrequencyMultiplier) || !finite(m.VolumeMultiplier) || !finite(m.PhaseOffset) {
		return fmt.Errorf("modifiers must be finite: %w", ErrInvalidInput)
	}
	return nil
}

// Operator is one waveform shaped by one envelope.
type Operator struct {
	waveform  Waveform
	modifiers Modifiers
	env       Envelope
}

func (o *Operator) Waveform() Waveform   { return o.waveform }
func (o *Operator) Modifiers() Modifiers { return o.modifiers }
func (o *Operator) Envelope() *Envelope  { return &o.env }

// sample computes one amplitude. A modulator's output arrives as offset,
// added to the phase instead of the frequency.
func (o *Operator) sample(bank *Bank, t time.Duration, offset float64) float64 {
	amp := o.env.Amplitude(t)
	if amp == 0 {
		return 0
	}
	freq := o.env.frequency * o.modifiers.FrequencyMultiplier
	var phase float64
	if noteRelative(o.waveform) {
		phase = cycles(t-o.env.noteOn, freq)
	} else {
		phase = phaseAt(t, freq)
	}
	phase += o.modifiers.PhaseOffset + offset
	v := Wave(o.waveform, phase, bank) * amp * o.modifiers.VolumeMultiplier * o.env.volume
	if !finite(v) {
		return 0
	}
	return v
}
