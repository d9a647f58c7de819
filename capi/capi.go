package capi

import (
	"git.disy.net/goetz/pommel"
)

// guard turns a panic into InvalidInput so nothing unwinds past the boundary.
func guard(r *Result) {
	if recover() != nil {
		*r = InvalidInput
	}
}

func CreateOperator(out *Synth, settings OperatorSettings) (r Result) {
	defer guard(&r)
	s, ok := settings.toSettings()
	if !ok {
		return InvalidInput
	}
	synth, err := pommel.NewOperator(s)
	if err != nil {
		return InvalidInput
	}
	return sendSynth(out, synth)
}

// CreateModulator feeds the signal of modulator into the phase of carrier.
// Both are copied; the caller keeps ownership of its handles.
func CreateModulator(out *Synth, modulator, carrier Synth) (r Result) {
	defer guard(&r)
	m, ok := lookupSynth(modulator)
	if !ok {
		return InvalidInput
	}
	c, ok := lookupSynth(carrier)
	if !ok {
		return InvalidInput
	}
	return sendSynth(out, pommel.NewModulate(m, c))
}

func CreateSummation(out *Synth, a, b Synth) (r Result) {
	defer guard(&r)
	sa, ok := lookupSynth(a)
	if !ok {
		return InvalidInput
	}
	sb, ok := lookupSynth(b)
	if !ok {
		return InvalidInput
	}
	return sendSynth(out, pommel.NewSum(sa, sb))
}

// CreateCombinator combines any number of synths with the algorithm kind.
func CreateCombinator(out *Synth, handles []Synth, kind int32) (r Result) {
	defer guard(&r)
	var k pommel.CombinatorKind
	switch kind {
	case CombinatorSum:
		k = pommel.CombineSum
	case CombinatorModulate:
		k = pommel.CombineModulate
	default:
		return InvalidInput
	}
	list := make([]*pommel.Synth, len(handles))
	for i, h := range handles {
		s, ok := lookupSynth(h)
		if !ok {
			return InvalidInput
		}
		list[i] = s
	}
	synth, err := pommel.Combine(k, list...)
	if err != nil {
		return InvalidInput
	}
	return sendSynth(out, synth)
}

func CloneSynth(out *Synth, source Synth) (r Result) {
	defer guard(&r)
	s, ok := lookupSynth(source)
	if !ok {
		return InvalidInput
	}
	return sendSynth(out, s.Clone())
}

func CreatePCMBank(out *Bank) Result {
	return sendBank(out, pommel.NewBank())
}

// ClonePCMBank copies source; the zero handle clones to an empty bank.
func ClonePCMBank(out *Bank, source Bank) (r Result) {
	defer guard(&r)
	b, ok := lookupBank(source)
	if !ok {
		return InvalidInput
	}
	return sendBank(out, b.Clone())
}

// AddPCM decodes length elements of format from data into bank under id.
// data must be exactly length elements long.
func AddPCM(bank Bank, data []byte, length uint64, format int32, id uint64, settings PCMSampleSettings) (r Result) {
	defer guard(&r)
	if bank == 0 {
		return InvalidInput
	}
	b, ok := lookupBank(bank)
	if !ok {
		return InvalidInput
	}
	f, ok := sampleFormat(format)
	if !ok {
		return InvalidInput
	}
	// length*size may overflow, so divide instead
	n, size := uint64(len(data)), uint64(f.Size())
	if n%size != 0 || n/size != length {
		return InvalidInput
	}
	if err := b.Add(id, data, f, settings.toSettings()); err != nil {
		return InvalidInput
	}
	return Success
}

// Play, Release and Cut act on every operator of synth at time at.
// Unknown handles are ignored.
func Play(synth Synth, frequency, volume float64, at Duration) {
	if s, ok := lookupSynth(synth); ok {
		s.Play(frequency, volume, at.ToDuration())
	}
}

func Release(synth Synth, at Duration) {
	if s, ok := lookupSynth(synth); ok {
		s.Release(at.ToDuration())
	}
}

func Cut(synth Synth, at Duration) {
	if s, ok := lookupSynth(synth); ok {
		s.Cut(at.ToDuration())
	}
}

// Sample evaluates synth once. Unknown handles are silent.
func Sample(synth Synth, bank Bank, globalTime Duration, inputPhaseOffset float64) (v float64) {
	defer func() {
		if recover() != nil {
			v = 0
		}
	}()
	s, ok := lookupSynth(synth)
	if !ok {
		return 0
	}
	b, ok := lookupBank(bank)
	if !ok {
		return 0
	}
	return pommel.Sample(s, b, globalTime.ToDuration(), inputPhaseOffset)
}

// Fill writes length samples of format into data. data must hold at least
// length elements; otherwise nothing is written.
func Fill(synth Synth, bank Bank, start, interval Duration, data []byte, length uint64, format int32, constantPhaseOffset float64) (r Result) {
	defer guard(&r)
	s, ok := lookupSynth(synth)
	if !ok {
		return InvalidInput
	}
	b, ok := lookupBank(bank)
	if !ok {
		return InvalidInput
	}
	f, ok := sampleFormat(format)
	if !ok || length > uint64(len(data)) {
		return InvalidInput
	}
	if _, err := pommel.Fill(s, b, start.ToDuration(), interval.ToDuration(), int(length), f, constantPhaseOffset, data); err != nil {
		return InvalidInput
	}
	return Success
}

func DestroySynth(synth Synth) {
	synths.take(uint64(synth))
}

func DestroyPCMBank(bank Bank) {
	banks.take(uint64(bank))
}

func FrequencyToInterval(frequency float64) Duration {
	return FromDuration(pommel.FrequencyToInterval(frequency))
}
