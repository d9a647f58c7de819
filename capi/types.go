// Package capi is the flat, C-shaped surface of the engine: integer
// handles instead of pointers, integer codes instead of Go enums, and
// result codes instead of errors. It is what a cgo export layer wraps.
package capi

import (
	"math"
	"time"

	"git.disy.net/goetz/pommel"
)

type Result = int32

const (
	Success      Result = 0
	InvalidInput Result = 1
)

const (
	WaveformSine             int32 = 0
	WaveformPulse            int32 = 1
	WaveformTriangle         int32 = 2
	WaveformSawtooth         int32 = 3
	WaveformInvertedSawtooth int32 = 4
	WaveformPCM              int32 = 5
	WaveformConstant         int32 = 6
)

const (
	CombinatorSum      int32 = 0
	CombinatorModulate int32 = 1
)

const (
	FormatU8  int32 = 0
	FormatI16 int32 = 1
	FormatI32 int32 = 2
	FormatF32 int32 = 3
	FormatF64 int32 = 4
)

// Duration is a (seconds, nanoseconds) pair. Nanoseconds past one second
// carry into Seconds.
type Duration struct {
	Seconds     uint64
	Nanoseconds uint32
}

// ToDuration saturates at the largest time.Duration.
func (d Duration) ToDuration() time.Duration {
	const maxSecs = uint64(math.MaxInt64 / int64(time.Second))
	secs := d.Seconds + uint64(d.Nanoseconds)/uint64(time.Second)
	nanos := uint64(d.Nanoseconds) % uint64(time.Second)
	if secs < d.Seconds || secs > maxSecs {
		return time.Duration(math.MaxInt64)
	}
	total := time.Duration(secs)*time.Second + time.Duration(nanos)
	if total < 0 {
		return time.Duration(math.MaxInt64)
	}
	return total
}

// FromDuration clamps negative durations to zero.
func FromDuration(d time.Duration) Duration {
	if d < 0 {
		return Duration{}
	}
	return Duration{
		Seconds:     uint64(d / time.Second),
		Nanoseconds: uint32(d % time.Second),
	}
}

// WaveformSettings mirrors the C union: Data holds the float64 bits of a
// duty cycle or constant, or a sample id, depending on Type.
type WaveformSettings struct {
	Type int32
	Data uint64
}

func PulseWaveform(dutyCycle float64) WaveformSettings {
	return WaveformSettings{Type: WaveformPulse, Data: math.Float64bits(dutyCycle)}
}

func ConstantWaveform(v float64) WaveformSettings {
	return WaveformSettings{Type: WaveformConstant, Data: math.Float64bits(v)}
}

func PCMWaveform(id uint64) WaveformSettings {
	return WaveformSettings{Type: WaveformPCM, Data: id}
}

func (w WaveformSettings) toWaveform() (pommel.Waveform, bool) {
	switch w.Type {
	case WaveformSine:
		return pommel.Sine{}, true
	case WaveformPulse:
		return pommel.Pulse{DutyCycle: math.Float64frombits(w.Data)}, true
	case WaveformTriangle:
		return pommel.Triangle{}, true
	case WaveformSawtooth:
		return pommel.Sawtooth{}, true
	case WaveformInvertedSawtooth:
		return pommel.InvertedSawtooth{}, true
	case WaveformPCM:
		return pommel.PCM{ID: w.Data}, true
	case WaveformConstant:
		return pommel.Constant{Value: math.Float64frombits(w.Data)}, true
	}
	return nil, false
}

type Envelope struct {
	AttackTime  Duration
	HalvingRate float64
	ReleaseTime Duration
}

type Modifiers struct {
	FrequencyMultiplier float64
	VolumeMultiplier    float64
	ConstantPhaseOffset float64
}

type OperatorSettings struct {
	Waveform  WaveformSettings
	Envelope  Envelope
	Modifiers Modifiers
}

func (s OperatorSettings) toSettings() (pommel.OperatorSettings, bool) {
	w, ok := s.Waveform.toWaveform()
	if !ok {
		return pommel.OperatorSettings{}, false
	}
	return pommel.OperatorSettings{
		Waveform: w,
		Envelope: pommel.EnvelopeSettings{
			Attack:      s.Envelope.AttackTime.ToDuration(),
			HalvingRate: s.Envelope.HalvingRate,
			Release:     s.Envelope.ReleaseTime.ToDuration(),
		},
		Modifiers: pommel.Modifiers{
			FrequencyMultiplier: s.Modifiers.FrequencyMultiplier,
			VolumeMultiplier:    s.Modifiers.VolumeMultiplier,
			PhaseOffset:         s.Modifiers.ConstantPhaseOffset,
		},
	}, true
}

type PCMSampleSettings struct {
	SamplesPerPeriod float64
	LoopPoint        Duration
	LoopDuration     Duration
}

func (s PCMSampleSettings) toSettings() pommel.SampleSettings {
	return pommel.SampleSettings{
		SamplesPerPeriod: s.SamplesPerPeriod,
		LoopPoint:        s.LoopPoint.ToDuration(),
		LoopDuration:     s.LoopDuration.ToDuration(),
	}
}

func sampleFormat(code int32) (pommel.SampleFormat, bool) {
	f := pommel.SampleFormat(code)
	return f, f.Size() != 0
}
