package pommel

import (
	"fmt"
	"math"
	"sort"
)

type SampleID = uint64

// SampleSettings place PCM data on the cycle axis of an operator.
type SampleSettings struct {
	// How many frames make up one period at the operator's frequency.
	SamplesPerPeriod float64
	// Once playback passes LoopPoint it repeats the window
	// [LoopPoint, LoopPoint+LoopDuration). A zero LoopDuration plays once.
	LoopPoint    Period
	LoopDuration Period
}

// NewSampleSettings converts loop times in seconds of the recording into
// periods, given the rate the data was recorded at.
func NewSampleSettings(samplesPerSecond, samplesPerPeriod, loopPointSecs, loopDurationSecs float64) SampleSettings {
	periodsPerSecond := samplesPerSecond / samplesPerPeriod
	return SampleSettings{
		SamplesPerPeriod: samplesPerPeriod,
		LoopPoint:        durationFromSeconds(loopPointSecs * periodsPerSecond),
		LoopDuration:     durationFromSeconds(loopDurationSecs * periodsPerSecond),
	}
}

func (s SampleSettings) validate() error {
	if !(s.SamplesPerPeriod >= 0) || math.IsInf(s.SamplesPerPeriod, 0) {
		return fmt.Errorf("samples per period %v must be finite and >= 0: %w", s.SamplesPerPeriod, ErrInvalidInput)
	}
	if s.LoopPoint < 0 || s.LoopDuration < 0 {
		return fmt.Errorf("negative loop window: %w", ErrInvalidInput)
	}
	return nil
}

// PCMSample is normalised PCM data with its loop window.
type PCMSample struct {
	SampleSettings
	Data []float64
}

// At returns the frame playing after the given number of cycles.
func (s *PCMSample) At(phase float64) float64 {
	if !(phase >= 0) {
		return 0
	}
	p := durationFromSeconds(phase)
	if s.LoopDuration > 0 && p >= s.LoopPoint {
		p = s.LoopPoint + (p-s.LoopPoint)%s.LoopDuration
	}
	i := math.Floor(p.Seconds() * s.SamplesPerPeriod)
	if i < 0 || i >= float64(len(s.Data)) {
		return 0
	}
	return s.Data[int(i)]
}

// Bank maps sample ids to PCM data. Lookups may run concurrently with
// each other but not with Add or Remove.
type Bank struct {
	samples map[SampleID]*PCMSample
}

func NewBank() *Bank {
	return &Bank{samples: make(map[SampleID]*PCMSample)}
}

// Add decodes raw, laid out in native byte order as format, and stores it
// under id, replacing any previous sample. On error the bank is unchanged.
func (b *Bank) Add(id SampleID, raw []byte, format SampleFormat, settings SampleSettings) error {
	data, err := Decode(raw, format)
	if err != nil {
		return fmt.Errorf("can't add sample %d: %w", id, err)
	}
	return b.AddFloats(id, data, settings)
}

// AddFloats stores already normalised data under id. The bank keeps data.
func (b *Bank) AddFloats(id SampleID, data []float64, settings SampleSettings) error {
	if err := settings.validate(); err != nil {
		return fmt.Errorf("can't add sample %d: %w", id, err)
	}
	if b.samples == nil {
		b.samples = make(map[SampleID]*PCMSample)
	}
	b.samples[id] = &PCMSample{SampleSettings: settings, Data: data}
	return nil
}

// Lookup is safe on a nil bank.
func (b *Bank) Lookup(id SampleID) (*PCMSample, bool) {
	if b == nil {
		return nil, false
	}
	s, ok := b.samples[id]
	return s, ok
}

func (b *Bank) Remove(id SampleID) {
	delete(b.samples, id)
}

func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.samples)
}

// IDs returns the stored ids in ascending order.
func (b *Bank) IDs() []SampleID {
	if b == nil {
		return nil
	}
	ids := make([]SampleID, 0, len(b.samples))
	for id := range b.samples {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *Bank) Clone() *Bank {
	c := NewBank()
	if b == nil {
		return c
	}
	for id, s := range b.samples {
		data := make([]float64, len(s.Data))
		copy(data, s.Data)
		c.samples[id] = &PCMSample{SampleSettings: s.SampleSettings, Data: data}
	}
	return c
}
