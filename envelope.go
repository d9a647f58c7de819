package pommel

import (
	"fmt"
	"math"
	"time"
)

type Stage int

const (
	Idle Stage = iota
	Attacking
	Sustaining
	Releasing
	Cut
)

func (s Stage) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attacking:
		return "attacking"
	case Sustaining:
		return "sustaining"
	case Releasing:
		return "releasing"
	case Cut:
		return "cut"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// RetriggerPolicy decides where the attack ramp starts when Play hits an
// envelope that is still sounding.
type RetriggerPolicy int

const (
	// RetriggerContinuous ramps from the current amplitude.
	RetriggerContinuous RetriggerPolicy = iota
	// RetriggerReset ramps from silence, like a fresh note.
	RetriggerReset
)

func (p RetriggerPolicy) String() string {
	switch p {
	case RetriggerContinuous:
		return "continuous"
	case RetriggerReset:
		return "reset"
	}
	return fmt.Sprintf("RetriggerPolicy(%d)", int(p))
}

type EnvelopeSettings struct {
	// Linear attack time; the time it takes to reach full volume.
	Attack time.Duration
	// Exponential decay after the attack: the amount of times the volume
	// halves in one second. 0 holds full volume.
	HalvingRate float64
	// Linear release time; the time it takes to reach zero volume.
	Release   time.Duration
	Retrigger RetriggerPolicy
}

func (s EnvelopeSettings) validate() error {
	if s.Attack < 0 || s.Release < 0 {
		return fmt.Errorf("negative envelope time: %w", ErrInvalidInput)
	}
	if !(s.HalvingRate >= 0) || math.IsInf(s.HalvingRate, 0) {
		return fmt.Errorf("halving rate %v must be finite and >= 0: %w", s.HalvingRate, ErrInvalidInput)
	}
	switch s.Retrigger {
	case RetriggerContinuous, RetriggerReset:
	default:
		return fmt.Errorf("unknown retrigger policy %d: %w", int(s.Retrigger), ErrInvalidInput)
	}
	return nil
}

// Envelope is the amplitude state of one operator. Amplitude is computed
// from the stage, when it started and the amplitude captured at that
// transition; nothing advances between queries, so any query time is fine.
type Envelope struct {
	Settings EnvelopeSettings

	stage    Stage
	start    time.Duration
	baseline float64

	// state replaced by a Cut, still seen by queries before the cut
	cutStage    Stage
	cutStart    time.Duration
	cutBaseline float64

	noteOn    time.Duration
	frequency float64
	volume    float64
}

func NewEnvelope(s EnvelopeSettings) Envelope {
	return Envelope{Settings: s}
}

func (e *Envelope) Play(frequency, volume float64, at time.Duration) {
	baseline := 0.0
	if e.Settings.Retrigger == RetriggerContinuous {
		// Idle, Cut and finished releases all report 0 here.
		baseline = e.Amplitude(at)
	}
	e.stage = Attacking
	e.start = at
	e.baseline = baseline
	e.noteOn = at
	e.frequency = frequency
	e.volume = volume
}

// Release starts the release ramp from the amplitude at time at. An
// envelope that is not sounding, or already releasing, keeps its state.
// The stored stage is never Sustaining; StageAt derives it.
func (e *Envelope) Release(at time.Duration) {
	if e.stage != Attacking {
		return
	}
	amp := e.Amplitude(at)
	e.stage = Releasing
	e.start = at
	e.baseline = amp
}

// Cut silences the envelope from at on. Queries before at still see the
// state the cut replaced; a second cut can only move the cut earlier.
func (e *Envelope) Cut(at time.Duration) {
	if e.stage == Cut {
		if at < e.start {
			e.start = at
		}
		return
	}
	e.cutStage, e.cutStart, e.cutBaseline = e.stage, e.start, e.baseline
	e.stage = Cut
	e.start = at
	e.baseline = 0
}

// Frequency and Volume are the values recorded by the last Play.
func (e *Envelope) Frequency() float64 { return e.frequency }
func (e *Envelope) Volume() float64    { return e.volume }

// NoteOn is the time of the last Play.
func (e *Envelope) NoteOn() time.Duration { return e.noteOn }

// StageAt reports the stage as observed at t. An elapsed attack reads as
// Sustaining and an elapsed release as Idle.
func (e *Envelope) StageAt(t time.Duration) Stage {
	if e.stage == Cut && t < e.start {
		return e.stageIn(e.cutStage, e.cutStart, t)
	}
	return e.stageIn(e.stage, e.start, t)
}

func (e *Envelope) stageIn(stage Stage, start, t time.Duration) Stage {
	switch stage {
	case Attacking:
		if t-start >= e.Settings.Attack {
			return Sustaining
		}
	case Releasing:
		if t-start >= e.Settings.Release {
			return Idle
		}
	}
	return stage
}

// Active reports whether the envelope may still be non-zero at t or later.
func (e *Envelope) Active(t time.Duration) bool {
	switch e.StageAt(t) {
	case Idle, Cut:
		return false
	}
	return true
}

func (e *Envelope) Amplitude(t time.Duration) float64 {
	if e.stage == Cut && t < e.start {
		return e.amplitudeIn(e.cutStage, e.cutStart, e.cutBaseline, t)
	}
	return e.amplitudeIn(e.stage, e.start, e.baseline, t)
}

func (e *Envelope) amplitudeIn(stage Stage, start time.Duration, baseline float64, t time.Duration) float64 {
	dt := t - start
	switch stage {
	case Attacking:
		if dt < 0 {
			return baseline
		}
		if dt >= e.Settings.Attack {
			return e.sustain(dt - e.Settings.Attack)
		}
		frac := float64(dt) / float64(e.Settings.Attack)
		return baseline + (1-baseline)*frac
	case Releasing:
		if dt < 0 {
			return baseline
		}
		if dt >= e.Settings.Release {
			return 0
		}
		frac := float64(dt) / float64(e.Settings.Release)
		return baseline * (1 - frac)
	}
	return 0
}

func (e *Envelope) sustain(dt time.Duration) float64 {
	if e.Settings.HalvingRate == 0 {
		return 1
	}
	return math.Exp2(-e.Settings.HalvingRate * dt.Seconds())
}
