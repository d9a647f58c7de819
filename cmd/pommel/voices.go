package main

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"git.disy.net/goetz/pommel"
	"git.disy.net/goetz/pommel/patch"
)

type voice struct {
	synth     *pommel.Synth
	releaseAt time.Duration
	released  bool
	seq       uint64 // start order
}

// mixer owns every playing voice and the output clock. The engine does
// not lock, so all voice access goes through the mixer's mutex.
type mixer struct {
	sync.Mutex
	rate      int
	maxVoices int
	frames    int64
	started   uint64
	voices    []*voice
	bank      *pommel.Bank
	times     []time.Duration
}

func newMixer(rate, maxVoices int) *mixer {
	return &mixer{rate: rate, maxVoices: maxVoices, bank: pommel.NewBank()}
}

func (m *mixer) now() time.Duration {
	return m.at(m.frames)
}

// at is the time of frame n, exact to the nanosecond so that blocks line
// up with each other.
func (m *mixer) at(n int64) time.Duration {
	rate := int64(m.rate)
	return time.Duration(n/rate)*time.Second + time.Duration(n%rate)*time.Second/time.Duration(rate)
}

// start plays synth, which the mixer then owns, at the current clock.
func (m *mixer) start(synth *pommel.Synth, t patch.Trigger) {
	m.Lock()
	defer m.Unlock()

	now := m.now()
	synth.Play(t.Frequency, t.Volume, now)
	m.started++
	v := &voice{
		synth:     synth,
		releaseAt: now + time.Duration(t.HoldSeconds*float64(time.Second)),
		seq:       m.started,
	}

	// check if there's an empty slot
	for i := range m.voices {
		if m.voices[i] == nil {
			m.voices[i] = v
			return
		}
	}
	if len(m.voices) >= m.maxVoices && len(m.voices) > 0 {
		i := m.oldest()
		m.voices[i].synth.Cut(now)
		m.voices[i] = v
		return
	}
	// no empty slot: append
	m.voices = append(m.voices, v)
}

// oldest returns the slot of the voice started first, or -1.
func (m *mixer) oldest() int {
	i := -1
	for j, v := range m.voices {
		if v != nil && (i < 0 || v.seq < m.voices[i].seq) {
			i = j
		}
	}
	return i
}

// setBank swaps in a new bank. Banks are never changed while in use.
func (m *mixer) setBank(b *pommel.Bank) {
	m.Lock()
	defer m.Unlock()

	m.bank = b
}

func (m *mixer) setMaxVoices(n int) {
	m.Lock()
	defer m.Unlock()

	m.maxVoices = n
	now := m.now()
	kept := m.voices[:0]
	for _, v := range m.voices {
		if v != nil {
			kept = append(kept, v)
		}
	}
	m.voices = kept
	for len(m.voices) > n {
		i := m.oldest()
		m.voices[i].synth.Cut(now)
		m.voices = append(m.voices[:i], m.voices[i+1:]...)
	}
}

func (m *mixer) active() int {
	m.Lock()
	defer m.Unlock()

	n := 0
	for _, v := range m.voices {
		if v != nil {
			n++
		}
	}
	return n
}

// render mixes all voices into out and advances the clock.
func (m *mixer) render(out []float32) {
	// zero buffer
	for i := range out {
		out[i] = 0
	}
	m.Lock()
	defer m.Unlock()

	if cap(m.times) < len(out) {
		m.times = make([]time.Duration, len(out))
	}
	times := m.times[:len(out)]
	for j := range times {
		times[j] = m.at(m.frames + int64(j))
	}
	end := m.at(m.frames + int64(len(out)))
	for i, v := range m.voices {
		if v == nil {
			continue
		}
		if !v.released && v.releaseAt < end {
			v.synth.Release(v.releaseAt)
			v.released = true
		}
		for j, t := range times {
			out[j] += float32(pommel.Sample(v.synth, m.bank, t, 0))
		}
		if v.released && !v.synth.Active(end) {
			m.voices[i] = nil
		}
	}
	// apply global attenuate
	for i := range out {
		out[i] *= attenuate
	}
	m.frames += int64(len(out))
}

type trigger struct {
	regex   *regexp.Regexp
	trigger patch.Trigger
}

type triggers struct {
	sync.Mutex
	triggers []trigger
}

func (ts *triggers) set(triggers []patch.Trigger) error {
	compiled := make([]trigger, 0, len(triggers))
	for _, t := range triggers {
		r, err := regexp.Compile(t.Regex)
		if err != nil {
			return fmt.Errorf("can't compile trigger %q: %w", t.Regex, err)
		}
		compiled = append(compiled, trigger{r, t})
	}

	ts.Lock()
	defer ts.Unlock()

	ts.triggers = compiled
	return nil
}

func (ts *triggers) firstMatch(s []byte) (patch.Trigger, bool) {
	ts.Lock()
	defer ts.Unlock()

	for _, t := range ts.triggers {
		if t.regex.Match(s) {
			return t.trigger, true
		}
	}
	return patch.Trigger{}, false
}

// instruments holds the built synth trees; voices play clones of them.
type instruments struct {
	sync.Mutex
	synths map[string]*pommel.Synth
}

func (is *instruments) set(synths map[string]*pommel.Synth) {
	is.Lock()
	defer is.Unlock()

	is.synths = synths
}

func (is *instruments) makeVoice(name string) (*pommel.Synth, error) {
	is.Lock()
	defer is.Unlock()

	s, ok := is.synths[name]
	if !ok {
		return nil, fmt.Errorf("can't find instrument for name: %s", name)
	}
	return s.Clone(), nil
}
