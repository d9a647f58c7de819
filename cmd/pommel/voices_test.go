package main

import (
	"math"
	"testing"
	"time"

	"git.disy.net/goetz/pommel"
	"git.disy.net/goetz/pommel/patch"
)

func constantSynth(t *testing.T) *pommel.Synth {
	t.Helper()
	s, err := pommel.NewOperator(pommel.OperatorSettings{
		Waveform:  pommel.Constant{Value: 1},
		Modifiers: pommel.DefaultModifiers(),
	})
	if err != nil {
		t.Fatalf("can't create operator: %v", err)
	}
	return s
}

func TestMixerRendersAndReaps(t *testing.T) {
	m := newMixer(1000, 4)
	m.start(constantSynth(t), patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 0.01})
	out := make([]float32, 5)
	m.render(out)
	for i, v := range out {
		if math.Abs(float64(v)-attenuate) > 1e-6 {
			t.Fatalf("frame %d: expected %v, got %v", i, attenuate, v)
		}
	}
	if m.active() != 1 {
		t.Fatalf("expected one voice, got %d", m.active())
	}
	m.render(make([]float32, 20))
	if m.active() != 0 {
		t.Fatalf("released voice not reaped, %d playing", m.active())
	}
	if m.now() != 25*time.Millisecond {
		t.Fatalf("clock at %v", m.now())
	}
}

func TestMixerStealsOldest(t *testing.T) {
	m := newMixer(1000, 1)
	first := constantSynth(t)
	m.start(first, patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 1})
	m.start(constantSynth(t), patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 1})
	if m.active() != 1 {
		t.Fatalf("expected one voice, got %d", m.active())
	}
	if first.Active(0) {
		t.Fatalf("stolen voice still active")
	}
}

func TestTriggersFirstMatch(t *testing.T) {
	var ts triggers
	err := ts.set([]patch.Trigger{
		{Regex: "^GET", Instrument: "a"},
		{Regex: "GET|POST", Instrument: "b"},
	})
	if err != nil {
		t.Fatalf("can't set triggers: %v", err)
	}
	if tr, ok := ts.firstMatch([]byte("GET /")); !ok || tr.Instrument != "a" {
		t.Fatalf("expected a, got %+v", tr)
	}
	if tr, ok := ts.firstMatch([]byte("x POST")); !ok || tr.Instrument != "b" {
		t.Fatalf("expected b, got %+v", tr)
	}
	if _, ok := ts.firstMatch([]byte("DELETE")); ok {
		t.Fatalf("expected no match")
	}
	if err := ts.set([]patch.Trigger{{Regex: "("}}); err == nil {
		t.Fatalf("expected regex error")
	}
	// a bad set keeps the old triggers
	if _, ok := ts.firstMatch([]byte("GET")); !ok {
		t.Fatalf("triggers lost after failed set")
	}
}

func TestInstrumentsClone(t *testing.T) {
	var is instruments
	s := constantSynth(t)
	is.set(map[string]*pommel.Synth{"c": s})
	v, err := is.makeVoice("c")
	if err != nil {
		t.Fatalf("can't make voice: %v", err)
	}
	v.Play(1, 1, 0)
	if s.Active(0) {
		t.Fatalf("playing a voice changed the instrument")
	}
	if _, err := is.makeVoice("missing"); err == nil {
		t.Fatalf("expected unknown instrument error")
	}
}

func TestMixerStealsOldestAfterSlotReuse(t *testing.T) {
	m := newMixer(1000, 2)
	a, b, c, d := constantSynth(t), constantSynth(t), constantSynth(t), constantSynth(t)
	m.start(a, patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 0.001})
	m.start(b, patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 1})
	// a is released and reaped, freeing slot 0
	m.render(make([]float32, 10))
	m.start(c, patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 1})
	m.start(d, patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 1})
	now := m.now()
	if b.Active(now) {
		t.Fatalf("oldest voice b not stolen")
	}
	if !c.Active(now) || !d.Active(now) {
		t.Fatalf("newer voices stolen")
	}
}

func TestMixerTrimsOnLowerMaxVoices(t *testing.T) {
	m := newMixer(1000, 3)
	synths := []*pommel.Synth{constantSynth(t), constantSynth(t), constantSynth(t)}
	for _, s := range synths {
		m.start(s, patch.Trigger{Frequency: 1, Volume: 1, HoldSeconds: 1})
	}
	m.setMaxVoices(1)
	if m.active() != 1 {
		t.Fatalf("expected one voice, got %d", m.active())
	}
	if synths[0].Active(0) || synths[1].Active(0) || !synths[2].Active(0) {
		t.Fatalf("wrong voices trimmed")
	}
}

func TestMixerClockIsContinuous(t *testing.T) {
	m := newMixer(44100, 4)
	for n := int64(0); n < 3*44100; n++ {
		d := m.at(n+1) - m.at(n)
		if d != 22675 && d != 22676 {
			t.Fatalf("frame %d lasts %v", n, d)
		}
	}
	if m.at(44100) != time.Second {
		t.Fatalf("frame 44100 at %v", m.at(44100))
	}

	saw, err := pommel.NewOperator(pommel.OperatorSettings{
		Waveform:  pommel.Sawtooth{},
		Modifiers: pommel.DefaultModifiers(),
	})
	if err != nil {
		t.Fatalf("can't create operator: %v", err)
	}
	ref := saw.Clone()
	ref.Play(441, 1, 0)
	m.start(saw, patch.Trigger{Frequency: 441, Volume: 1, HoldSeconds: 10})
	m.render(make([]float32, 512))
	out := make([]float32, 512)
	m.render(out)
	for j, v := range out {
		want := float32(ref.Sample(nil, m.at(int64(512+j)), 0)) * attenuate
		if v != want {
			t.Fatalf("frame %d: got %v, want %v", 512+j, v, want)
		}
	}
}
