package pommel

import (
	"fmt"
	"time"
)

// CombinatorKind values are fixed, they cross the capi boundary.
type CombinatorKind int

const (
	CombineSum CombinatorKind = iota
	CombineModulate
)

func (k CombinatorKind) String() string {
	switch k {
	case CombineSum:
		return "sum"
	case CombineModulate:
		return "modulate"
	}
	return fmt.Sprintf("CombinatorKind(%d)", int(k))
}

type nodeKind uint8

const (
	nodeOperator nodeKind = iota
	nodeSum
	nodeModulate
	nodeStack
)

// Synth is a node of a synthesis tree: an operator, a sum of any number
// of synths, a modulator/carrier pair, or a stack program over synths.
// A Synth owns its children; they are copied in at construction, so
// trees never share nodes.
//
// A Synth is not safe for concurrent use. Sample and Fill only read it,
// Play, Release and Cut write it.
type Synth struct {
	kind     nodeKind
	op       Operator
	children []Synth // sum: any number; modulate: [modulator, carrier]
	program  []StackInstruction
}

func NewOperator(s OperatorSettings) (*Synth, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("can't create operator: %w", err)
	}
	return &Synth{
		kind: nodeOperator,
		op: Operator{
			waveform:  s.Waveform,
			modifiers: s.Modifiers,
			env:       NewEnvelope(s.Envelope),
		},
	}, nil
}

// NewSum adds the outputs of a and b.
func NewSum(a, b *Synth) *Synth {
	return &Synth{kind: nodeSum, children: []Synth{a.clone(), b.clone()}}
}

// NewModulate feeds the output of modulator into the phase of carrier.
func NewModulate(modulator, carrier *Synth) *Synth {
	return &Synth{kind: nodeModulate, children: []Synth{modulator.clone(), carrier.clone()}}
}

// Combine builds a combinator over synths. A sum takes any number of
// synths. A modulation over more than two synths is a chain: each synth
// modulates the next one and the last one is heard.
func Combine(kind CombinatorKind, synths ...*Synth) (*Synth, error) {
	if len(synths) == 0 {
		return nil, fmt.Errorf("can't combine zero synths: %w", ErrInvalidInput)
	}
	for i, s := range synths {
		if s == nil {
			return nil, fmt.Errorf("synth %d is nil: %w", i, ErrInvalidInput)
		}
	}
	switch kind {
	case CombineSum:
		children := make([]Synth, len(synths))
		for i, s := range synths {
			children[i] = s.clone()
		}
		return &Synth{kind: nodeSum, children: children}, nil
	case CombineModulate:
		acc := synths[0].clone()
		for _, s := range synths[1:] {
			acc = Synth{kind: nodeModulate, children: []Synth{acc, s.clone()}}
		}
		return &acc, nil
	}
	return nil, fmt.Errorf("unknown combinator kind %d: %w", int(kind), ErrInvalidInput)
}

// Clone returns a deep copy, runtime state included.
func (s *Synth) Clone() *Synth {
	c := s.clone()
	return &c
}

func (s *Synth) clone() Synth {
	c := *s
	if s.children != nil {
		c.children = make([]Synth, len(s.children))
		for i := range s.children {
			c.children[i] = s.children[i].clone()
		}
	}
	if s.program != nil {
		c.program = append([]StackInstruction(nil), s.program...)
	}
	return c
}

// Sample evaluates the tree at t. offset is added to the phase of every
// operator that is not a modulator. A nil bank behaves as an empty one.
func (s *Synth) Sample(bank *Bank, t time.Duration, offset float64) float64 {
	switch s.kind {
	case nodeOperator:
		return s.op.sample(bank, t, offset)
	case nodeSum:
		var sum float64
		for i := range s.children {
			sum += s.children[i].Sample(bank, t, offset)
		}
		return sum
	case nodeModulate:
		mod := s.children[0].Sample(bank, t, 0)
		return s.children[1].Sample(bank, t, offset+mod)
	case nodeStack:
		return s.sampleStack(bank, t, offset)
	}
	return 0
}

// Play starts every operator in the tree at frequency and volume.
func (s *Synth) Play(frequency, volume float64, at time.Duration) {
	s.each(func(o *Operator) { o.env.Play(frequency, volume, at) })
}

func (s *Synth) Release(at time.Duration) {
	s.each(func(o *Operator) { o.env.Release(at) })
}

func (s *Synth) Cut(at time.Duration) {
	s.each(func(o *Operator) { o.env.Cut(at) })
}

// Active reports whether any operator can still sound at t.
func (s *Synth) Active(t time.Duration) bool {
	active := false
	s.each(func(o *Operator) {
		if o.env.Active(t) {
			active = true
		}
	})
	return active
}

// Operators returns the number of operators in the tree.
func (s *Synth) Operators() int {
	n := 0
	s.each(func(*Operator) { n++ })
	return n
}

func (s *Synth) Depth() int {
	d := 0
	for i := range s.children {
		if cd := s.children[i].Depth(); cd > d {
			d = cd
		}
	}
	return d + 1
}

// Operator returns the operator of a leaf node.
func (s *Synth) Operator() (*Operator, bool) {
	if s.kind != nodeOperator {
		return nil, false
	}
	return &s.op, true
}

// Combinator returns the kind and number of children of an inner node.
func (s *Synth) Combinator() (CombinatorKind, int, bool) {
	switch s.kind {
	case nodeSum:
		return CombineSum, len(s.children), true
	case nodeModulate:
		return CombineModulate, len(s.children), true
	}
	return 0, 0, false
}

func (s *Synth) each(fn func(*Operator)) {
	if s.kind == nodeOperator {
		fn(&s.op)
		return
	}
	for i := range s.children {
		s.children[i].each(fn)
	}
}
