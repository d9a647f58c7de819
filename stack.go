package pommel

import (
	"fmt"
	"time"
)

// StackOpcode selects what a StackInstruction does.
type StackOpcode uint8

const (
	// StackConstant pushes Value.
	StackConstant StackOpcode = iota
	// StackInput pushes the phase offset the stack node was sampled with.
	StackInput
	// StackSample pops a phase offset, samples synth Index with it and
	// pushes the result.
	StackSample
	// StackAdd pops two values and pushes their sum.
	StackAdd
	// StackDupe pushes a copy of the top value.
	StackDupe
)

func (o StackOpcode) String() string {
	switch o {
	case StackConstant:
		return "constant"
	case StackInput:
		return "input"
	case StackSample:
		return "sample"
	case StackAdd:
		return "add"
	case StackDupe:
		return "dupe"
	}
	return fmt.Sprintf("StackOpcode(%d)", int(o))
}

type StackInstruction struct {
	Op    StackOpcode
	Value float64 // StackConstant
	Index int     // StackSample
}

// ChainProgram feeds the input offset into synth n-1, its output into
// synth n-2 and so on. Synth 0 is heard.
func ChainProgram(n int) []StackInstruction {
	prog := []StackInstruction{{Op: StackInput}}
	for i := n - 1; i >= 0; i-- {
		prog = append(prog, StackInstruction{Op: StackSample, Index: i})
	}
	return prog
}

// SumProgram adds n synths, each sampled without offset. With no synths
// the input offset itself is the output.
func SumProgram(n int) []StackInstruction {
	if n == 0 {
		return []StackInstruction{{Op: StackInput}}
	}
	var prog []StackInstruction
	for i := 0; i < n; i++ {
		prog = append(prog,
			StackInstruction{Op: StackConstant},
			StackInstruction{Op: StackSample, Index: i},
			StackInstruction{Op: StackAdd},
		)
	}
	return prog
}

// NewStack combines synths with a small stack program. Popping an empty
// stack yields 0, and the node outputs the top of the stack, or 0 when
// the program leaves it empty.
func NewStack(synths []*Synth, program []StackInstruction) (*Synth, error) {
	children := make([]Synth, len(synths))
	for i, s := range synths {
		if s == nil {
			return nil, fmt.Errorf("synth %d is nil: %w", i, ErrInvalidInput)
		}
		children[i] = s.clone()
	}
	s := &Synth{kind: nodeStack, children: children}
	if err := s.SetProgram(program); err != nil {
		return nil, err
	}
	return s, nil
}

// SetProgram replaces the program of a stack node, keeping its synths and
// their state.
func (s *Synth) SetProgram(program []StackInstruction) error {
	if s.kind != nodeStack {
		return fmt.Errorf("not a stack node: %w", ErrInvalidInput)
	}
	for i, in := range program {
		switch in.Op {
		case StackConstant:
			if !finite(in.Value) {
				return fmt.Errorf("instruction %d: constant %v is not finite: %w", i, in.Value, ErrInvalidInput)
			}
		case StackSample:
			if in.Index < 0 || in.Index >= len(s.children) {
				return fmt.Errorf("instruction %d: no synth %d: %w", i, in.Index, ErrInvalidInput)
			}
		case StackInput, StackAdd, StackDupe:
		default:
			return fmt.Errorf("instruction %d: unknown opcode %d: %w", i, int(in.Op), ErrInvalidInput)
		}
	}
	s.program = append([]StackInstruction(nil), program...)
	return nil
}

// Program returns a copy of the program of a stack node.
func (s *Synth) Program() ([]StackInstruction, bool) {
	if s.kind != nodeStack {
		return nil, false
	}
	return append([]StackInstruction(nil), s.program...), true
}

func (s *Synth) sampleStack(bank *Bank, t time.Duration, offset float64) float64 {
	var buf [16]float64
	stack := buf[:0]
	pop := func() float64 {
		if len(stack) == 0 {
			return 0
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for _, in := range s.program {
		switch in.Op {
		case StackConstant:
			stack = append(stack, in.Value)
		case StackInput:
			stack = append(stack, offset)
		case StackSample:
			v := s.children[in.Index].Sample(bank, t, pop())
			stack = append(stack, v)
		case StackAdd:
			v := pop() + pop()
			stack = append(stack, v)
		case StackDupe:
			top := 0.0
			if len(stack) > 0 {
				top = stack[len(stack)-1]
			}
			stack = append(stack, top)
		}
	}
	v := pop()
	if !finite(v) {
		return 0
	}
	return v
}
