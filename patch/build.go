package patch

import (
	"fmt"
	"sort"
	"time"

	"git.disy.net/goetz/pommel"
	"git.disy.net/goetz/pommel/wavio"
)

// Instruments are the synth trees of a config together with the bank
// their PCM operators read from.
type Instruments struct {
	Synths map[string]*pommel.Synth
	Bank   *pommel.Bank
}

// Build loads every sample and builds every instrument.
func (c *Config) Build() (*Instruments, error) {
	bank, err := c.LoadSamples()
	if err != nil {
		return nil, err
	}
	synths := make(map[string]*pommel.Synth, len(c.Instruments))
	for name, n := range c.Instruments {
		s, err := c.buildNode(n, name)
		if err != nil {
			return nil, fmt.Errorf("can't build instrument %s: %w", name, err)
		}
		synths[name] = s
	}
	return &Instruments{Synths: synths, Bank: bank}, nil
}

// LoadSamples reads every configured sample file into a new bank.
func (c *Config) LoadSamples() (*pommel.Bank, error) {
	bank := pommel.NewBank()
	owners := make(map[uint64]string)
	for _, name := range sortedKeys(c.Samples) {
		s := c.Samples[name]
		if other, ok := owners[s.ID]; ok {
			return nil, fmt.Errorf("samples %s and %s share id %d", other, name, s.ID)
		}
		owners[s.ID] = name
		rec, err := wavio.LoadFile(c.SamplePath(s))
		if err != nil {
			return nil, fmt.Errorf("can't load sample %s: %w", name, err)
		}
		err = wavio.AddToBank(bank, s.ID, rec, s.SamplesPerPeriod, s.LoopPointSeconds, s.LoopDurationSeconds)
		if err != nil {
			return nil, fmt.Errorf("can't add sample %s: %w", name, err)
		}
	}
	return bank, nil
}

func (c *Config) buildNode(n NodeConfig, path string) (*pommel.Synth, error) {
	set := 0
	if n.Op != nil {
		set++
	}
	if n.Sum != nil {
		set++
	}
	if n.Modulate != nil {
		set++
	}
	if n.Stack != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%s: node must set exactly one of op, sum, modulate, stack", path)
	}
	if n.Op != nil {
		settings, err := c.operatorSettings(n.Op)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return pommel.NewOperator(settings)
	}
	if n.Stack != nil {
		return c.buildStack(n.Stack, path)
	}

	kind, children := pommel.CombineSum, n.Sum
	if n.Modulate != nil {
		kind, children = pommel.CombineModulate, n.Modulate
		if len(children) < 2 {
			return nil, fmt.Errorf("%s: modulate needs at least two nodes", path)
		}
	}
	synths := make([]*pommel.Synth, len(children))
	for i, child := range children {
		s, err := c.buildNode(child, fmt.Sprintf("%s.%s[%d]", path, kind, i))
		if err != nil {
			return nil, err
		}
		synths[i] = s
	}
	s, err := pommel.Combine(kind, synths...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (c *Config) buildStack(st *StackConfig, path string) (*pommel.Synth, error) {
	synths := make([]*pommel.Synth, len(st.Nodes))
	for i, child := range st.Nodes {
		s, err := c.buildNode(child, fmt.Sprintf("%s.stack[%d]", path, i))
		if err != nil {
			return nil, err
		}
		synths[i] = s
	}
	var prog []pommel.StackInstruction
	switch {
	case st.Program != nil:
		for i, in := range st.Program {
			op, ok := opcodes[in.Op]
			if !ok {
				return nil, fmt.Errorf("%s: instruction %d: unknown op %q", path, i, in.Op)
			}
			prog = append(prog, pommel.StackInstruction{Op: op, Value: in.Value, Index: in.Index})
		}
	case st.Preset == "sum":
		prog = pommel.SumProgram(len(synths))
	default:
		prog = pommel.ChainProgram(len(synths))
	}
	s, err := pommel.NewStack(synths, prog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

var opcodes = map[string]pommel.StackOpcode{
	"constant": pommel.StackConstant,
	"input":    pommel.StackInput,
	"sample":   pommel.StackSample,
	"add":      pommel.StackAdd,
	"dupe":     pommel.StackDupe,
}

func (c *Config) waveform(w *WaveConfig) (pommel.Waveform, error) {
	base := func() (pommel.Waveform, error) {
		if w.Base == nil {
			return nil, fmt.Errorf("%s waveform needs a base", w.Waveform)
		}
		return c.waveform(w.Base)
	}
	switch w.Waveform {
	case "sine":
		return pommel.Sine{}, nil
	case "pulse":
		return pommel.Pulse{DutyCycle: w.DutyCycle}, nil
	case "triangle":
		return pommel.Triangle{}, nil
	case "sawtooth":
		return pommel.Sawtooth{}, nil
	case "invertedSawtooth":
		return pommel.InvertedSawtooth{}, nil
	case "constant":
		return pommel.Constant{Value: w.Constant}, nil
	case "pcm":
		s, ok := c.Samples[w.Sample]
		if !ok {
			return nil, fmt.Errorf("unknown sample %q", w.Sample)
		}
		return pommel.PCM{ID: s.ID}, nil
	case "thin":
		b, err := base()
		if err != nil {
			return nil, err
		}
		return pommel.Thin{Base: b, Active: w.Active}, nil
	case "chop":
		b, err := base()
		if err != nil {
			return nil, err
		}
		return pommel.Chop{Base: b, Active: w.Active}, nil
	case "abs":
		b, err := base()
		if err != nil {
			return nil, err
		}
		return pommel.Abs{Base: b}, nil
	}
	return nil, fmt.Errorf("unknown waveform %q", w.Waveform)
}

func (c *Config) operatorSettings(o *OperatorConfig) (pommel.OperatorSettings, error) {
	w, err := c.waveform(&o.WaveConfig)
	if err != nil {
		return pommel.OperatorSettings{}, err
	}
	retrigger := pommel.RetriggerContinuous
	if o.Retrigger == "reset" {
		retrigger = pommel.RetriggerReset
	}
	return pommel.OperatorSettings{
		Waveform: w,
		Envelope: pommel.EnvelopeSettings{
			Attack:      seconds(o.AttackSeconds),
			HalvingRate: o.HalvingRate,
			Release:     seconds(o.ReleaseSeconds),
			Retrigger:   retrigger,
		},
		Modifiers: pommel.Modifiers{
			FrequencyMultiplier: o.FrequencyMultiplier,
			VolumeMultiplier:    o.VolumeMultiplier,
			PhaseOffset:         o.PhaseOffset,
		},
	}, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
