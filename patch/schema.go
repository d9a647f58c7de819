package patch

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema constrains config files and supplies their defaults.
const schema = `
#Wave: {
	waveform:  "sine" | "pulse" | "triangle" | "sawtooth" | "invertedSawtooth" | "pcm" | "constant" | "thin" | "chop" | "abs"
	dutyCycle: *0.5 | (number & >=0 & <1)
	constant:  *0 | number
	sample?:   string
	// thin, chop and abs wrap base
	base?:  #Wave
	active: *0.5 | (number & >0)
}

#Operator: {
	#Wave
	attackSeconds:       *0 | (number & >=0)
	halvingRate:         *0 | (number & >=0)
	releaseSeconds:      *0 | (number & >=0)
	retrigger:           *"continuous" | "reset"
	frequencyMultiplier: *1 | number
	volumeMultiplier:    *1 | number
	phaseOffset:         *0 | number
}

#Instruction: {
	op:    "constant" | "input" | "sample" | "add" | "dupe"
	value: *0 | number
	index: *0 | (int & >=0)
}

#Stack: {
	nodes: [...#Node]
	// used when program is missing
	preset:   *"chain" | "sum"
	program?: [...#Instruction]
}

#Node: {
	op?:       #Operator
	sum?:      [...#Node]
	modulate?: [...#Node]
	stack?:    #Stack
}

#Sample: {
	id:                  int & >=0
	file:                string
	samplesPerPeriod:    number & >0
	loopPointSeconds:    *0 | (number & >=0)
	loopDurationSeconds: *0 | (number & >=0)
}

#Trigger: {
	regex:       string
	instrument:  string
	frequency:   *440 | (number & >0)
	volume:      *1 | (number & >=0)
	holdSeconds: *0.25 | (number & >=0)
}

#Config: {
	maxVoices:   *32 | (int & >0)
	watchConfig: *false | bool
	sampleRate:  *44100 | (int & >0)
	samples:     [string]: #Sample
	instruments: [string]: #Node
	triggers:    *[] | [...#Trigger]
}
`

// decode validates data against the schema and unmarshals it, defaults
// filled in, into c.
func decode(data []byte, filename string, c *Config) error {
	ctx := cuecontext.New()
	s := ctx.CompileString(schema, cue.Filename("patch.cue"))
	if err := s.Err(); err != nil {
		return fmt.Errorf("can't compile schema: %w", err)
	}
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return fmt.Errorf("can't parse: %w", err)
	}
	v = s.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Errorf("can't export: %w", err)
	}
	if err := json.Unmarshal(b, c); err != nil {
		return fmt.Errorf("unmarshalling: %w", err)
	}
	return nil
}
