// Package patch reads instrument configurations and builds synth trees
// and sample banks from them.
package patch

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
)

const defaultConfig = `
{
	"maxVoices": 32,
	"watchConfig": true,
	"sampleRate": 44100,
	"instruments": {
		"bell": {
			"modulate": [
				{ "op": {
					"waveform": "sine",
					"frequencyMultiplier": 3.5,
					"volumeMultiplier": 0.8,
					"attackSeconds": 0.001,
					"halvingRate": 3,
					"releaseSeconds": 0.5
				} },
				{ "op": {
					"waveform": "sine",
					"attackSeconds": 0.002,
					"halvingRate": 1,
					"releaseSeconds": 1
				} }
			]
		},
		"chip": {
			"sum": [
				{ "op": {
					"waveform": "pulse",
					"dutyCycle": 0.25,
					"volumeMultiplier": 0.5,
					"attackSeconds": 0.01,
					"releaseSeconds": 0.1
				} },
				{ "op": {
					"waveform": "triangle",
					"frequencyMultiplier": 0.5,
					"volumeMultiplier": 0.5,
					"attackSeconds": 0.01,
					"releaseSeconds": 0.1
				} }
			]
		}
	},
	"triggers": [
		{ "regex": "hey", "instrument": "bell", "frequency": 880 },
		{ "regex": "ho", "instrument": "chip", "frequency": 220, "holdSeconds": 0.5 }
	]
}
`

// WaveConfig names a waveform. thin, chop and abs wrap Base.
type WaveConfig struct {
	Waveform  string      `json:"waveform"`
	DutyCycle float64     `json:"dutyCycle"`
	Constant  float64     `json:"constant"`
	Sample    string      `json:"sample,omitempty"`
	Base      *WaveConfig `json:"base,omitempty"`
	Active    float64     `json:"active"`
}

type OperatorConfig struct {
	WaveConfig
	AttackSeconds       float64 `json:"attackSeconds"`
	HalvingRate         float64 `json:"halvingRate"`
	ReleaseSeconds      float64 `json:"releaseSeconds"`
	Retrigger           string  `json:"retrigger"`
	FrequencyMultiplier float64 `json:"frequencyMultiplier"`
	VolumeMultiplier    float64 `json:"volumeMultiplier"`
	PhaseOffset         float64 `json:"phaseOffset"`
}

// NodeConfig sets exactly one of its fields.
type NodeConfig struct {
	Op       *OperatorConfig `json:"op,omitempty"`
	Sum      []NodeConfig    `json:"sum,omitempty"`
	Modulate []NodeConfig    `json:"modulate,omitempty"`
	Stack    *StackConfig    `json:"stack,omitempty"`
}

// StackConfig runs Program over Nodes, or the Preset program when
// Program is missing.
type StackConfig struct {
	Nodes   []NodeConfig        `json:"nodes"`
	Preset  string              `json:"preset"`
	Program []InstructionConfig `json:"program,omitempty"`
}

type InstructionConfig struct {
	Op    string  `json:"op"`
	Value float64 `json:"value"`
	Index int     `json:"index"`
}

type SampleConfig struct {
	ID                  uint64  `json:"id"`
	File                string  `json:"file"`
	SamplesPerPeriod    float64 `json:"samplesPerPeriod"`
	LoopPointSeconds    float64 `json:"loopPointSeconds"`
	LoopDurationSeconds float64 `json:"loopDurationSeconds"`
}

type Trigger struct {
	Regex       string  `json:"regex"`
	Instrument  string  `json:"instrument"`
	Frequency   float64 `json:"frequency"`
	Volume      float64 `json:"volume"`
	HoldSeconds float64 `json:"holdSeconds"`
}

type StaticConfig struct {
	MaxVoices   int  `json:"maxVoices"`
	WatchConfig bool `json:"watchConfig"`
	SampleRate  int  `json:"sampleRate"`
}

type DynamicConfig struct {
	Samples     map[string]SampleConfig `json:"samples"`
	Instruments map[string]NodeConfig   `json:"instruments"`
	Triggers    []Trigger               `json:"triggers"`
}

type Config struct {
	StaticConfig
	DynamicConfig

	// Dir resolves relative sample paths.
	Dir string `json:"-"`
}

// SamplePath returns the file of the named sample.
func (c *Config) SamplePath(s SampleConfig) string {
	if filepath.IsAbs(s.File) {
		return s.File
	}
	return filepath.Join(c.Dir, s.File)
}

// Parse validates and decodes a config held in memory.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := decode(data, "config.json", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ReadConfig reads the config at p, writing the default config there first
// if the file does not exist.
func ReadConfig(p string) (*Config, error) {
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		err = ioutil.WriteFile(p, []byte(defaultConfig), 0644)
		if err != nil {
			return nil, fmt.Errorf("can't write defaultConfig: %w", err)
		}
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("can't open config: %w", err)
	}
	defer f.Close()
	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("can't read config: %w", err)
	}
	var c Config
	if err := decode(data, p, &c); err != nil {
		return nil, err
	}
	c.Dir = filepath.Dir(p)
	return &c, nil
}
