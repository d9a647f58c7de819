// Package pommel is a phase-offset modulation synthesiser.
//
// A synth is a tree: operators (a waveform shaped by an envelope) at the
// leaves, sums and modulations above them. Modulation adds the
// modulator's output to the carrier's phase rather than its frequency,
// which for sinusoids is frequency modulation integrated over time.
//
//	mod, _ := pommel.NewOperator(pommel.OperatorSettings{Waveform: pommel.Sine{}, ...})
//	car, _ := pommel.NewOperator(pommel.OperatorSettings{Waveform: pommel.Sine{}, ...})
//	bell := pommel.NewModulate(mod, car)
//	bell.Play(440, 0.8, 0)
//	n, err := pommel.Fill(bell, bank, 0, pommel.FrequencyToInterval(44100), len(buf)/2, pommel.FormatI16, 0, buf)
//
// Sampling never changes a tree; only Play, Release and Cut do, each at an
// explicit time. Neither trees nor banks lock: serialise access to a tree,
// and do not Add to a bank while it is being sampled.
package pommel
