package main

import (
	"fmt"
)

// backend pulls audio from render at the sample rate it was opened with.
type backend interface {
	Start() error
	Close() error
	// Done is closed when a backend with a fixed length has finished.
	// Real-time backends return nil.
	Done() <-chan struct{}
}

func openBackend(name string, rate int, render func([]float32), out string, seconds float64) (backend, error) {
	switch name {
	case "portaudio":
		return newPortaudioBackend(rate, render)
	case "oto":
		return newOtoBackend(rate, render)
	case "wav":
		return newWavBackend(out, rate, seconds, render)
	}
	return nil, fmt.Errorf("unknown backend: %s", name)
}
