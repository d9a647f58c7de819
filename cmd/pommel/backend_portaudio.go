//go:build !headless

package main

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

type portaudioBackend struct {
	stream *portaudio.Stream
}

func newPortaudioBackend(rate int, render func([]float32)) (backend, error) {
	err := portaudio.Initialize()
	if err != nil {
		return nil, fmt.Errorf("can't init portaudio: %w", err)
	}
	// mono out
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(rate), portaudio.FramesPerBufferUnspecified, render)
	if err != nil {
		// ignore Terminate error
		portaudio.Terminate()
		return nil, fmt.Errorf("can't open default stream: %w", err)
	}
	return &portaudioBackend{stream: stream}, nil
}

func (b *portaudioBackend) Start() error {
	return b.stream.Start()
}

func (b *portaudioBackend) Close() error {
	// ignore Stop error, Close reports the interesting one
	b.stream.Stop()
	err := b.stream.Close()
	portaudio.Terminate()
	return err
}

func (b *portaudioBackend) Done() <-chan struct{} {
	return nil
}
