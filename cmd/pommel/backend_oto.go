//go:build !headless

package main

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	render func([]float32)
	buf    []float32 // reused between reads
	mutex  sync.Mutex
}

func newOtoBackend(rate int, render func([]float32)) (backend, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	b := &otoBackend{ctx: ctx, render: render, buf: make([]float32, 1024)}
	b.player = ctx.NewPlayer(b)
	return b, nil
}

// Read is called by oto's mixer goroutine.
func (b *otoBackend) Read(p []byte) (int, error) {
	n := len(p) / 4
	if len(b.buf) < n {
		b.buf = make([]float32, n)
	}
	samples := b.buf[:n]
	b.render(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(s))
	}
	return n * 4, nil
}

func (b *otoBackend) Start() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.player.Play()
	return nil
}

func (b *otoBackend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.player.Close()
}

func (b *otoBackend) Done() <-chan struct{} {
	return nil
}
