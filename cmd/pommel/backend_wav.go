package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"git.disy.net/goetz/pommel/wavio"
)

// tick is how much audio the wav backend renders at a time. Rendering is
// paced by the wall clock so triggers from stdin land where they were typed.
const tick = 20 * time.Millisecond

type wavBackend struct {
	file   *os.File
	writer *wavio.Writer
	render func([]float32)
	rate   int
	frames int64

	stop     chan struct{}
	done     chan struct{}
	finished sync.WaitGroup
	once     sync.Once
}

func newWavBackend(path string, rate int, seconds float64, render func([]float32)) (backend, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("can't render %v seconds", seconds)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("can't create %s: %w", path, err)
	}
	return &wavBackend{
		file:   f,
		writer: wavio.NewWriter(f, rate),
		render: render,
		rate:   rate,
		frames: int64(seconds * float64(rate)),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

func (b *wavBackend) Start() error {
	b.finished.Add(1)
	go b.run()
	return nil
}

func (b *wavBackend) run() {
	defer b.finished.Done()
	defer close(b.done)

	perTick := int64(b.rate) * int64(tick) / int64(time.Second)
	out := make([]float32, perTick)
	samples := make([]float64, perTick)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for written := int64(0); written < b.frames; {
		select {
		case <-ticker.C:
		case <-b.stop:
			return
		}
		n := perTick
		if rest := b.frames - written; rest < n {
			n = rest
		}
		b.render(out[:n])
		for i := int64(0); i < n; i++ {
			samples[i] = float64(out[i])
		}
		if err := b.writer.Write(samples[:n]); err != nil {
			fmt.Fprintf(os.Stderr, "error: can't write wav: %v\n", err)
			return
		}
		written += n
	}
}

// Close stops rendering and finishes the file.
func (b *wavBackend) Close() error {
	b.once.Do(func() { close(b.stop) })
	b.finished.Wait()
	err := b.writer.Close()
	if cerr := b.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *wavBackend) Done() <-chan struct{} {
	return b.done
}
