package wavio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"

	"git.disy.net/goetz/pommel"
)

func writeTestWav(t *testing.T, samples []float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("can't create: %v", err)
	}
	defer f.Close()
	w := NewWriter(f, 8000)
	if err := w.Write(samples); err != nil {
		t.Fatalf("can't write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("can't close: %v", err)
	}
	return path
}

func TestRoundTrip(t *testing.T) {
	in := []float64{0, 0.5, -0.5, 1, 2}
	rec, err := LoadFile(writeTestWav(t, in))
	if err != nil {
		t.Fatalf("can't load: %v", err)
	}
	if rec.SampleRate != 8000 {
		t.Fatalf("sample rate %d", rec.SampleRate)
	}
	want := []float64{0, 0.5, -0.5, 1, 1}
	if len(rec.Data) != len(want) {
		t.Fatalf("got %d frames, want %d", len(rec.Data), len(want))
	}
	for i := range want {
		if math.Abs(rec.Data[i]-want[i]) > 1e-3 {
			t.Errorf("frame %d: got %v, want %v", i, rec.Data[i], want[i])
		}
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("definitely not RIFF data")))
	if !errors.Is(err, ErrNotWav) {
		t.Fatalf("expected ErrNotWav, got %v", err)
	}
}

func TestAddToBank(t *testing.T) {
	rec, err := LoadFile(writeTestWav(t, []float64{0.25, 0.25, -0.25, -0.25}))
	if err != nil {
		t.Fatalf("can't load: %v", err)
	}
	bank := pommel.NewBank()
	if err := AddToBank(bank, 3, rec, 4, 0, 0); err != nil {
		t.Fatalf("can't add: %v", err)
	}
	op, err := pommel.NewOperator(pommel.OperatorSettings{
		Waveform:  pommel.PCM{ID: 3},
		Modifiers: pommel.DefaultModifiers(),
	})
	if err != nil {
		t.Fatalf("can't create operator: %v", err)
	}
	op.Play(1, 1, 0)
	if got := op.Sample(bank, 600*time.Millisecond, 0); math.Abs(got+0.25) > 1e-3 {
		t.Fatalf("third frame %v", got)
	}
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		x, depth int
		want     float64
	}{
		{128, 8, 0},
		{0, 8, -1},
		{-32768, 16, -1},
		{16384, 16, 0.5},
		{1 << 23, 24, 1},
	}
	for _, tt := range tests {
		if got := normalise(tt.x, tt.depth); got != tt.want {
			t.Errorf("normalise(%d, %d) = %v, want %v", tt.x, tt.depth, got, tt.want)
		}
	}
}

func TestWriterQuantisesLikePut(t *testing.T) {
	f, err := os.Open(writeTestWav(t, []float64{0.5, math.NaN(), -2, 0.25}))
	if err != nil {
		t.Fatalf("can't open: %v", err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("can't decode: %v", err)
	}
	want := []int{16384, 0, -32767, 8192}
	if len(buf.Data) != len(want) {
		t.Fatalf("got %d frames, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("frame %d: got %d, want %d", i, buf.Data[i], want[i])
		}
	}
}
