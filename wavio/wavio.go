// Package wavio moves PCM data between WAV files and the engine.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"git.disy.net/goetz/pommel"
)

var ErrNotWav = errors.New("not a wav file")

// Recording is mono PCM data normalised to [-1, 1].
type Recording struct {
	SampleRate int
	Data       []float64
}

// Load decodes a WAV stream, mixing all channels down to one.
func Load(r io.ReadSeeker) (*Recording, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrNotWav
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("can't decode pcm: %w", err)
	}
	channels := 1
	rate := int(d.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	frames := len(buf.Data) / channels
	data := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += normalise(buf.Data[i*channels+c], depth)
		}
		data[i] = sum / float64(channels)
	}
	return &Recording{SampleRate: rate, Data: data}, nil
}

func LoadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open sample: %w", err)
	}
	defer f.Close()
	rec, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("can't load %s: %w", path, err)
	}
	return rec, nil
}

// normalise maps a decoded integer of the given bit depth onto [-1, 1].
// 8-bit WAV data is unsigned, wider depths are signed.
func normalise(x, depth int) float64 {
	if depth <= 8 {
		return float64(x-128) / 128
	}
	return float64(x) / float64(int64(1)<<(depth-1))
}

// AddToBank stores rec under id. Loop times are in seconds of the recording.
func AddToBank(bank *pommel.Bank, id pommel.SampleID, rec *Recording, samplesPerPeriod, loopPointSecs, loopDurationSecs float64) error {
	settings := pommel.NewSampleSettings(float64(rec.SampleRate), samplesPerPeriod, loopPointSecs, loopDurationSecs)
	return bank.AddFloats(id, rec.Data, settings)
}

// Writer encodes mono 16-bit WAV.
type Writer struct {
	enc *wav.Encoder
	buf *audio.IntBuffer
}

func NewWriter(w io.WriteSeeker, sampleRate int) *Writer {
	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, 16, 1, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}
}

// Write appends samples quantised as pommel.Put does for FormatI16.
func (w *Writer) Write(samples []float64) error {
	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, x := range samples {
		w.buf.Data[i] = int(pommel.QuantizeI16(x))
	}
	return w.enc.Write(w.buf)
}

// Close finalises the header; it does not close the underlying writer.
func (w *Writer) Close() error {
	return w.enc.Close()
}
