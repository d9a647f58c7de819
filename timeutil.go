package pommel

import (
	"math"
	"time"
)

// Period is a Duration where one "second" is one waveform cycle. It keeps
// loop points in fixed point, independent of the playback frequency.
type Period = time.Duration

// cycles returns how many periods of freq fit into t, unwrapped.
func cycles(t time.Duration, freq float64) float64 {
	secs := t / time.Second
	nanos := t % time.Second
	return float64(secs)*freq + float64(nanos)*freq/float64(time.Second)
}

// phaseAt is cycles with the whole cycles of the seconds part dropped
// before they are added up, so long running clocks keep sub-cycle precision.
func phaseAt(t time.Duration, freq float64) float64 {
	secs := t / time.Second
	nanos := t % time.Second
	whole := float64(secs) * freq
	whole -= math.Trunc(whole)
	return whole + float64(nanos)*freq/float64(time.Second)
}

// FrequencyToInterval returns the time between two samples at rate hz.
// Non-positive or non-finite rates give 0.
func FrequencyToInterval(hz float64) time.Duration {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return 0
	}
	return durationFromSeconds(1 / hz)
}

// durationFromSeconds converts with saturation instead of overflow.
func durationFromSeconds(s float64) time.Duration {
	switch {
	case math.IsNaN(s) || s <= 0:
		return 0
	case s >= float64(math.MaxInt64)/float64(time.Second):
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(math.Round(s * float64(time.Second)))
}
