package audio

import (
	"math"
	"time"
)

// ToneRampMs is the attack/release length applied to live tone bursts.
const ToneRampMs = 5

// Tone renders a sine burst of length d as 16-bit PCM bytes. Both ends are
// ramped over ToneRampMs (or half the burst if it is shorter).
func Tone(freqHz, amplitude float64, sampleRate int, d time.Duration) []byte {
	n := int(math.Round(float64(sampleRate) * d.Seconds()))
	if n <= 0 {
		return []byte{}
	}

	ramp := sampleRate * ToneRampMs / 1000
	if ramp > n/2 {
		ramp = n / 2
	}

	samples := make([]float64, n)
	for i := range samples {
		gain := 1.0
		switch {
		case i < ramp:
			gain = float64(i) / float64(ramp)
		case i >= n-ramp:
			gain = float64(n-1-i) / float64(ramp)
		}
		t := float64(i) / float64(sampleRate)
		samples[i] = gain * amplitude * math.Sin(2*math.Pi*freqHz*t)
	}

	return FloatToPCM16(samples)
}
