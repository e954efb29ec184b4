// Package synth renders a Morse code string into a sampled sine waveform.
//
// Rendering happens in two steps: the code is expanded into timed on/off
// segments, then the segments are sampled at SampleRate. The oscillator phase
// is referenced to the start of the buffer and is not reset per segment.
package synth

import (
	"math"
	"time"

	"github.com/realtime-ai/morse-wave/pkg/morse"
)

const (
	// SampleRate 采样率 (Hz)
	SampleRate = 44100
	// ToneFrequencyHz 音调频率
	ToneFrequencyHz = 600.0
	// PeakAmplitude 峰值幅度，留出余量避免削波
	PeakAmplitude = 0.2
	// TimeUnit 一个时间单位
	TimeUnit = 100 * time.Millisecond
)

// TimeUnitSeconds is TimeUnit in seconds.
var TimeUnitSeconds = TimeUnit.Seconds()

// Segment is a stretch of constant amplitude: PeakAmplitude (tone) or 0 (silence).
type Segment struct {
	Amplitude       float64
	DurationSeconds float64
}

// On reports whether the segment is sounded.
func (s Segment) On() bool {
	return s.Amplitude != 0
}

// RenderSegments expands code into segments. Every symbol yields its own
// segment followed by one time unit of silence; symbols without a duration
// yield a zero-length segment.
func RenderSegments(code string) []Segment {
	segments := make([]Segment, 0, 2*len(code))

	for _, sym := range code {
		amp := 0.0
		if morse.IsTone(sym) {
			amp = PeakAmplitude
		}
		segments = append(segments,
			Segment{Amplitude: amp, DurationSeconds: float64(morse.DurationUnits(sym)) * TimeUnitSeconds},
			Segment{Amplitude: 0, DurationSeconds: TimeUnitSeconds},
		)
	}

	return segments
}

// TotalDuration sums the segment durations in seconds.
func TotalDuration(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.DurationSeconds
	}
	return total
}

// SampleCount is the length of the buffer Render would return, computed
// without allocating it.
func SampleCount(segments []Segment) int {
	return int(math.Round(SampleRate * TotalDuration(segments)))
}

// Render samples segments at SampleRate. The buffer length is
// round(SampleRate * total duration); each segment covers
// round(SampleRate * its duration) samples, clipped to the buffer.
func Render(segments []Segment) []float64 {
	total := SampleCount(segments)
	data := make([]float64, total)

	index := 0
	for _, seg := range segments {
		n := int(math.Round(SampleRate * seg.DurationSeconds))
		for i := 0; i < n && index < total; i++ {
			if seg.On() {
				t := float64(index) / SampleRate
				data[index] = seg.Amplitude * math.Sin(2*math.Pi*ToneFrequencyHz*t)
			}
			index++
		}
	}

	return data
}

// Synthesize renders code straight to samples.
func Synthesize(code string) []float64 {
	return Render(RenderSegments(code))
}
