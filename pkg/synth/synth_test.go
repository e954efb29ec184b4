package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSegments(t *testing.T) {
	t.Run("Empty code", func(t *testing.T) {
		assert.Empty(t, RenderSegments(""))
	})

	t.Run("Every symbol is followed by a gap", func(t *testing.T) {
		segs := RenderSegments(".- /\n")
		require.Len(t, segs, 10)

		want := []Segment{
			{PeakAmplitude, 0.1}, {0, 0.1},
			{PeakAmplitude, 0.3}, {0, 0.1},
			{0, 0.3}, {0, 0.1},
			{0, 0.1}, {0, 0.1},
			{0, 1.0}, {0, 0.1},
		}
		for i, w := range want {
			assert.Equal(t, w.Amplitude, segs[i].Amplitude, "segment %d", i)
			assert.InDelta(t, w.DurationSeconds, segs[i].DurationSeconds, 1e-9, "segment %d", i)
		}
	})

	t.Run("Unknown symbols are zero length", func(t *testing.T) {
		segs := RenderSegments("_")
		require.Len(t, segs, 2)
		assert.False(t, segs[0].On())
		assert.Equal(t, 0.0, segs[0].DurationSeconds)
		assert.InDelta(t, TimeUnitSeconds, segs[1].DurationSeconds, 1e-9)
	})
}

func TestSynthesizeLength(t *testing.T) {
	assert.Empty(t, Synthesize(""))

	// one dot plus the trailing gap
	assert.Len(t, Synthesize("."), int(math.Round(SampleRate*(TimeUnitSeconds+TimeUnitSeconds))))
	assert.Len(t, Synthesize("."), 8820)

	// SOS is 32 units
	assert.Len(t, Synthesize("... --- ..."), 141120)
}

func TestSynthesizeWaveform(t *testing.T) {
	samples := Synthesize(".")
	dotSamples := 4410

	t.Run("Tone during dot", func(t *testing.T) {
		nonZero := 0
		for _, s := range samples[:dotSamples] {
			assert.LessOrEqual(t, math.Abs(s), PeakAmplitude+1e-12)
			if s != 0 {
				nonZero++
			}
		}
		assert.Greater(t, nonZero, dotSamples/2)
	})

	t.Run("Silence during gap", func(t *testing.T) {
		for i, s := range samples[dotSamples:] {
			if s != 0 {
				t.Fatalf("sample %d in gap is %f", dotSamples+i, s)
			}
		}
	})

	t.Run("Phase follows the global index", func(t *testing.T) {
		two := Synthesize("..")
		// second dot starts after dot + gap
		idx := 2*dotSamples + 7
		want := PeakAmplitude * math.Sin(2*math.Pi*ToneFrequencyHz*float64(idx)/SampleRate)
		assert.InDelta(t, want, two[idx], 1e-12)
	})
}

func TestSilentCodeIsAllZero(t *testing.T) {
	samples := Synthesize(" / \n")
	require.NotEmpty(t, samples)
	for _, s := range samples {
		require.Equal(t, 0.0, s)
	}
}

func TestRenderClipsToTotal(t *testing.T) {
	// three segments whose rounded lengths sum past the rounded total
	segs := []Segment{
		{PeakAmplitude, 0.6 / SampleRate},
		{PeakAmplitude, 0.6 / SampleRate},
		{PeakAmplitude, 0.6 / SampleRate},
	}
	samples := Render(segs)
	assert.Len(t, samples, 2)
}

func TestSampleCountMatchesRender(t *testing.T) {
	for _, code := range []string{"", ".", "... --- ...", ".- / -...\n-", "_?#"} {
		segments := RenderSegments(code)
		assert.Equal(t, len(Render(segments)), SampleCount(segments), "code %q", code)
	}

	// 换行最长: 10 个单位加间隔
	assert.Equal(t, 48510, SampleCount(RenderSegments("\n")))
}
