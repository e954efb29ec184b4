package server

import (
	"context"
	"fmt"

	"github.com/realtime-ai/morse-wave/pkg/audio"
	"github.com/realtime-ai/morse-wave/pkg/morse"
	"github.com/realtime-ai/morse-wave/pkg/synth"
	"github.com/realtime-ai/morse-wave/pkg/trace"
)

// engine runs the core operations inside spans. The HTTP handlers and the
// live sessions share one.
type engine struct {
	transcoder      *morse.Transcoder
	maxAudioSeconds float64
}

func newEngine(table *morse.SymbolTable, maxAudioSeconds float64) *engine {
	return &engine{
		transcoder:      morse.NewTranscoder(table),
		maxAudioSeconds: maxAudioSeconds,
	}
}

func (e *engine) textToCode(ctx context.Context, text string) morse.Result {
	_, span := trace.StartSpan(ctx, "morse.text_to_code")
	defer span.End()

	res := e.transcoder.TextToCode(text)
	span.SetAttributes(trace.TranslationAttrs(trace.DirectionLatinToMorse, len(text), len(res.Output), len(res.Unmatched))...)
	return res
}

func (e *engine) codeToText(ctx context.Context, code string) morse.Result {
	_, span := trace.StartSpan(ctx, "morse.code_to_text")
	defer span.End()

	res := e.transcoder.CodeToText(code)
	span.SetAttributes(trace.TranslationAttrs(trace.DirectionMorseToLatin, len(code), len(res.Output), len(res.Unmatched))...)
	return res
}

// measure lays out the waveform for code without rendering it. It returns
// ErrAudioTooLong when the waveform would exceed maxAudioSeconds.
func (e *engine) measure(ctx context.Context, code string) (AudioSummary, error) {
	_, span := trace.StartSpan(ctx, "synth.measure")
	defer span.End()

	segments := synth.RenderSegments(code)
	summary := AudioSummary{
		Samples:         synth.SampleCount(segments),
		DurationSeconds: synth.TotalDuration(segments),
	}
	span.SetAttributes(trace.AudioAttrs(synth.SampleRate, summary.Samples, 0)...)

	if e.maxAudioSeconds > 0 && summary.DurationSeconds > e.maxAudioSeconds {
		err := fmt.Errorf("%w: %.1fs exceeds the %.1fs limit", ErrAudioTooLong, summary.DurationSeconds, e.maxAudioSeconds)
		trace.RecordError(span, err)
		return summary, err
	}
	return summary, nil
}

// render synthesizes and encodes code. Callers check the length with measure first.
func (e *engine) render(ctx context.Context, code string) []byte {
	_, span := trace.StartSpan(ctx, "synth.render")
	defer span.End()

	samples := synth.Synthesize(code)
	data := audio.EncodeWAV(samples, synth.SampleRate)
	span.SetAttributes(trace.AudioAttrs(synth.SampleRate, len(samples), len(data))...)
	return data
}
