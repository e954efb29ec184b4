// morseplay translates text or code, optionally writes the waveform to a
// WAV file and plays it on the default output device.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/realtime-ai/morse-wave/pkg/audio"
	"github.com/realtime-ai/morse-wave/pkg/morse"
	"github.com/realtime-ai/morse-wave/pkg/player"
	"github.com/realtime-ai/morse-wave/pkg/synth"
)

func main() {
	text := flag.String("text", "", "latin text to translate and play")
	code := flag.String("code", "", "morse code to play (overrides -text)")
	out := flag.String("o", "", "write the waveform to this .wav file")
	mute := flag.Bool("mute", false, "do not play on the output device")
	flag.Parse()

	if *text == "" && *code == "" {
		flag.Usage()
		os.Exit(2)
	}

	morseCode := *code
	if morseCode == "" {
		res := morse.TextToCode(*text)
		if msg := res.Message(morse.LangLatin); msg != "" {
			log.Printf("[morseplay] %s", msg)
		}
		morseCode = res.Output
	} else {
		res := morse.CodeToText(morseCode)
		if msg := res.Message(morse.LangMorse); msg != "" {
			log.Printf("[morseplay] %s", msg)
		}
		*text = res.Output
	}
	fmt.Printf("%s\n%s\n", *text, morseCode)

	if *out != "" {
		if err := writeWAV(*out, morseCode); err != nil {
			log.Fatalf("[morseplay] %v", err)
		}
	}

	if *mute {
		return
	}

	sink, err := player.NewDeviceSink(synth.SampleRate)
	if err != nil {
		log.Fatalf("[morseplay] %v", err)
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := player.New(sink, player.WithStateHook(func(state player.State, index int) {
		if state == player.StateStopped {
			log.Printf("[morseplay] stopped at symbol %d", index)
		}
	}))
	p.Play(morseCode)

	if err := p.Wait(ctx); err != nil {
		p.Stop()
		return
	}
	if err := sink.Drain(ctx); err != nil {
		log.Printf("[morseplay] drain interrupted: %v", err)
	}
}

// writeWAV encodes code to path and reads the file back to check it.
func writeWAV(path, code string) error {
	samples := synth.Synthesize(code)
	if err := os.WriteFile(path, audio.EncodeWAV(samples, synth.SampleRate), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read back %s: %w", path, err)
	}
	decoded, rate, err := audio.DecodeWAV(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if len(decoded) != len(samples) || rate != synth.SampleRate {
		return fmt.Errorf("%s: wrote %d samples at %d Hz, read back %d at %d Hz",
			path, len(samples), synth.SampleRate, len(decoded), rate)
	}

	info, err := audio.GetWAVInfo(data)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	log.Printf("[morseplay] wrote %s: %d Hz, %d-bit, %d samples, %.2fs",
		path, info.SampleRate, info.BitsPerSample, info.NumSamples, info.Duration)
	return nil
}
