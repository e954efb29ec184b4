package player

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/realtime-ai/morse-wave/pkg/audio"
	"github.com/realtime-ai/morse-wave/pkg/synth"
)

var _ ToneSink = (*DeviceSink)(nil)

// DeviceSink plays tones on the default playback device. Tone bursts are
// rendered into an AudioPacer and the device callback drains it.
type DeviceSink struct {
	audioContext   *malgo.AllocatedContext
	playbackDevice *malgo.Device
	pacer          *audio.AudioPacer

	amplitude float64
}

// NewDeviceSink opens and starts a mono S16 playback device.
func NewDeviceSink(sampleRate int) (*DeviceSink, error) {
	if sampleRate <= 0 {
		sampleRate = synth.SampleRate
	}

	pacer, err := audio.NewAudioPacerWithConfig(audio.AudioPacerConfig{
		SampleRate: sampleRate,
		Channels:   audio.Channels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio pacer: %w", err)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	s := &DeviceSink{
		audioContext: ctx,
		pacer:        pacer,
		amplitude:    synth.PeakAmplitude,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	// 一个设备周期对应 pacer 的一帧
	deviceConfig.PeriodSizeInFrames = uint32(pacer.BytesPerFrame() / (audio.BytesPerSample * audio.Channels))
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = audio.Channels
	deviceConfig.SampleRate = uint32(pacer.SampleRate())
	deviceConfig.Alsa.NoMMap = 1

	s.playbackDevice, err = malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, framecount uint32) {
			pacer.Read(outputSamples)
		},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := s.playbackDevice.Start(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	log.Printf("[DeviceSink] playback device started at %d Hz", sampleRate)
	return s, nil
}

// Tone queues a sine burst.
func (s *DeviceSink) Tone(freqHz float64, d time.Duration) {
	if err := s.pacer.Write(audio.Tone(freqHz, s.amplitude, s.pacer.SampleRate(), d)); err != nil {
		log.Printf("[DeviceSink] failed to queue tone: %v", err)
	}
}

// Silence fades out whatever is still queued.
func (s *DeviceSink) Silence() {
	s.pacer.ClearWithFadeOut(audio.ToneRampMs)
}

// Drain blocks until the device has pulled everything queued so far.
func (s *DeviceSink) Drain(ctx context.Context) error {
	ticker := time.NewTicker(audio.FrameDurationMs * time.Millisecond)
	defer ticker.Stop()

	for s.pacer.Available() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close stops the device and releases the audio context.
func (s *DeviceSink) Close() error {
	if s.playbackDevice != nil {
		if err := s.playbackDevice.Stop(); err != nil {
			log.Printf("[DeviceSink] failed to stop device: %v", err)
		}
		s.playbackDevice.Uninit()
		s.playbackDevice = nil
	}

	if s.audioContext != nil {
		if err := s.audioContext.Uninit(); err != nil {
			log.Printf("[DeviceSink] failed to uninit context: %v", err)
		}
		s.audioContext.Free()
		s.audioContext = nil
	}

	if s.pacer != nil {
		s.pacer.Close()
	}
	return nil
}
