package audio

import (
	"log"
	"sync"
)

const (
	// 默认采样率，与合成器一致
	DefaultSampleRate = 44100
	// 通道数
	Channels = 1
	// 每个采样点的字节数 (16-bit)
	BytesPerSample = 2
	// 帧时长 (毫秒)
	FrameDurationMs = 20
)

// AudioPacerConfig 配置
type AudioPacerConfig struct {
	SampleRate int // 采样率
	Channels   int // 通道数
}

// AudioPacer buffers 16-bit PCM between a producer (tone bursts) and an
// output device that pulls fixed-size periods from a callback.
//
// Reads never block: when the buffer runs dry the remainder of the request
// is filled with silence, so a device callback can always be served.
type AudioPacer struct {
	buffer []byte
	mu     sync.Mutex

	sampleRate    int
	channels      int
	bytesPerFrame int
}

// NewAudioPacerWithConfig 创建新的 AudioPacer (使用自定义配置)
func NewAudioPacerWithConfig(cfg AudioPacerConfig) (*AudioPacer, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = Channels
	}

	// 每帧字节数: 采样率 * 帧时长(秒) * 通道数 * 每采样字节数
	samplesPerFrame := cfg.SampleRate * FrameDurationMs / 1000
	bytesPerFrame := samplesPerFrame * BytesPerSample * cfg.Channels

	return &AudioPacer{
		buffer:        make([]byte, 0, bytesPerFrame*50), // 预分配1秒
		sampleRate:    cfg.SampleRate,
		channels:      cfg.Channels,
		bytesPerFrame: bytesPerFrame,
	}, nil
}

// Write 写入 PCM 音频数据
func (ap *AudioPacer) Write(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	ap.mu.Lock()
	defer ap.mu.Unlock()
	ap.buffer = append(ap.buffer, data...)
	return nil
}

// Read fills p with buffered audio and pads the rest with silence. It
// returns the number of bytes that came from the buffer.
func (ap *AudioPacer) Read(p []byte) int {
	ap.mu.Lock()
	defer ap.mu.Unlock()

	n := copy(p, ap.buffer)
	ap.buffer = ap.buffer[n:]
	clear(p[n:])
	return n
}

// ClearWithFadeOut keeps only the next fadeOutMs of audio, ramped linearly
// down to zero, and drops the rest. fadeOutMs <= 0 clears immediately.
func (ap *AudioPacer) ClearWithFadeOut(fadeOutMs int) {
	ap.mu.Lock()
	defer ap.mu.Unlock()

	fadeOutBytes := ap.sampleRate * fadeOutMs / 1000 * BytesPerSample * ap.channels
	if fadeOutBytes <= 0 || len(ap.buffer) == 0 {
		ap.buffer = ap.buffer[:0]
		return
	}
	if fadeOutBytes > len(ap.buffer) {
		fadeOutBytes = len(ap.buffer) - len(ap.buffer)%BytesPerSample
	}

	// 线性淡出 (16-bit little-endian)
	samples := fadeOutBytes / BytesPerSample
	for i := 0; i < samples; i++ {
		factor := float32(samples-i) / float32(samples)
		idx := i * BytesPerSample
		sample := int16(ap.buffer[idx]) | int16(ap.buffer[idx+1])<<8
		sample = int16(float32(sample) * factor)
		ap.buffer[idx] = byte(sample)
		ap.buffer[idx+1] = byte(sample >> 8)
	}

	ap.buffer = ap.buffer[:fadeOutBytes]
	log.Printf("[AudioPacer] faded out %d bytes, discarded rest", fadeOutBytes)
}

// Available 返回当前缓冲的字节数
func (ap *AudioPacer) Available() int {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	return len(ap.buffer)
}

// BytesPerFrame 返回每帧 (20ms) 字节数
func (ap *AudioPacer) BytesPerFrame() int {
	return ap.bytesPerFrame
}

// SampleRate 返回采样率
func (ap *AudioPacer) SampleRate() int {
	return ap.sampleRate
}

// Close 释放资源
func (ap *AudioPacer) Close() {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	ap.buffer = nil
}
