// Package audio provides audio processing utilities.
//
// wav.go implements the canonical 44-byte RIFF/WAVE container for mono
// 16-bit PCM.
//
// Layout (all fields little-endian):
//
//	 0 "RIFF"            4 file size - 8      8 "WAVE"
//	12 "fmt "           16 16 (fmt size)     20 1 (PCM)
//	22 channels         24 sample rate       28 byte rate
//	32 block align      34 bits per sample
//	36 "data"           40 data size         44 samples...
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-audio/wav"
)

// WAV layout constants
const (
	WAVHeaderSize    = 44
	PCMFormat        = 1
	PCMBitsPerSample = 16
	PCMChannels      = 1
)

// WAVHeader represents the header structure of a WAV file
type WAVHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // File size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16  // Number of channels
	SampleRate    uint32  // Sample rate
	ByteRate      uint32  // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16  // NumChannels * BitsPerSample / 8
	BitsPerSample uint16  // Bits per sample
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // Number of bytes in the data
}

// QuantizePCM16 clamps s to [-1, 1] and maps it to a signed 16-bit sample.
// Negative values scale by 32768 and the rest by 32767 so both ends stay in range.
func QuantizePCM16(s float64) int16 {
	if math.IsNaN(s) {
		return 0
	}
	s = math.Max(-1, math.Min(1, s))
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}

// FloatToPCM16 converts float samples to little-endian 16-bit PCM bytes.
func FloatToPCM16(samples []float64) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(QuantizePCM16(s)))
	}
	return out
}

// EncodeWAV encodes float samples as a mono 16-bit PCM WAV file. Any buffer,
// including an empty one, yields a valid container.
func EncodeWAV(samples []float64, sampleRate int) []byte {
	dataSize := len(samples) * BytesPerSample
	out := make([]byte, WAVHeaderSize+dataSize)

	blockAlign := PCMChannels * PCMBitsPerSample / 8

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(WAVHeaderSize-8+dataSize))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], PCMFormat)
	binary.LittleEndian.PutUint16(out[22:24], PCMChannels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], PCMBitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[WAVHeaderSize+i*BytesPerSample:], uint16(QuantizePCM16(s)))
	}

	return out
}

// ReadWAVHeader parses and validates the 44-byte header.
func ReadWAVHeader(data []byte) (*WAVHeader, error) {
	if len(data) < WAVHeaderSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidWAV, WAVHeaderSize, len(data))
	}

	var header WAVHeader
	if err := binary.Read(bytes.NewReader(data[:WAVHeaderSize]), binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read WAV header: %w", err)
	}

	switch {
	case string(header.ChunkID[:]) != "RIFF":
		return nil, fmt.Errorf("%w: missing RIFF header", ErrInvalidWAV)
	case string(header.Format[:]) != "WAVE":
		return nil, fmt.Errorf("%w: missing WAVE format", ErrInvalidWAV)
	case string(header.Subchunk1ID[:]) != "fmt ":
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrInvalidWAV)
	case string(header.Subchunk2ID[:]) != "data":
		return nil, fmt.Errorf("%w: missing data chunk", ErrInvalidWAV)
	}

	return &header, nil
}

// WAVInfo holds basic information about a WAV file
type WAVInfo struct {
	SampleRate    uint32  `json:"sample_rate"`
	Channels      uint16  `json:"channels"`
	BitsPerSample uint16  `json:"bits_per_sample"`
	Duration      float64 `json:"duration_seconds"`
	DataSize      uint32  `json:"data_size_bytes"`
	NumSamples    uint32  `json:"num_samples"`
}

// GetWAVInfo extracts metadata from a WAV file
func GetWAVInfo(data []byte) (*WAVInfo, error) {
	header, err := ReadWAVHeader(data)
	if err != nil {
		return nil, err
	}
	if header.SampleRate == 0 || header.BitsPerSample < 8 || header.NumChannels == 0 {
		return nil, fmt.Errorf("%w: rate=%d bits=%d channels=%d",
			ErrUnsupportedFormat, header.SampleRate, header.BitsPerSample, header.NumChannels)
	}

	frameSize := uint32(header.BitsPerSample) / 8 * uint32(header.NumChannels)
	numSamples := header.Subchunk2Size / frameSize

	return &WAVInfo{
		SampleRate:    header.SampleRate,
		Channels:      header.NumChannels,
		BitsPerSample: header.BitsPerSample,
		Duration:      float64(numSamples) / float64(header.SampleRate),
		DataSize:      header.Subchunk2Size,
		NumSamples:    numSamples,
	}, nil
}

// DecodeWAV decodes a mono 16-bit PCM WAV file back to samples and its sample rate.
func DecodeWAV(data []byte) ([]int16, int, error) {
	header, err := ReadWAVHeader(data)
	if err != nil {
		return nil, 0, err
	}
	if header.AudioFormat != PCMFormat || header.BitsPerSample != PCMBitsPerSample || header.NumChannels != PCMChannels {
		return nil, 0, fmt.Errorf("%w: format=%d bits=%d channels=%d",
			ErrUnsupportedFormat, header.AudioFormat, header.BitsPerSample, header.NumChannels)
	}
	if header.Subchunk2Size == 0 {
		return []int16{}, int(header.SampleRate), nil
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read audio samples: %w", err)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}
	return samples, int(header.SampleRate), nil
}
