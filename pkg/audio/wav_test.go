package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineSamples(n int, sampleRate int, freq, amp float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestEncodeWAV(t *testing.T) {
	sampleRate := 44100
	samples := sineSamples(4410, sampleRate, 600, 0.2)

	wavData := EncodeWAV(samples, sampleRate)

	// WAV header should be 44 bytes
	require.Len(t, wavData, 44+len(samples)*2)

	assert.Equal(t, "RIFF", string(wavData[0:4]))
	assert.Equal(t, uint32(36+len(samples)*2), binary.LittleEndian.Uint32(wavData[4:8]))
	assert.Equal(t, "WAVE", string(wavData[8:12]))
	assert.Equal(t, "fmt ", string(wavData[12:16]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(wavData[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wavData[20:22]), "PCM")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wavData[22:24]), "mono")
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(wavData[24:28]))
	assert.Equal(t, uint32(88200), binary.LittleEndian.Uint32(wavData[28:32]), "byte rate")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(wavData[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(wavData[34:36]))
	assert.Equal(t, "data", string(wavData[36:40]))
	assert.Equal(t, uint32(len(samples)*2), binary.LittleEndian.Uint32(wavData[40:44]))

	for i, s := range samples {
		got := int16(binary.LittleEndian.Uint16(wavData[44+i*2:]))
		require.Equal(t, QuantizePCM16(s), got, "sample %d", i)
	}
}

func TestEncodeWAVEmpty(t *testing.T) {
	wavData := EncodeWAV(nil, 44100)
	require.Len(t, wavData, 44)
	assert.Equal(t, "RIFF", string(wavData[0:4]))
	assert.Equal(t, "WAVE", string(wavData[8:12]))
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(wavData[4:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(wavData[40:44]))

	info, err := GetWAVInfo(wavData)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), info.NumSamples)
	assert.Equal(t, 0.0, info.Duration)

	samples, rate, err := DecodeWAV(wavData)
	require.NoError(t, err)
	assert.Empty(t, samples)
	assert.Equal(t, 44100, rate)
}

func TestEncodeWAVLength(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 1000, 44100} {
		assert.Len(t, EncodeWAV(make([]float64, n), 8000), 44+n*2)
	}
}

func TestQuantizePCM16(t *testing.T) {
	tests := []struct {
		in   float64
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32768},
		{0.5, 16383},
		{-0.5, -16384},
		{1.5, 32767},
		{-7, -32768},
		{math.Inf(1), 32767},
		{math.Inf(-1), -32768},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QuantizePCM16(tt.in), "input %v", tt.in)
	}

	// clamping makes out-of-range input identical to full scale
	assert.Equal(t, QuantizePCM16(1.0), QuantizePCM16(1.5))
}

func TestDecodeWAV(t *testing.T) {
	original := []float64{0.1, -0.2, 0.3, -0.4, 0.5, 1.2, -1.2}
	wavData := EncodeWAV(original, 8000)

	samples, rate, err := DecodeWAV(wavData)
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	require.Len(t, samples, len(original))

	for i, s := range original {
		assert.Equal(t, QuantizePCM16(s), samples[i], "sample %d", i)
	}
}

func TestDecodeWAVRejectsForeignData(t *testing.T) {
	t.Run("Too short", func(t *testing.T) {
		_, _, err := DecodeWAV([]byte("RIFF"))
		assert.ErrorIs(t, err, ErrInvalidWAV)
	})

	t.Run("Not RIFF", func(t *testing.T) {
		data := EncodeWAV([]float64{0}, 8000)
		copy(data[0:4], "RIFX")
		_, _, err := DecodeWAV(data)
		assert.ErrorIs(t, err, ErrInvalidWAV)
	})

	t.Run("Not WAVE", func(t *testing.T) {
		data := EncodeWAV([]float64{0}, 8000)
		copy(data[8:12], "AVI ")
		_, err := ReadWAVHeader(data)
		assert.ErrorIs(t, err, ErrInvalidWAV)
	})

	t.Run("Stereo", func(t *testing.T) {
		data := EncodeWAV([]float64{0, 0}, 8000)
		binary.LittleEndian.PutUint16(data[22:24], 2)
		_, _, err := DecodeWAV(data)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestGetWAVInfo(t *testing.T) {
	wavData := EncodeWAV(make([]float64, 22050), 44100)

	info, err := GetWAVInfo(wavData)
	require.NoError(t, err)

	assert.Equal(t, uint32(44100), info.SampleRate)
	assert.Equal(t, uint16(1), info.Channels)
	assert.Equal(t, uint16(16), info.BitsPerSample)
	assert.Equal(t, uint32(44100), info.DataSize)
	assert.Equal(t, uint32(22050), info.NumSamples)
	assert.InDelta(t, 0.5, info.Duration, 1e-9)
}

// The go-audio encoder is an independent RIFF writer; both must agree byte for byte.
func TestEncodeWAVMatchesGoAudioEncoder(t *testing.T) {
	sampleRate := 44100
	samples := sineSamples(1000, sampleRate, 600, 0.8)

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(QuantizePCM16(s))
	}

	path := filepath.Join(t.TempDir(), "ref.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	ref, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ref, EncodeWAV(samples, sampleRate))
}
