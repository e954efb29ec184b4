package audio

import "errors"

var (
	// ErrInvalidWAV is returned for data that is not a RIFF/WAVE container
	ErrInvalidWAV = errors.New("invalid WAV file")

	// ErrUnsupportedFormat is returned for WAV files that are not mono 16-bit PCM
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)
