package trace

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys
const (
	AttrSessionID = "session.id"
	AttrEventType = "event.type"

	// Translation attributes
	AttrMorseDirection      = "morse.direction"
	AttrMorseInputLength    = "morse.input_length"
	AttrMorseOutputLength   = "morse.output_length"
	AttrMorseUnmatchedCount = "morse.unmatched_count"

	// Audio attributes
	AttrAudioSampleRate  = "audio.sample_rate"
	AttrAudioSampleCount = "audio.sample_count"
	AttrAudioDataSize    = "audio.data_size"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Translation directions
const (
	DirectionLatinToMorse = "latin_to_morse"
	DirectionMorseToLatin = "morse_to_latin"
)

// SessionAttrs creates attributes for session information
func SessionAttrs(sessionID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
}

// EventAttrs describes a client event handled by a session
func EventAttrs(sessionID, eventType string) []attribute.KeyValue {
	return append(SessionAttrs(sessionID), attribute.String(AttrEventType, eventType))
}

// TranslationAttrs describes one translation call
func TranslationAttrs(direction string, inputLen, outputLen, unmatched int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMorseDirection, direction),
		attribute.Int(AttrMorseInputLength, inputLen),
		attribute.Int(AttrMorseOutputLength, outputLen),
		attribute.Int(AttrMorseUnmatchedCount, unmatched),
	}
}

// AudioAttrs describes a rendered buffer
func AudioAttrs(sampleRate, sampleCount, dataSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrAudioSampleRate, sampleRate),
		attribute.Int(AttrAudioSampleCount, sampleCount),
		attribute.Int(AttrAudioDataSize, dataSize),
	}
}

// ErrorAttrs creates attributes for errors
func ErrorAttrs(errType, errMsg string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, errMsg),
	}
}
