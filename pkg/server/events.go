package server

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ClientEventType represents the type of client event.
type ClientEventType string

const (
	ClientEventTypeLatinUpdate ClientEventType = "latin.update"
	ClientEventTypeMorseUpdate ClientEventType = "morse.update"
	ClientEventTypeReset       ClientEventType = "reset"
)

// ServerEventType represents the type of server event.
type ServerEventType string

const (
	ServerEventTypeSessionCreated     ServerEventType = "session.created"
	ServerEventTypeTranslationUpdated ServerEventType = "translation.updated"
	ServerEventTypeSessionReset       ServerEventType = "session.reset"
	ServerEventTypeError              ServerEventType = "error"
)

// ErrorType represents the type of error.
type ErrorType string

const (
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

// Which side of the form a translation started from.
const (
	SourceLatin = "latin"
	SourceMorse = "morse"
)

// ClientEvent is the interface for all client events.
type ClientEvent interface {
	ClientEventType() ClientEventType
}

// BaseClientEvent contains common fields for all client events.
type BaseClientEvent struct {
	EventID string          `json:"event_id,omitempty"`
	Type    ClientEventType `json:"type"`
}

func (e BaseClientEvent) ClientEventType() ClientEventType {
	return e.Type
}

// LatinUpdateEvent replaces the text side.
type LatinUpdateEvent struct {
	BaseClientEvent
	Text string `json:"text"`
}

// MorseUpdateEvent replaces the code side.
type MorseUpdateEvent struct {
	BaseClientEvent
	Code string `json:"code"`
}

// ResetEvent clears both sides.
type ResetEvent struct {
	BaseClientEvent
}

// ParseClientEvent parses a client event from JSON.
func ParseClientEvent(data []byte) (ClientEvent, error) {
	var base BaseClientEvent
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("failed to parse event type: %w", err)
	}

	var event ClientEvent
	var err error

	switch base.Type {
	case ClientEventTypeLatinUpdate:
		var e LatinUpdateEvent
		err = json.Unmarshal(data, &e)
		event = &e
	case ClientEventTypeMorseUpdate:
		var e MorseUpdateEvent
		err = json.Unmarshal(data, &e)
		event = &e
	case ClientEventTypeReset:
		event = &ResetEvent{BaseClientEvent: base}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, base.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse %s event: %w", base.Type, err)
	}
	return event, nil
}

// ServerEvent is the interface for all server events.
type ServerEvent interface {
	ServerEventType() ServerEventType
}

// BaseServerEvent contains common fields for all server events.
type BaseServerEvent struct {
	EventID string          `json:"event_id"`
	Type    ServerEventType `json:"type"`
}

func (e BaseServerEvent) ServerEventType() ServerEventType {
	return e.Type
}

// NewBaseServerEvent creates a new base server event with a generated event ID.
func NewBaseServerEvent(eventType ServerEventType) BaseServerEvent {
	return BaseServerEvent{
		EventID: "evt_" + uuid.New().String()[:8],
		Type:    eventType,
	}
}

// SessionInfo describes a live session.
type SessionInfo struct {
	ID         string `json:"id"`
	Object     string `json:"object"`
	SampleRate int    `json:"sample_rate"`
}

// AudioSummary describes the waveform regenerated for the current code.
type AudioSummary struct {
	Samples         int     `json:"samples"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ErrorDetail is the error payload shared by HTTP responses and error events.
type ErrorDetail struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

// SessionCreatedEvent is sent once after the WebSocket upgrade.
type SessionCreatedEvent struct {
	BaseServerEvent
	Session SessionInfo `json:"session"`
}

func NewSessionCreatedEvent(info SessionInfo) *SessionCreatedEvent {
	return &SessionCreatedEvent{
		BaseServerEvent: NewBaseServerEvent(ServerEventTypeSessionCreated),
		Session:         info,
	}
}

// TranslationUpdatedEvent carries both sides of the form after an edit.
type TranslationUpdatedEvent struct {
	BaseServerEvent
	Source    string       `json:"source"`
	Latin     string       `json:"latin"`
	Morse     string       `json:"morse"`
	Unmatched []string     `json:"unmatched"`
	Message   string       `json:"message"`
	Audio     AudioSummary `json:"audio"`
}

func NewTranslationUpdatedEvent(source, latin, morse string, unmatched []string, message string, audio AudioSummary) *TranslationUpdatedEvent {
	return &TranslationUpdatedEvent{
		BaseServerEvent: NewBaseServerEvent(ServerEventTypeTranslationUpdated),
		Source:          source,
		Latin:           latin,
		Morse:           morse,
		Unmatched:       unmatched,
		Message:         message,
		Audio:           audio,
	}
}

// SessionResetEvent confirms a reset.
type SessionResetEvent struct {
	BaseServerEvent
}

func NewSessionResetEvent() *SessionResetEvent {
	return &SessionResetEvent{BaseServerEvent: NewBaseServerEvent(ServerEventTypeSessionReset)}
}

// ErrorEvent reports a rejected client event. The session stays open.
type ErrorEvent struct {
	BaseServerEvent
	Error ErrorDetail `json:"error"`
}

func NewErrorEvent(errType ErrorType, code, message string) *ErrorEvent {
	return &ErrorEvent{
		BaseServerEvent: NewBaseServerEvent(ServerEventTypeError),
		Error: ErrorDetail{
			Type:    errType,
			Code:    code,
			Message: message,
		},
	}
}
