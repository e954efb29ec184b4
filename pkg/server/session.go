package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/realtime-ai/morse-wave/pkg/morse"
	"github.com/realtime-ai/morse-wave/pkg/synth"
	"github.com/realtime-ai/morse-wave/pkg/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// writeWait bounds a single WebSocket write.
const writeWait = 10 * time.Second

// Session is one live translation form. Each edit is translated and its
// waveform measured; the session keeps no form state of its own.
type Session struct {
	ID string

	conn   *websocket.Conn
	engine *engine

	eventChan chan ServerEvent

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	wg       sync.WaitGroup
	closed   bool
	closedCh chan struct{}

	onClose func(session *Session)
}

func newSession(ctx context.Context, conn *websocket.Conn, eng *engine, timeout time.Duration) *Session {
	var sessionCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		sessionCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		sessionCtx, cancel = context.WithCancel(ctx)
	}

	session := &Session{
		ID:        "sess_" + uuid.New().String()[:12],
		conn:      conn,
		engine:    eng,
		eventChan: make(chan ServerEvent, 100),
		ctx:       sessionCtx,
		cancel:    cancel,
		closedCh:  make(chan struct{}),
	}

	session.wg.Add(1)
	go session.writeLoop()

	return session
}

// Context returns the session context. It is done after Close or when the
// session timeout expires.
func (s *Session) Context() context.Context {
	return s.ctx
}

// SetOnClose sets the callback to be called when the session is closed.
func (s *Session) SetOnClose(fn func(session *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClose = fn
}

// SendEvent queues a server event. Events are dropped once the session is
// closed or when the queue is full.
func (s *Session) SendEvent(event ServerEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}

	select {
	case s.eventChan <- event:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		log.Printf("[session %s] event channel full, dropping event: %s", s.ID, event.ServerEventType())
		return nil
	}
}

// HandleClientEvent applies one client event. An edit whose waveform is too
// long is answered with an error event and does not fail the session.
func (s *Session) HandleClientEvent(event ClientEvent) error {
	eventType := string(event.ClientEventType())

	return trace.WithSpan(s.ctx, "session.handle_event", func(ctx context.Context) error {
		err := s.dispatch(ctx, event)
		if !errors.Is(err, ErrAudioTooLong) {
			return err
		}

		oteltrace.SpanFromContext(ctx).SetAttributes(trace.ErrorAttrs(string(ErrorTypeInvalidRequest), err.Error())...)
		log.Print(trace.LogWithTrace(ctx, fmt.Sprintf("[session %s] rejected %s: %v", s.ID, eventType, err)))
		return s.SendEvent(NewErrorEvent(ErrorTypeInvalidRequest, "audio_too_long", err.Error()))
	}, oteltrace.WithAttributes(trace.EventAttrs(s.ID, eventType)...))
}

func (s *Session) dispatch(ctx context.Context, event ClientEvent) error {
	switch e := event.(type) {
	case *LatinUpdateEvent:
		return s.handleLatinUpdate(ctx, e)
	case *MorseUpdateEvent:
		return s.handleMorseUpdate(ctx, e)
	case *ResetEvent:
		return s.SendEvent(NewSessionResetEvent())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event.ClientEventType())
	}
}

func (s *Session) handleLatinUpdate(ctx context.Context, e *LatinUpdateEvent) error {
	res := s.engine.textToCode(ctx, e.Text)
	summary, err := s.engine.measure(ctx, res.Output)
	if err != nil {
		return err
	}

	return s.SendEvent(NewTranslationUpdatedEvent(
		SourceLatin, e.Text, res.Output, res.Unmatched, res.Message(morse.LangLatin), summary,
	))
}

func (s *Session) handleMorseUpdate(ctx context.Context, e *MorseUpdateEvent) error {
	summary, err := s.engine.measure(ctx, e.Code)
	if err != nil {
		return err
	}
	res := s.engine.codeToText(ctx, e.Code)

	return s.SendEvent(NewTranslationUpdatedEvent(
		SourceMorse, res.Output, e.Code, res.Unmatched, res.Message(morse.LangMorse), summary,
	))
}

// Info describes the session for the session.created event.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:         s.ID,
		Object:     "live.session",
		SampleRate: synth.SampleRate,
	}
}

// Close closes the session.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.closedCh)
	// SendEvent 在读锁内发送，这里关闭 channel 不会并发
	close(s.eventChan)
	onClose := s.onClose
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.conn.Close()

	if onClose != nil {
		onClose(s)
	}

	log.Printf("[session %s] closed", s.ID)
	return nil
}

func (s *Session) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventChan:
			if !ok {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("[session %s] failed to marshal event: %v", s.ID, err)
				continue
			}

			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[session %s] failed to write event: %v", s.ID, err)
				return
			}
		}
	}
}
