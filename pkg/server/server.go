// Package server exposes the Morse transcoder over HTTP and a live
// WebSocket session.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/realtime-ai/morse-wave/pkg/morse"
	"github.com/realtime-ai/morse-wave/pkg/trace"
)

// Config holds the configuration for the Morse server.
type Config struct {
	// Addr is the address to listen on (e.g., ":8080").
	Addr string

	// LivePath is the WebSocket endpoint path (e.g., "/v1/live").
	LivePath string

	// MaxInputBytes limits request bodies and WebSocket messages.
	MaxInputBytes int64

	// MaxAudioSeconds caps the waveform one request or live edit may produce.
	// 0 means no limit.
	MaxAudioSeconds float64

	// AudioFilename is the attachment name used by /v1/audio.
	AudioFilename string

	// SessionTimeout is the maximum session duration.
	// 0 means no timeout.
	SessionTimeout time.Duration

	// Table overrides the default code table when set.
	Table *morse.SymbolTable

	// ReadBufferSize is the WebSocket read buffer size.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	WriteBufferSize int
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		LivePath:        "/v1/live",
		MaxInputBytes:   64 * 1024,
		MaxAudioSeconds: 300,
		AudioFilename:   "morse.wav",
		SessionTimeout:  30 * time.Minute,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// Server serves translation, audio download and live sessions.
type Server struct {
	config *Config
	engine *engine

	sessions   map[string]*Session
	sessionsMu sync.RWMutex

	httpServer *http.Server
	mux        *http.ServeMux

	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Server and registers its routes.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   config,
		engine:   newEngine(config.Table, config.MaxAudioSeconds),
		sessions: make(map[string]*Session),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /v1/translate/latin", s.handleTranslateLatin)
	s.mux.HandleFunc("POST /v1/translate/morse", s.handleTranslateMorse)
	s.mux.HandleFunc("POST /v1/audio", s.handleAudio)
	s.mux.HandleFunc("GET "+config.LivePath, s.handleWebSocket)

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the server.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[MorseServer] starting on %s (live: %s)", s.config.Addr, s.config.LivePath)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.sessionsMu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.sessionsMu.Unlock()

	// Close 里的 onClose 会重新获取 sessionsMu
	for _, session := range sessions {
		session.Close()
	}

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// SessionCount returns the number of active sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

type translateLatinRequest struct {
	Text string `json:"text"`
}

type translateLatinResponse struct {
	Code      string   `json:"code"`
	Unmatched []string `json:"unmatched"`
	Message   string   `json:"message"`
}

type translateMorseRequest struct {
	Code string `json:"code"`
}

type translateMorseResponse struct {
	Text      string   `json:"text"`
	Unmatched []string `json:"unmatched"`
	Message   string   `json:"message"`
}

type audioRequest struct {
	Code *string `json:"code"`
	Text *string `json:"text"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranslateLatin(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "http.translate_latin")
	defer span.End()

	var req translateLatinRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	res := s.engine.textToCode(ctx, req.Text)
	writeJSON(w, http.StatusOK, translateLatinResponse{
		Code:      res.Output,
		Unmatched: res.Unmatched,
		Message:   res.Message(morse.LangLatin),
	})
}

func (s *Server) handleTranslateMorse(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "http.translate_morse")
	defer span.End()

	var req translateMorseRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	res := s.engine.codeToText(ctx, req.Code)
	writeJSON(w, http.StatusOK, translateMorseResponse{
		Text:      res.Output,
		Unmatched: res.Unmatched,
		Message:   res.Message(morse.LangMorse),
	})
}

// handleAudio renders code (or the translation of text) into a WAV attachment.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	ctx, span := trace.StartSpan(r.Context(), "http.audio")
	defer span.End()

	var req audioRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	var code string
	switch {
	case req.Code != nil:
		code = *req.Code
	case req.Text != nil:
		code = s.engine.textToCode(ctx, *req.Text).Output
	default:
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, "missing_input", `one of "code" or "text" is required`)
		return
	}

	// 先按时长检查，再分配采样缓冲
	if _, err := s.engine.measure(ctx, code); err != nil {
		log.Print(trace.LogWithTrace(ctx, fmt.Sprintf("[MorseServer] rejected audio request: %v", err)))
		writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeInvalidRequest, "audio_too_long", err.Error())
		return
	}

	data := s.engine.render(ctx, code)

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.config.AudioFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		trace.RecordError(span, err)
		log.Print(trace.LogWithTrace(ctx, fmt.Sprintf("[MorseServer] failed to write audio: %v", err)))
	}
}

// decodeRequest reads a size-limited JSON body into v. On failure it writes
// the error response and returns false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxInputBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorTypeInvalidRequest, "input_too_large",
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorTypeInvalidRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// handleWebSocket handles WebSocket connections.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[MorseServer] WebSocket upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(s.config.MaxInputBytes)

	clientIP := getClientIP(r)
	session := newSession(s.ctx, conn, s.engine, s.config.SessionTimeout)

	s.registerSession(session, clientIP)
	session.SetOnClose(func(sess *Session) {
		s.unregisterSession(sess)
	})

	session.SendEvent(NewSessionCreatedEvent(session.Info()))

	s.handleSession(session, conn)
}

// handleSession reads client events until the connection or the session ends.
func (s *Server) handleSession(session *Session, conn *websocket.Conn) {
	defer session.Close()

	// 超时或关闭时打断阻塞的 ReadMessage
	go func() {
		<-session.Context().Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				session.Context().Err() == nil {
				log.Printf("[MorseServer] [session %s] WebSocket read error: %v", session.ID, err)
			}
			return
		}

		event, err := ParseClientEvent(data)
		if err != nil {
			code := "invalid_event"
			if errors.Is(err, ErrUnknownEvent) {
				code = "unknown_event"
			}
			session.SendEvent(NewErrorEvent(ErrorTypeInvalidRequest, code, err.Error()))
			continue
		}

		if err := session.HandleClientEvent(event); err != nil {
			log.Printf("[MorseServer] [session %s] event handling error: %v", session.ID, err)
		}
	}
}

func (s *Server) registerSession(session *Session, clientIP string) {
	s.sessionsMu.Lock()
	s.sessions[session.ID] = session
	s.sessionsMu.Unlock()

	log.Printf("[MorseServer] [session %s] registered from %s", session.ID, clientIP)
}

func (s *Server) unregisterSession(session *Session) {
	s.sessionsMu.Lock()
	delete(s.sessions, session.ID)
	s.sessionsMu.Unlock()

	log.Printf("[MorseServer] [session %s] unregistered", session.ID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[MorseServer] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, errType ErrorType, code, message string) {
	writeJSON(w, status, errorResponse{Error: ErrorDetail{Type: errType, Code: code, Message: message}})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
