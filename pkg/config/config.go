// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/realtime-ai/morse-wave/pkg/trace"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the settings of the morsed service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// LivePath is the WebSocket endpoint of the live translation session.
	LivePath string
	// MaxInputBytes caps request bodies and live messages.
	MaxInputBytes int64
	// MaxAudioSeconds caps the waveform a single request may render.
	MaxAudioSeconds float64
	// AudioFilename is the attachment name of downloaded audio.
	AudioFilename string
	// SessionTimeout closes live sessions after this long. 0 disables.
	SessionTimeout time.Duration

	Trace *trace.Config
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		LivePath:        "/v1/live",
		MaxInputBytes:   64 * 1024,
		MaxAudioSeconds: 300,
		AudioFilename:   "morse.wav",
		SessionTimeout:  30 * time.Minute,
		Trace:           trace.DefaultConfig(),
	}
}

// Load reads .env (if any) and the environment on top of the defaults.
func Load() (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := Default()

	cfg.Addr = getEnv("MORSE_ADDR", cfg.Addr)
	cfg.LivePath = getEnv("MORSE_LIVE_PATH", cfg.LivePath)
	cfg.AudioFilename = getEnv("MORSE_AUDIO_FILENAME", cfg.AudioFilename)

	if v := os.Getenv("MORSE_MAX_INPUT_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: MORSE_MAX_INPUT_BYTES: %v", ErrInvalidConfig, err)
		}
		cfg.MaxInputBytes = n
	}

	if v := os.Getenv("MORSE_MAX_AUDIO_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: MORSE_MAX_AUDIO_SECONDS: %v", ErrInvalidConfig, err)
		}
		cfg.MaxAudioSeconds = f
	}

	if v := os.Getenv("MORSE_SESSION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: MORSE_SESSION_TIMEOUT: %v", ErrInvalidConfig, err)
		}
		cfg.SessionTimeout = d
	}

	cfg.Trace.Environment = getEnv("ENVIRONMENT", cfg.Trace.Environment)
	cfg.Trace.ExporterType = getEnv("TRACE_EXPORTER", cfg.Trace.ExporterType)
	cfg.Trace.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Trace.OTLPEndpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.LivePath, "/") {
		return fmt.Errorf("%w: live path %q must start with /", ErrInvalidConfig, c.LivePath)
	}
	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("%w: max input bytes must be positive, got %d", ErrInvalidConfig, c.MaxInputBytes)
	}
	// NaN 也在这里被拒绝
	if !(c.MaxAudioSeconds > 0) || math.IsInf(c.MaxAudioSeconds, 1) {
		return fmt.Errorf("%w: max audio seconds must be a positive number, got %v", ErrInvalidConfig, c.MaxAudioSeconds)
	}
	if !strings.HasSuffix(strings.ToLower(c.AudioFilename), ".wav") || strings.ContainsAny(c.AudioFilename, `/\"`) {
		return fmt.Errorf("%w: audio filename %q must be a plain .wav name", ErrInvalidConfig, c.AudioFilename)
	}
	if c.SessionTimeout < 0 {
		return fmt.Errorf("%w: negative session timeout", ErrInvalidConfig)
	}
	if c.Trace != nil {
		switch c.Trace.ExporterType {
		case trace.ExporterStdout, trace.ExporterOTLP, trace.ExporterNone:
		default:
			return fmt.Errorf("%w: unsupported trace exporter %q", ErrInvalidConfig, c.Trace.ExporterType)
		}
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
