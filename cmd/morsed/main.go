package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/realtime-ai/morse-wave/pkg/config"
	"github.com/realtime-ai/morse-wave/pkg/server"
	"github.com/realtime-ai/morse-wave/pkg/trace"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[morsed] failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := trace.Initialize(ctx, cfg.Trace); err != nil {
		log.Fatalf("[morsed] failed to initialize tracing: %v", err)
	}

	srv := server.New(&server.Config{
		Addr:            cfg.Addr,
		LivePath:        cfg.LivePath,
		MaxInputBytes:   cfg.MaxInputBytes,
		MaxAudioSeconds: cfg.MaxAudioSeconds,
		AudioFilename:   cfg.AudioFilename,
		SessionTimeout:  cfg.SessionTimeout,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	})

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("[morsed] failed to start server: %v", err)
	}

	<-ctx.Done()
	log.Printf("[morsed] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("[morsed] server shutdown error: %v", err)
	}
	if err := trace.Shutdown(shutdownCtx); err != nil {
		log.Printf("[morsed] trace shutdown error: %v", err)
	}
}
