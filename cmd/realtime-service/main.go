package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kanvas/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildRealtimeService()
	if err != nil {
		log.Fatalf("bootstrap realtime-service failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("realtime-service shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("realtime-service stopped with error: %v", err)
	}
}
