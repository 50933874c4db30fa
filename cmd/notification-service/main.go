package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kanvas/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildNotificationService()
	if err != nil {
		log.Fatalf("bootstrap notification-service failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("notification-service shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("notification-service stopped with error: %v", err)
	}
}
