package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kanvas/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildTaskService()
	if err != nil {
		log.Fatalf("bootstrap task-service failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("task-service shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("task-service stopped with error: %v", err)
	}
}
