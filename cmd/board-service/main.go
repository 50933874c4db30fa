package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kanvas/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildBoardService()
	if err != nil {
		log.Fatalf("bootstrap board-service failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("board-service shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("board-service stopped with error: %v", err)
	}
}
