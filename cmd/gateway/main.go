package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"kanvas/internal/app/bootstrap"
)

func main() {
	app, err := bootstrap.BuildGateway()
	if err != nil {
		log.Fatalf("bootstrap gateway failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("gateway shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Printf("gateway stopped with error: %v", err)
	}
}
