package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"outreach-backend/internal/bootstrap"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/workerproc"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started concurrency=%d", cfg.WorkerConcurrency)
	workerproc.Run(ctx, app.Queue, app.Manager, cfg.WorkerConcurrency)
	log.Printf("worker stopped")
}
