// Command api serves the artifacts of the latest pipeline run over HTTP.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/zerotwo/dwd-krige/internal/api"
	"github.com/zerotwo/dwd-krige/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := api.New(cfg)
	log.Printf("results API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
