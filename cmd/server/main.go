package main

import (
	"context"
	"log"

	"github.com/chertoha/contacthub/internal/app"
	"github.com/chertoha/contacthub/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
