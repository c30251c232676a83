package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"example.com/feedapp/cmd/server"
	"example.com/feedapp/internal/images"
	config "example.com/feedapp/internal/init"
	"example.com/feedapp/internal/store"
	"example.com/feedapp/internal/token"
)

func main() {
	// Initialize application configuration
	cfg := config.Init()

	// Initialize Cassandra store connection
	st, err := store.New()
	if err != nil {
		log.Fatalf("Cassandra connection failed: %v", err)
	}
	defer st.Close()

	// Initialize local image storage
	imgs, err := images.New(cfg.ImageDir)
	if err != nil {
		log.Fatalf("Image store init failed: %v", err)
	}

	tokens := token.New(cfg.JWTSecret, cfg.TokenTTL)

	// Setup OS signal handling for graceful shutdown (SIGINT, SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server.Run(ctx, st, tokens, imgs, cfg.ServerAddr)

	log.Println("Shutdown completed")
}
