package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pyme-market/chat-server/internal/chat"
	"github.com/pyme-market/chat-server/internal/server"
	"github.com/pyme-market/chat-server/internal/store"
)

func main() {
	log.Println("Starting chat server...")

	cfg := server.NewConfigFromEnv()

	messageStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open message store: %v", err)
	}
	defer messageStore.Close()

	registry := server.NewRegistry()
	broadcaster := server.NewBroadcaster(registry)
	chatService := chat.NewService(messageStore, broadcaster, cfg.MaxContentLength, cfg.MaxUsernameLength)
	srv := server.New(*cfg, registry, broadcaster, chatService)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	heartbeat := server.NewHeartbeat(registry, broadcaster, cfg.PingInterval)
	go heartbeat.Run(ctx)
	log.Println("Heartbeat loop started")

	httpServer := server.CreateServer(cfg.Port, srv.Routes())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if err := server.ShutdownServer(httpServer, 10*time.Second); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	broadcaster.DisconnectAll()
}
