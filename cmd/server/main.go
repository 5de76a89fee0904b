package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/openbge-client/internal/api"
	"github.com/openbge-client/internal/config"
	"github.com/openbge-client/internal/service"
	"github.com/openbge-client/pkg/external"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging)

	client, err := external.NewClient(cfg.Platform, logger)
	if err != nil {
		log.Fatalf("Failed to create platform client: %v", err)
	}
	platform := service.NewPlatformService(client, logger)

	server := api.NewServer(cfg.Server, platform, logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("platform", external.BaseURL(cfg.Platform.Host)).Info("Starting OpenBGE API server")
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
