package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/openbge-client/internal/config"
	"github.com/openbge-client/internal/mcp"
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

	// stdout belongs to the MCP transport; NewLogger writes to stderr
	logger := config.NewLogger(cfg.Logging)

	client, err := external.NewClient(cfg.Platform, logger)
	if err != nil {
		log.Fatalf("Failed to create platform client: %v", err)
	}
	platform := service.NewPlatformService(client, logger)

	mcpServer := mcp.NewServer(cfg.MCP, platform, logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcpServer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("MCP server failed")
	}

	logger.Info("OpenBGE MCP server stopped")
}
