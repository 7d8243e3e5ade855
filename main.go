package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/wfunc/drawserver/config"
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/persistence"
	"github.com/wfunc/drawserver/server"
	"github.com/wfunc/drawserver/services"
)

func main() {
	configPath := pflag.String("config", ".", "directory holding config.yaml")
	pflag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Init(false)
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Development)
	logger.SetLevel(cfg.Log.Level)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Word source
	var source persistence.WordSource
	if cfg.Database.Enabled {
		source, err = persistence.Open(cfg.Database)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer source.Close()
		logger.Log.Info("Database connection successful.")
	}

	vocabulary, err := services.LoadVocabulary(ctx, source, cfg.Words.File)
	if err != nil {
		logger.Log.Fatalf("Failed to load vocabulary: %v", err)
	}
	words, err := services.NewWordService(vocabulary)
	if err != nil {
		logger.Log.Fatalf("Failed to build word service: %v", err)
	}
	logger.Log.Infof("Loaded %d words", words.Size())

	// Initialize Game Server
	gameServer, err := server.NewGameServer(cfg, words)
	if err != nil {
		logger.Log.Fatalf("Failed to create game server: %v", err)
	}

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(ctx); err != nil {
		logger.Log.Fatalf("Server stopped: %v", err)
	}
	logger.Log.Info("Server shut down cleanly")
}
