package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lawnchairsociety/shipyard/internal/cache"
	"github.com/lawnchairsociety/shipyard/internal/config"
	"github.com/lawnchairsociety/shipyard/internal/database"
	"github.com/lawnchairsociety/shipyard/internal/logger"
	"github.com/lawnchairsociety/shipyard/internal/server"
	"github.com/lawnchairsociety/shipyard/internal/ship"
)

func main() {
	configFile := flag.String("config", "data/shipyard.yaml", "Path to service config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	envFile := flag.String("env", ".env", "Path to .env file (optional)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	noDB := flag.Bool("no-db", false, "Run without the ship catalog and seed history")
	flag.Parse()

	// .env must load before anything reads the environment
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load %s: %v", *envFile, err)
	}

	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Always("Starting shipyard")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Failed to load config, using defaults", "path", *configFile, "error", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		logger.Warning("Ignoring invalid environment overrides", "error", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if cfg.Generator.DefaultSeed != "" {
		ship.SetDefaultSeed(cfg.Generator.DefaultSeed)
		logger.Info("Default seed configured", "seed", cfg.Generator.DefaultSeed)
	}

	var db *database.Database
	if !*noDB {
		db, err = database.OpenWithConfig(cfg.DatabaseConfig())
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		logger.Info("Ship catalog initialized", "driver", cfg.Database.Driver)
	}

	shipCache, err := cache.Connect(cfg.CacheConfig())
	if err != nil {
		logger.Warning("Redis unavailable, using in-memory cache", "error", err)
		shipCache = cache.NewMemory(cfg.Cache.MemoryEntries)
	}
	defer shipCache.Close()

	if len(cfg.Server.AllowedOrigins) == 0 {
		logger.Info("CORS policy", "mode", "same-origin")
	} else if len(cfg.Server.AllowedOrigins) == 1 && cfg.Server.AllowedOrigins[0] == "*" {
		logger.Warning("CORS allows all origins (not recommended for production)")
	} else {
		logger.Info("CORS policy", "allowed_origins", cfg.Server.AllowedOrigins)
	}

	srv := server.NewServer(cfg, db, shipCache)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	logger.Info("Shipyard running", "addr", cfg.Server.Addr)
	logger.Info("Press Ctrl+C to shutdown")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown did not complete cleanly", "error", err)
	}
	logger.Always("Server stopped")
}
