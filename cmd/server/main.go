package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		logging.Default().Fatal().Err(err).Str("path", cfgPath).Msg("Failed to load configuration")
	}
	cfg.ApplyEnv()
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
	log := logging.Default()

	if envErr != nil {
		log.Debug().Msg("No .env file found, using environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logging.WithLogger(ctx, log)

	comps, err := server.NewComponents(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer comps.Close(ctx)

	if err := server.NewServer(comps).Serve(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		comps.Close(ctx)
		os.Exit(1)
	}
}
