// Package cmd implements the fuxi command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/fuxi/internal/config"
	"github.com/agenthands/fuxi/internal/logging"
	"github.com/agenthands/fuxi/internal/server"
)

var (
	configFile string
	logLevel   string
	dataRoot   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fuxi",
	Short: "Enterprise architecture harmonization",
	Long: `Fuxi merges the current-state and future-state architecture datasets
into one graph of systems and integrations, classifies what is added,
removed or modified, and suggests missing connections.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware cancellation.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config/config.toml", "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataRoot, "data", "", "data directory, overrides the config")

	rootCmd.AddCommand(harmonizeCmd, connectionsCmd, clustersCmd, lucidCmd, serveCmd)
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	path := configFile
	if env := os.Getenv("CONFIG_PATH"); env != "" && !cmd.Flags().Changed("config") {
		path = env
	}
	loaded, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}
	loaded.ApplyEnv()
	if dataRoot != "" {
		loaded.Data.Root = dataRoot
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	logging.Configure(loaded.Logging.Level, loaded.Logging.Format)
	cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
	cfg = loaded
	return nil
}

// components builds the shared collaborators and returns a cleanup func.
func components(ctx context.Context) (*server.Components, func(), error) {
	c, err := server.NewComponents(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return c, func() { c.Close(ctx) }, nil
}
