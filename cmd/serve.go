package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skiff-ai/skiff/internal/app"
	"github.com/skiff-ai/skiff/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// runServe loads configuration, wires the application, and serves until
// interrupted.
func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}

	a, err := app.Setup(cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.Logger.Info("skiff starting",
		"version", Version,
		"model", cfg.ModelName,
		"model_host", cfg.ModelHost,
		"addr", cfg.ListenAddr)

	return a.Server.Run(ctx, cfg.ListenAddr)
}
