// Package main is the entry point for the mushroom tracker HTTP server.
//
// main stays small: read configuration, build the logger, hand both to
// internal/app and internal/server. Everything it needs comes from
// config.Load, so the server is configured the same way as mushroomctl:
//
//	MUSHROOM_SESSION_SECRET=$(openssl rand -hex 32) go run ./cmd/server
//	go run ./cmd/server --config mushroom.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/mushroom-tracker/internal/app"
	"github.com/sakif/mushroom-tracker/internal/config"
	"github.com/sakif/mushroom-tracker/internal/server"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "mushroom-server",
		Short:         "Serve the mushroom catalogue HTTP API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// config.Load has already validated the level
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", slog.String("error", err.Error()))
		return err
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out
	return server.New(a).Start()
}
