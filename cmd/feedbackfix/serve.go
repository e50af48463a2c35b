package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/feedbackfix/internal/app/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := setupLogger(cfg.Env)
		logger.Info("starting feedbackfix api", slog.String("env", cfg.Env))
		logger.Debug("config loaded", slog.String("config", cfg.String()))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := api.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("feedbackfix api stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
