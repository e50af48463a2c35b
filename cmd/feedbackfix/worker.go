package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/feedbackfix/internal/app/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume feedback.translated events: usage records and task digests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := setupLogger(cfg.Env)
		logger.Info("starting feedbackfix worker", slog.String("env", cfg.Env))

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := worker.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		return app.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
