package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/feedbackfix/internal/config"
	"github.com/magabrotheeeer/feedbackfix/internal/migrations"
	"github.com/magabrotheeeer/feedbackfix/internal/storage/postgresql"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage PostgreSQL schema migrations.",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(cfg *config.Config, db *postgresql.Storage) error {
			if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back the last N migrations (default 1).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps must be a positive number, got %q", args[0])
			}
			steps = n
		}
		return withDatabase(cmd.Context(), func(cfg *config.Config, db *postgresql.Storage) error {
			if err := migrations.Down(db.DB, cfg.MigrationsPath, steps); err != nil {
				return err
			}
			cmd.Printf("rolled back %d migration(s)\n", steps)
			return nil
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(cfg *config.Config, db *postgresql.Storage) error {
			v, dirty, err := migrations.Version(db.DB, cfg.MigrationsPath)
			if err != nil {
				return err
			}
			cmd.Printf("version %d, dirty %t\n", v, dirty)
			return nil
		})
	},
}

func withDatabase(ctx context.Context, fn func(cfg *config.Config, db *postgresql.Storage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.InMemory() {
		return fmt.Errorf("storage_connection_string is empty, nothing to migrate")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := postgresql.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
