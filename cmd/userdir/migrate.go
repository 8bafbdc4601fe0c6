package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/user-directory-api/internal/config"
	"github.com/user-directory-api/internal/database"
	"github.com/user-directory-api/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the snapshot table migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(args[0])
		},
	}
	return cmd
}

func runMigrate(direction string) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("invalid direction: %s (must be up or down)", direction)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations need STORAGE_DRIVER=postgres, got %s", cfg.Storage.Driver)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	db, err := database.New(&cfg.Storage.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if direction == "down" {
		return db.MigrateDown(cfg.Storage.MigrationsPath)
	}
	return db.RunMigrations(cfg.Storage.MigrationsPath)
}
