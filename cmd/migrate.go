package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/youtubefy/internal/shared"
	"github.com/urfave/cli/v3"
)

// MigrateUp applies all pending migrations.
func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Info("migrations applied", "path", config.Database.Path)
	return nil
}

// MigrateRollback rolls back the most recently applied migration.
func (r *Runner) MigrateRollback(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	r.logger.Info("rolled back last migration", "path", config.Database.Path)
	return nil
}
