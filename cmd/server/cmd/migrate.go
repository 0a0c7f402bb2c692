package cmd

import (
	"context"
	"fmt"

	"github.com/Togather-Foundation/eventplanner/internal/config"
	"github.com/Togather-Foundation/eventplanner/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Manage the Postgres schema: the documents table and River's job tables.

Only meaningful with STORE_DRIVER=postgres.`,
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := migrationConfig(opts)
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
				return err
			}
			if err := migrateRiver(cmd.Context(), cfg.Database.URL, rivermigrate.DirectionUp, 0); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var (
		steps int
		river bool
	)
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be > 0")
			}
			cfg, err := migrationConfig(opts)
			if err != nil {
				return err
			}
			if river {
				if err := migrateRiver(cmd.Context(), cfg.Database.URL, rivermigrate.DirectionDown, steps); err != nil {
					return err
				}
			} else if err := postgres.MigrateDown(cfg.Database.URL, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	down.Flags().BoolVar(&river, "river", false, "roll back River's job tables instead of the documents table")

	cmd.AddCommand(up, down)
	return cmd
}

func migrationConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if cfg.Store.Driver != config.StoreDriverPostgres {
		return config.Config{}, fmt.Errorf("migrations require STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.Store.Driver)
	}
	return cfg, nil
}

func migrateRiver(ctx context.Context, databaseURL string, direction rivermigrate.Direction, steps int) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("init river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, direction, &rivermigrate.MigrateOpts{MaxSteps: steps}); err != nil {
		return fmt.Errorf("river migrate %s: %w", direction, err)
	}
	return nil
}
