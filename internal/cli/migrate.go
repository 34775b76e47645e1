package cli

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/config"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/postgres"
	pgmigrations "github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/infra/postgres/migrations"
)

var errNoPostgres = errors.New("postgres url not configured")

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return errNoPostgres
	}
	db := postgres.OpenDB(cfg.Postgres.URL)
	defer db.Close()
	return migrateDB(ctx, db)
}

func migrateDB(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info().Msg("no new migrations")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("migrations applied")
	return nil
}

func openPostgres(cfg config.Config) *bun.DB {
	db := postgres.OpenDB(cfg.Postgres.URL)
	db.AddQueryHook(postgres.QueryLogger{})
	return db
}
