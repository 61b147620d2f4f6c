package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	"bookcatalog/db"
	"bookcatalog/internal/config"
	"bookcatalog/internal/logging"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	logging.Init(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "console"})
	log := logging.L()

	if *command == "create" {
		if *name == "" {
			log.Fatal().Msg("name is required for 'create' command")
		}
		goose.SetSequential(true)
		if err := goose.Create(nil, migrationsDir(), *name, "sql"); err != nil {
			log.Fatal().Err(err).Msg("create migration")
		}
		log.Info().Str("name", *name).Str("dir", migrationsDir()).Msg("migration created")
		return
	}

	ctx := context.Background()
	dsn := databaseDSN()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", config.RedactDSN(dsn)).Msg("connect to database")
	}
	defer pool.Close()

	provider, err := db.NewProvider(pool)
	if err != nil {
		log.Fatal().Err(err).Msg("open migrations")
	}

	switch *command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		for _, r := range results {
			log.Info().Str("migration", r.Source.Path).Dur("took", r.Duration).Msg("applied")
		}
		log.Info().Int("count", len(results)).Msg("migrations applied successfully")
	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("roll back migration")
		}
		log.Info().Str("migration", r.Source.Path).Msg("migration rolled back")
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("migration status")
		}
		for _, s := range statuses {
			ev := log.Info().Int64("version", s.Source.Version).Str("state", string(s.State))
			if !s.AppliedAt.IsZero() {
				ev = ev.Time("applied_at", s.AppliedAt)
			}
			ev.Msg(s.Source.Path)
		}
	default:
		log.Fatal().Str("command", *command).Msg("unknown command, use: up, down, status, create")
	}
}
