package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/nmartins/bazario-backend/pkg/config"
	"github.com/nmartins/bazario-backend/pkg/db"
	"github.com/nmartins/bazario-backend/pkg/logger"
	"github.com/nmartins/bazario-backend/pkg/migrate"
)

func main() {
	command := flag.String("cmd", "up", "goose command to run (up, down, status, version)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to extract sql handle", err)
		os.Exit(1)
	}

	ctx = logg.WithField(ctx, "command", *command)
	logg.Info(ctx, "running migrations")

	if err := migrate.Run(ctx, sqlDB, *command, flag.Args()...); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "migrations complete")
}
