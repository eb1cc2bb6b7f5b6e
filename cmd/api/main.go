package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"travelwise/config"
	"travelwise/internal/bootstrap"
	"travelwise/pkg/database"
	apperrors "travelwise/pkg/errors"
	"travelwise/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppEnv)
	defer l.Sync()

	if !cfg.EnvFileLoaded {
		l.Infof("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seq := bootstrap.New(cfg, l, bootstrap.MongoConnector(database.Connect))
	if err := seq.Run(ctx); err != nil {
		l.Errorf("Exiting: %v", err)
		return apperrors.ExitCode(err)
	}
	return 0
}
