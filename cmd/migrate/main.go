package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/config"
	"github.com/fdg312/family-hub/internal/dbmigrate"
	"github.com/fdg312/family-hub/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Env, cfg.LogLevel)
	for _, warning := range cfg.Warnings {
		logger.Warn("config: " + warning)
	}

	if len(os.Args) < 2 {
		logger.Fatalf("usage: go run ./cmd/migrate [up|status|down]")
	}
	command := os.Args[1]

	target, err := dbmigrate.SelectTarget(cfg, false)
	if err != nil {
		logger.Fatal(err)
	}
	if target.Warning != "" {
		logger.Warnf("migrate: %s", target.Warning)
	}
	logger.WithFields(logrus.Fields{"command": command, "using": target.Source}).Info("migrate: starting")

	if err := dbmigrate.Run(context.Background(), command, target.URL, logger); err != nil {
		logger.Fatal(err)
	}

	logger.Infof("migrate: %s completed successfully", command)
}
