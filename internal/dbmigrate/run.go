package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fdg312/family-hub/migrations"
)

// Commands lists the goose commands the migrate binary accepts.
var Commands = []string{"up", "status", "down"}

// Run applies a goose command using the SQL files embedded in the migrations
// package.
func Run(ctx context.Context, command, dbURL string, logger *logrus.Logger) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if !supported(command) {
		return fmt.Errorf("unsupported command %q (allowed: %v)", command, Commands)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if logger != nil {
		goose.SetLogger(logger)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

func supported(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}
