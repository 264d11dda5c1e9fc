package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, dsn, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	removed, err := userpostgres.NewSessionStore(db).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("removed", removed))
}
