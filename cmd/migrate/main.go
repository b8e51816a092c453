package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/ninahidul9/connect-chat/internal/config"
	"github.com/ninahidul9/connect-chat/internal/database"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting database migration...")

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Database migration completed successfully")
}
