package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ninahidul9/connect-chat/internal/api/routes"
	"github.com/ninahidul9/connect-chat/internal/auth"
	"github.com/ninahidul9/connect-chat/internal/config"
	"github.com/ninahidul9/connect-chat/internal/database"
	"github.com/ninahidul9/connect-chat/internal/gateway"
	"github.com/ninahidul9/connect-chat/internal/gateway/gormstore"
	"github.com/ninahidul9/connect-chat/internal/gateway/kafkafeed"
	"github.com/ninahidul9/connect-chat/internal/gateway/redisfeed"
	"github.com/ninahidul9/connect-chat/internal/presence"
	"github.com/ninahidul9/connect-chat/internal/ws"
)

func main() {
	// Optional local overrides; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := slog.Default()
	log.Info("Starting connect-chat server")

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	rdb, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Change-feed transport: redis pub/sub by default, Kafka by config.
	var (
		feed gateway.Feed
		pub  gateway.Publisher
	)
	switch cfg.Feed.Backend {
	case "kafka":
		kf := kafkafeed.New(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer kf.Close()
		feed, pub = kf, kf
		log.Info("Using Kafka change feed", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	default:
		rf := redisfeed.New(rdb, log)
		feed, pub = rf, rf
		log.Info("Using redis change feed")
	}

	store := gormstore.New(db, pub, log)
	tracker := presence.New(store, rdb, log)
	authSvc := auth.NewService(auth.NewRepository(db), cfg.JWT.Secret, cfg.JWT.Expire)

	hub := ws.NewHub(tracker, log)
	go hub.Run()

	router := routes.NewRouter(hub, store, feed, authSvc, cfg.JWT.Secret, log)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped")
}
