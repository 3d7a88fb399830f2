package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/galton/internal/admin"
	"github.com/playmatatu/galton/internal/api"
	"github.com/playmatatu/galton/internal/config"
	"github.com/playmatatu/galton/internal/database"
	"github.com/playmatatu/galton/internal/game"
	"github.com/playmatatu/galton/internal/migrations"
	"github.com/playmatatu/galton/internal/presets"
	"github.com/playmatatu/galton/internal/redis"
	"github.com/playmatatu/galton/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database is optional: without it there is no run history or admin API
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Println("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}

		if err := admin.ApplyRuntimeConfigToConfig(db, cfg); err != nil {
			log.Printf("[CONFIG] Runtime config not applied: %v", err)
		}
	}

	// Redis is optional: without it snapshots are skipped and landings stay local
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	store, err := presets.Load(cfg.PresetsFile)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}

	game.InitializeManager(ctx, db, rdb, cfg)
	game.Manager.SetPublisher(ws.BoardHub)

	ws.Configure(rdb, cfg)
	ws.StartBoardEventSubscriber(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, db, game.Manager, store, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting Galton board server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
