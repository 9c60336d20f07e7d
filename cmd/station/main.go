package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/digital-station/platform/internal/shared/config"
	"github.com/digital-station/platform/internal/shared/database"
	"github.com/digital-station/platform/internal/shared/events"
	"github.com/digital-station/platform/internal/shared/logging"
	"github.com/digital-station/platform/internal/shared/ratelimit"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	app := &App{Config: cfg, Publisher: events.Nop{}}

	// Without a database the ops endpoints stay up, /ready reports 503 and
	// every domain route answers 503.
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Errorw("database not available, domain routes disabled", "error", err)
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			log.Fatalw("migration failed", "error", err)
		}
	}

	// Event bus
	if cfg.KurrentDB.Enabled {
		bus, err := events.NewBus(cfg.KurrentDB)
		if err != nil {
			log.Warnw("KurrentDB not available, domain events disabled", "error", err)
		} else {
			app.Bus = bus
			app.Publisher = bus
			defer bus.Close()
			log.Infow("KurrentDB event bus initialized", "host", cfg.KurrentDB.Host, "port", cfg.KurrentDB.Port)
		}
	}

	// Login rate limiter
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		app.Limiter = ratelimit.NewRedis(client, cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
	} else {
		app.Limiter = ratelimit.NewLocal(cfg.RateLimit.LoginAttempts, cfg.RateLimit.Window)
	}

	r, err := newRouter(app)
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Errorw("server shutdown error", "error", err)
		}
		close(done)
	}()

	log.Infow("digital police station backend starting",
		"env", cfg.Server.Env,
		"addr", srv.Addr,
		"database", app.DB != nil,
		"kurrentdb", app.Bus != nil,
		"redis", cfg.Redis.Enabled,
	)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.L().Fatal("server error", zap.Error(err))
	}

	<-done
	log.Info("server stopped")
}
