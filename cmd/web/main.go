package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/config"
	"github.com/AdamBeresnev/bracket-scheduler/internal/db"
	"github.com/AdamBeresnev/bracket-scheduler/internal/lock"
	"github.com/AdamBeresnev/bracket-scheduler/internal/logger"
	"github.com/AdamBeresnev/bracket-scheduler/internal/service"
	"github.com/AdamBeresnev/bracket-scheduler/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logr := logger.New(cfg.LogLevel)
	defer logr.Sync()
	zap.ReplaceGlobals(logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		logr.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		logr.Fatal("Failed to run migrations", zap.Error(err))
	}

	var locker lock.Locker = lock.NewLocalLocker(cfg.LockWait)
	if cfg.RedisURL != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logr.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Environment, cfg.LockWait, cfg.LockTTL, logr.Named("lock"))
		logr.Info("Using Redis bracket locks", zap.String("environment", cfg.Environment))
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.SessionLifetime
	sessionManager.Store = sqlite3store.New(database.DB)

	bracketService := service.NewBracketService(store.NewBracketStore(database), locker, logr.Named("brackets")).
		WithSimulationIterations(cfg.SimulationIterations)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newRouter(bracketService, sessionManager, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Error("Server stopped with error", zap.Error(err))
		return
	}
	logr.Info("Server stopped")
}
