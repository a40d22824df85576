package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-matchmaking/internal/app"
	"github.com/oggyb/muzz-matchmaking/internal/cache"
	"github.com/oggyb/muzz-matchmaking/internal/config"
	"github.com/oggyb/muzz-matchmaking/internal/db"
	"github.com/oggyb/muzz-matchmaking/internal/logger"
	"github.com/oggyb/muzz-matchmaking/internal/maintenance"
	"github.com/oggyb/muzz-matchmaking/internal/metrics"
	"github.com/oggyb/muzz-matchmaking/internal/repository"
	"github.com/oggyb/muzz-matchmaking/internal/server"
	"github.com/oggyb/muzz-matchmaking/internal/service/matchmaking"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return err
	}
	defer redisCache.Close()

	if cfg.App.Env == "development" {
		if err := db.SeedTestData(database, db.SeedOptions{}); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	appCtx := app.New(cfg, database, redisCache, log)
	reg := matchmaking.NewRegistrar(appCtx)

	grpcServer := server.New(log,
		[]grpc.UnaryServerInterceptor{appCtx.Metrics.UnaryServerInterceptor()},
		reg,
	)

	opsServer := metrics.NewServer(cfg.Metrics.Addr, metrics.Router(appCtx.Metrics,
		metrics.Check{Name: "db", Probe: sqlDB.PingContext},
		metrics.Check{Name: "redis", Probe: redisCache.Ping},
	), logger.Named("ops"))
	opsServer.Start()

	scheduler := maintenance.NewScheduler(
		repository.NewStore(database),
		reg.Service().Engine().Swipes,
		appCtx.Clock,
		maintenance.Config{
			Interval:       cfg.Maintenance.Interval,
			QueueTTL:       cfg.Matching.QueueTTL,
			ReconcileBatch: cfg.Maintenance.ReconcileBatch,
		},
		logger.Named("maintenance"),
	)
	go scheduler.Run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.ListenAndServe(cfg.GRPCAddr()) }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("shutting down")
	}

	grpcServer.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := opsServer.Shutdown(shutdownCtx); serr != nil {
		log.Warn("ops server shutdown", "err", serr)
	}
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}
