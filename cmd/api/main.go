package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/restlets/hl7-routing-log/internal/config"
	"github.com/restlets/hl7-routing-log/internal/handler"
	"github.com/restlets/hl7-routing-log/internal/infra/postgresql"
	"github.com/restlets/hl7-routing-log/internal/infra/postgresql/migrations"
	infraredis "github.com/restlets/hl7-routing-log/internal/infra/redis"
	"github.com/restlets/hl7-routing-log/internal/mllp"
	"github.com/restlets/hl7-routing-log/internal/observability"
	"github.com/restlets/hl7-routing-log/internal/repository"
	"github.com/restlets/hl7-routing-log/internal/service"
	"github.com/restlets/hl7-routing-log/internal/transport"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	if cfg.SeedSampleData {
		if err := postgresql.Seed(db); err != nil {
			logger.Fatal("sample data seeding failed", zap.Error(err))
		}
		logger.Info("sample routing log data seeded")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	limiter, err := infraredis.NewIngestRateLimiter(rdb, cfg.IngestRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	repo := repository.NewGormRoutingLogRepo(db)

	logSvc, err := service.NewRoutingLogService(repo, metrics, logger)
	if err != nil {
		logger.Fatal("routing log service initialization failed", zap.Error(err))
	}

	ingestSvc, err := service.NewIngestService(
		logSvc,
		limiter,
		metrics,
		logger,
		cfg.MLLPChannelID,
		cfg.MLLPListenAddr,
		cfg.ErrorSimulationRate,
	)
	if err != nil {
		logger.Fatal("ingest service initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "hl7-routing-log",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterRoutingLogRoutes(app, logSvc); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	listener, err := mllp.NewListener(cfg.MLLPListenAddr, ingestSvc.Handle, logger)
	if err != nil {
		logger.Fatal("mllp listener initialization failed", zap.Error(err))
	}
	if err := listener.Start(); err != nil {
		logger.Fatal("mllp listener start failed", zap.Error(err))
	}
	logger.Info("mllp listener started",
		zap.Stringer("addr", listener.Addr()),
		zap.String("channel", cfg.MLLPChannelID),
	)

	go func() {
		logger.Info("hl7-routing-log api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := listener.Shutdown(ctx); err != nil {
		logger.Error("mllp listener shutdown error", zap.Error(err))
	}
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("api server shutdown error", zap.Error(err))
	}
}
