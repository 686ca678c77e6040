package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/config"
	"github.com/IL272/Wilddict/internal/database"
	"github.com/IL272/Wilddict/internal/handler"
	"github.com/IL272/Wilddict/internal/logging"
	"github.com/IL272/Wilddict/internal/metrics"
	"github.com/IL272/Wilddict/internal/middleware"
	"github.com/IL272/Wilddict/internal/queue"
	"github.com/IL272/Wilddict/internal/repository"
	"github.com/IL272/Wilddict/internal/router"
	"github.com/IL272/Wilddict/internal/service"
	"github.com/IL272/Wilddict/internal/utils"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	if err := database.Migrate(ctx, db, cfg.DBDriver, logger); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	// Redis is optional; without it the response cache passes through.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unavailable, response cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	cache := middleware.NewScopedCache(config.LoadCacheConfig(), rdb, logger)

	broker := config.LoadBrokerConfig()
	var events queue.Publisher = queue.NopPublisher{}
	if broker.Enabled {
		events = queue.NewAMQPPublisher(broker.URL, broker.Queue, logger)
		if broker.ConsumerEnabled {
			consumer := &queue.Consumer{
				URL:   broker.URL,
				Queue: broker.Queue,
				Audit: &queue.AuditLog{Dir: broker.LogDir},
				Log:   logger,
			}
			go func() { _ = consumer.Run(ctx) }()
		}
	}

	authMetrics := metrics.NewAuth()
	accounts := repository.NewAccountRepo(db)
	codec := utils.NewTokenCodec(cfg.JWTSecret)
	registry := service.NewRegistry(accounts, utils.NewHasher(cfg.BcryptCost), codec, cfg.TokenTTL, events, authMetrics, logger)
	resolver := service.NewResolver(codec, accounts, cfg.EnforceActive, authMetrics, logger)
	words := service.NewWordService(repository.NewWordRepo(db), events, cache, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))

	auth := middleware.Authenticate(resolver, cfg.RequestTimeout, logger)
	router.RegisterRoutes(e, echo.WrapHandler(authMetrics.Handler()))
	router.RegisterAuth(e, handler.NewAuthHandler(registry, cfg.RequestTimeout, logger), auth)
	router.RegisterWords(e, handler.NewWordHandler(words, cfg.RequestTimeout, logger), auth, cache.Middleware())

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
