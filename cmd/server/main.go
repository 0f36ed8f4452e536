package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iam/internal/iam/config"
	"iam/internal/iam/metrics"
	"iam/internal/iam/policy"
	"iam/internal/iam/repository"
	"iam/internal/iam/router"
	"iam/internal/iam/service"
	"iam/internal/iam/util"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		util.GetLogger().Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Init Logger
	util.InitLogger(cfg.LogLevel)
	logger := util.GetLogger()

	// 3. Init Store
	store, disconnect, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// 4. Init Layers
	engine, err := policy.NewEngine()
	if err != nil {
		logger.Error("Failed to load policy catalog", "error", err)
		os.Exit(1)
	}
	m := metrics.New()
	audit := service.NewAsyncAuditSink(store, service.AuditSinkConfig{
		Timeout:    cfg.AuditWriteTimeout,
		MaxRetries: cfg.AuditMaxRetries,
		Backoff:    cfg.AuditRetryBackoff,
	}, m)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	svc := service.NewService(store, engine, audit, tokens, m, cfg.SessionTTL)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.SeedCatalog(seedCtx); err != nil {
		cancel()
		logger.Error("Failed to seed role catalog", "error", err)
		os.Exit(1)
	}
	if cfg.SeedAdminEmail != "" {
		if err := svc.EnsureAdmin(seedCtx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			logger.Error("Failed to seed admin user", "error", err)
		}
	}
	cancel()

	// 5. Init Echo & Routes
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			)
			return nil
		},
	}))

	router.RegisterRoutes(e, cfg, svc, engine, m)

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shutting down the server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server Shutdown Failed", "error", err)
	}

	// Pending audit writes go out before the store closes.
	if err := audit.Close(ctx); err != nil {
		logger.Error("Audit sink did not drain", "error", err)
	}

	if err := disconnect(ctx); err != nil {
		logger.Error("Failed to disconnect store", "error", err)
	}

	logger.Info("Server exited properly")
}

// openStore builds the process-wide store and returns its disconnect func.
func openStore(cfg *config.Config) (repository.Store, func(context.Context) error, error) {
	if cfg.StoreDriver == config.StoreMemory {
		util.GetLogger().Warn("Using in-memory store; data is lost on exit")
		return repository.NewMemoryRepository(), func(context.Context) error { return nil }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	repo := repository.NewMongoRepository(client.Database(cfg.DBName), cfg.Collections)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return repo, client.Disconnect, nil
}
