package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pingparcel/config"
	"pingparcel/metrics"
	"pingparcel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Register()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.Error("main: failed to open the database", zap.Error(err))
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	if err := repos.ensureIndexes(ctx); err != nil {
		logger.Warn("main: index bootstrap failed", zap.Error(err))
	}

	cacheClient, err := utils.NewCacheClient(ctx, cfg)
	if err != nil {
		logger.Warn("main: tracking cache disabled", zap.Error(err))
		cacheClient = nil
	}
	if cacheClient != nil {
		defer cacheClient.Close()
	}

	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	health := utils.NewHealthMonitor(repos.mongoClient, cacheClient, cfg.HealthCheckInterval())
	health.Start(healthCtx)

	router, err := newRouter(cfg, repos, cacheClient, health, logger)
	if err != nil {
		logger.Error("main: failed to build the router", zap.Error(err))
		return err
	}

	port := cfg.AppPort
	if port == "" {
		port = "3000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	logger.Sugar().Infof("Starting server on %s (driver %s)...", srv.Addr, cfg.DatabaseDriver)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("main: server failed to start", zap.Error(err))
		return err
	}
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Sugar().Info("main: server stopped gracefully")
	return nil
}

func runEnsureIndexes(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	if err := repos.ensureIndexes(ctx); err != nil {
		return err
	}
	logger.Info("indexes ensured", zap.String("database", cfg.DatabaseName))
	return nil
}
