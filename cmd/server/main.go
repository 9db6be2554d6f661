package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/petarceklic/FlightCapacity/internal/aggregator"
	"github.com/petarceklic/FlightCapacity/internal/auth"
	"github.com/petarceklic/FlightCapacity/internal/cache"
	"github.com/petarceklic/FlightCapacity/internal/config"
	"github.com/petarceklic/FlightCapacity/internal/faretrend"
	"github.com/petarceklic/FlightCapacity/internal/handler"
	"github.com/petarceklic/FlightCapacity/internal/providers"
	"github.com/petarceklic/FlightCapacity/internal/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := newCredentialStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize token store", zap.Error(err))
	}
	defer func() { _ = store.Close() }()
	logger.Info("token store ready", zap.String("store", cfg.TokenStore))

	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	tokens := auth.NewTokenSource(auth.Config{
		TokenURL:     cfg.TokenURL(),
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, httpClient, store, logger)

	limiter := ratelimit.NewOperationLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		BurstSize:         cfg.BurstSize,
	})

	gateway := providers.NewAmadeusClient(providers.AmadeusConfig{
		BaseURL: cfg.ProviderBaseURL,
		Limiter: limiter,
	}, httpClient, tokens, logger)

	sampler := faretrend.NewSampler(gateway, faretrend.Config{
		Timeout: cfg.FareSampleTimeout,
	}, logger)

	aggConfig := aggregator.DefaultConfig()
	aggConfig.RequiredTimeout = cfg.UpstreamTimeout
	aggConfig.OptionalTimeout = cfg.OptionalTimeout
	aggConfig.MaxRetries = cfg.MaxRetries
	agg := aggregator.NewAggregator(gateway, sampler, aggConfig, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(logger)

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	flightHandler := handler.NewFlightHandler(gateway, agg, logger)
	handler.RegisterRoutes(e, flightHandler, handler.HealthInfo{
		Service:     cfg.ServiceName,
		Environment: cfg.ProviderEnv,
		APIBaseURL:  cfg.APIBaseURL,
	})

	go func() {
		logger.Info("starting flight capacity server",
			zap.String("port", cfg.Port),
			zap.String("provider", cfg.ProviderBaseURL),
		)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newCredentialStore(cfg config.Config) (cache.CredentialStore, error) {
	if cfg.TokenStore != "redis" {
		return cache.NewMemoryStore(), nil
	}
	redisCfg := cache.DefaultRedisConfig()
	redisCfg.Host = cfg.RedisHost
	redisCfg.Port = cfg.RedisPort
	redisCfg.Password = cfg.RedisPassword
	redisCfg.DB = cfg.RedisDB
	return cache.NewRedisStore(redisCfg)
}
